// posload fires concurrent POS checkouts at a running server to probe
// the stock guard: with N units on the shelf, at most N single-unit
// checkouts may fully succeed and stock must never go negative.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const totalRequests = 50

func main() {
	baseURL := envOr("POS_BASE_URL", "http://localhost:8080")
	branchID := envOr("POS_BRANCH_ID", "f47ac10b-58cc-4372-a567-0e02b2c3d479")
	cashierID := envOr("POS_CASHIER_ID", uuid.NewString())
	productID := os.Getenv("POS_PRODUCT_ID")
	if productID == "" {
		log.Fatal("POS_PRODUCT_ID is required")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	var completed, partial, rejected atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]any{
				"request_id":     uuid.NewString(),
				"branch_id":      branchID,
				"cashier_id":     cashierID,
				"payment_method": "cash",
				"currency":       "KES",
				"items": []map[string]any{
					{"product_id": productID, "quantity": 1},
				},
			})

			resp, err := client.Post(baseURL+"/api/v1/pos/checkout", "application/json", bytes.NewReader(body))
			if err != nil {
				rejected.Add(1)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				rejected.Add(1)
				return
			}
			var out struct {
				Partial bool `json:"partial"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Partial {
				partial.Add(1)
				return
			}
			completed.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== POS LOAD RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Completed:        %d\n", completed.Load())
	fmt.Printf("Partial:          %d\n", partial.Load())
	fmt.Printf("Rejected:         %d\n", rejected.Load())
	fmt.Printf("Elapsed:          %s\n", elapsed)
}
