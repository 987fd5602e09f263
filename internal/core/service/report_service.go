package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/port"
)

// Aggregations run in memory over fetched rows, the same way the
// dashboard and report screens compute them; branch data sets are
// small enough that pushing them into SQL buys nothing.

type DailySales struct {
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Transactions int             `json:"transactions"`
}

type CategoryStock struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type BranchSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalTransactions int             `json:"total_transactions"`
	SalesToday        int             `json:"sales_today"`
	UnitsInStock      int             `json:"units_in_stock"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
	LowStockCount     int             `json:"low_stock_count"`
	ActiveCustomers   int             `json:"active_customers"`
}

type ReportService struct {
	sales     port.SaleRepository
	products  port.ProductRepository
	customers port.CustomerRepository
	now       func() time.Time
}

func NewReportService(sales port.SaleRepository, products port.ProductRepository, customers port.CustomerRepository) *ReportService {
	return &ReportService{sales: sales, products: products, customers: customers, now: time.Now}
}

// DailySales buckets a branch's sales by calendar day over [from, to].
// Buckets appear in first-seen order of the underlying rows.
func (s *ReportService) DailySales(ctx context.Context, branchID string, from, to time.Time) ([]DailySales, error) {
	if branchID == "" {
		return nil, ErrMissingContext
	}
	sales, err := s.sales.ListSalesBetween(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}

	var order []string
	buckets := make(map[string]*DailySales)
	for _, sale := range sales {
		day := sale.CreatedAt.Format("Jan 02")
		b, ok := buckets[day]
		if !ok {
			b = &DailySales{Date: day, Amount: decimal.Zero}
			buckets[day] = b
			order = append(order, day)
		}
		b.Amount = b.Amount.Add(sale.TotalAmount)
		b.Transactions++
	}

	out := make([]DailySales, len(order))
	for i, day := range order {
		out[i] = *buckets[day]
	}
	return out, nil
}

// CategoryStock totals on-hand units per product category.
func (s *ReportService) CategoryStock(ctx context.Context, branchID string) ([]CategoryStock, error) {
	if branchID == "" {
		return nil, ErrMissingContext
	}
	products, err := s.products.ListProducts(ctx, branchID)
	if err != nil {
		return nil, err
	}
	var order []string
	buckets := make(map[string]*CategoryStock)
	for _, p := range products {
		b, ok := buckets[p.Category]
		if !ok {
			b = &CategoryStock{Category: p.Category}
			buckets[p.Category] = b
			order = append(order, p.Category)
		}
		b.Quantity += p.StockQuantity
	}
	out := make([]CategoryStock, len(order))
	for i, cat := range order {
		out[i] = *buckets[cat]
	}
	return out, nil
}

// Summary assembles the dashboard stat cards for one branch.
func (s *ReportService) Summary(ctx context.Context, branchID string) (*BranchSummary, error) {
	if branchID == "" {
		return nil, ErrMissingContext
	}

	sales, err := s.sales.ListSales(ctx, branchID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListProducts(ctx, branchID)
	if err != nil {
		return nil, err
	}
	customerCount, err := s.customers.CountCustomers(ctx, branchID)
	if err != nil {
		return nil, err
	}

	sum := &BranchSummary{
		TotalRevenue:    decimal.Zero,
		InventoryValue:  decimal.Zero,
		ActiveCustomers: customerCount,
	}

	today := s.now()
	for _, sale := range sales {
		if sale.Status == domain.SaleStatusRefunded {
			continue
		}
		sum.TotalRevenue = sum.TotalRevenue.Add(sale.TotalAmount)
		sum.TotalTransactions++
		if sameDay(sale.CreatedAt, today) {
			sum.SalesToday++
		}
	}
	for _, p := range products {
		sum.UnitsInStock += p.StockQuantity
		sum.InventoryValue = sum.InventoryValue.Add(
			p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity))))
		if p.LowStock() {
			sum.LowStockCount++
		}
	}
	return sum, nil
}

// TextReport renders the downloadable plain-text sales report.
func (s *ReportService) TextReport(ctx context.Context, branchID, currency string, from, to time.Time) (string, error) {
	daily, err := s.DailySales(ctx, branchID, from, to)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("MASUMA AUTOPARTS EAST AFRICA\n")
	b.WriteString("SALES REPORT\n")
	fmt.Fprintf(&b, "Period: %s - %s\n", from.Format("Jan 02, 2006"), to.Format("Jan 02, 2006"))
	fmt.Fprintf(&b, "Generated: %s\n", s.now().Format("Jan 02, 2006"))
	fmt.Fprintf(&b, "Branch: %s\n\n", branchID)

	b.WriteString("Sales Summary:\n")
	total := decimal.Zero
	transactions := 0
	for _, d := range daily {
		fmt.Fprintf(&b, "%s: %s (%d transactions)\n", d.Date, money(currency, d.Amount), d.Transactions)
		total = total.Add(d.Amount)
		transactions += d.Transactions
	}
	fmt.Fprintf(&b, "\nTotal Sales: %s\n", money(currency, total))
	fmt.Fprintf(&b, "Total Transactions: %d\n", transactions)
	return b.String(), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
