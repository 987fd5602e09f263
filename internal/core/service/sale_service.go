package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/port"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingContext      = errors.New("missing branch or cashier context")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrSaleCreationFailed  = errors.New("sale creation failed")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrInvalidTransition   = errors.New("invalid sale status transition")
)

type PartialCommitStage string

const (
	StageLineItems      PartialCommitStage = "line_items"
	StageStockDecrement PartialCommitStage = "stock_decrement"
)

// PartialCommitError reports that the sale header was committed but a
// later step failed. It is distinct from both full success and clean
// failure: the Sale it carries exists in the store.
type PartialCommitError struct {
	Sale  *domain.Sale
	Stage PartialCommitStage
	Err   error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("sale %s committed but %s failed: %v", e.Sale.ID, e.Stage, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

// SaleContext carries the session state a submission needs. It is
// passed explicitly; nothing is read from globals.
type SaleContext struct {
	RequestID     string
	BranchID      string
	CashierID     string
	CustomerID    string
	PaymentMethod domain.PaymentMethod
	Currency      string
}

type SaleService struct {
	products port.ProductRepository
	sales    port.SaleRepository
	cache    port.CacheRepository
	now      func() time.Time
}

func NewSaleService(products port.ProductRepository, sales port.SaleRepository, cache port.CacheRepository) *SaleService {
	return &SaleService{
		products: products,
		sales:    sales,
		cache:    cache,
		now:      time.Now,
	}
}

// Submit runs the sale-completion workflow: validate, guard against
// duplicate submission, persist the header, persist line items, then
// decrement stock per line. The steps are sequential and not wrapped
// in one transaction; a failure after the header commit returns the
// committed sale together with a *PartialCommitError.
//
// The cart is cleared whenever the header committed, regardless of
// the outcome of the later steps.
func (s *SaleService) Submit(ctx context.Context, cart *Cart, sctx SaleContext) (*domain.Sale, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if sctx.BranchID == "" || sctx.CashierID == "" {
		return nil, ErrMissingContext
	}

	key := submissionKey(sctx.RequestID, cart.ID())
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateSubmission
	}

	now := s.now()
	sale := domain.Sale{
		ID:            uuid.NewString(),
		CustomerID:    sctx.CustomerID,
		CashierID:     sctx.CashierID,
		BranchID:      sctx.BranchID,
		TotalAmount:   cart.Total(),
		Currency:      sctx.Currency,
		PaymentMethod: sctx.PaymentMethod,
		Status:        domain.SaleStatusCompleted,
		ReceiptNumber: receiptNumber(now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lines := cart.Lines()
	items := make([]domain.SaleItem, len(lines))
	for i, line := range lines {
		items[i] = domain.SaleItem{
			ID:          uuid.NewString(),
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			PartNumber:  line.PartNumber,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.ExtendedPrice(),
			CreatedAt:   now,
		}
	}

	if err := s.sales.CreateSale(ctx, sale); err != nil {
		// Nothing committed yet; let the cashier retry.
		if relErr := s.cache.ReleaseIdempotency(ctx, key); relErr != nil {
			log.Printf("failed to release idempotency key %s: %v", key, relErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrSaleCreationFailed, err)
	}

	// The header is committed: the checkout session is spent.
	defer cart.Clear()

	if err := s.sales.CreateSaleItems(ctx, items); err != nil {
		return &sale, &PartialCommitError{Sale: &sale, Stage: StageLineItems, Err: err}
	}
	sale.Items = items

	var decErrs []error
	for _, line := range lines {
		ok, err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			decErrs = append(decErrs, fmt.Errorf("product %s: %w", line.ProductID, err))
			continue
		}
		if !ok {
			decErrs = append(decErrs, fmt.Errorf("product %s: %w", line.ProductID, ErrInsufficientStock))
			continue
		}
		// Keep the Redis mirror in step; failures here only make the
		// fast-path reads stale, so they are logged and swallowed.
		if _, err := s.cache.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			log.Printf("stock mirror sync failed for product %s: %v", line.ProductID, err)
		}
	}
	if len(decErrs) > 0 {
		return &sale, &PartialCommitError{Sale: &sale, Stage: StageStockDecrement, Err: errors.Join(decErrs...)}
	}

	return &sale, nil
}

// ListSales returns a branch's sales newest-first, line items attached.
func (s *SaleService) ListSales(ctx context.Context, branchID string) ([]domain.Sale, error) {
	if branchID == "" {
		return nil, ErrMissingContext
	}
	return s.sales.ListSales(ctx, branchID)
}

func (s *SaleService) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.sales.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

// MarkRefunded flips a completed sale to refunded. It changes the
// status label only; stock is not restored.
func (s *SaleService) MarkRefunded(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sale.Status.CanTransitionTo(domain.SaleStatusRefunded) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.sales.UpdateSaleStatus(ctx, id, sale.Status, domain.SaleStatusRefunded)
	if err != nil {
		return nil, fmt.Errorf("update sale status: %w", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	sale.Status = domain.SaleStatusRefunded
	return sale, nil
}

func submissionKey(requestID, cartID string) string {
	if requestID != "" {
		return "sale:submit:" + requestID
	}
	return "sale:submit:" + cartID
}

// receiptNumber is date-prefixed for readability with a UUID fragment
// so concurrent submissions cannot collide.
func receiptNumber(now time.Time) string {
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102"),
		strings.ToUpper(uuid.NewString()[:8]))
}
