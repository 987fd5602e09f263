package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentMpesa        PaymentMethod = "mpesa"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// ParsePaymentMethod rejects values outside the known enum.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentMpesa, PaymentCard, PaymentBankTransfer:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusRefunded  SaleStatus = "refunded"
)

func ParseSaleStatus(s string) (SaleStatus, error) {
	switch SaleStatus(s) {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusRefunded:
		return SaleStatus(s), nil
	}
	return "", fmt.Errorf("unknown sale status %q", s)
}

// CanTransitionTo encodes the pending -> completed -> refunded chain.
func (s SaleStatus) CanTransitionTo(to SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return to == SaleStatusCompleted
	case SaleStatusCompleted:
		return to == SaleStatusRefunded
	}
	return false
}

type Sale struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CashierID     string          `json:"cashier_id"`
	BranchID      string          `json:"branch_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        SaleStatus      `json:"status"`
	ReceiptNumber string          `json:"receipt_number"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []SaleItem      `json:"items,omitempty"`
}

// SaleItem snapshots the product name and part number at sale time so
// receipts stay stable when the catalog changes later.
type SaleItem struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"sale_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	PartNumber  string          `json:"part_number"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}
