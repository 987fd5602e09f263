package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
)

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// CartLine snapshots price and stock at add time; neither is re-read
// from the catalog afterwards.
type CartLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	PartNumber  string          `json:"part_number"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`

	stockSnapshot int
}

// ExtendedPrice is quantity x unit price.
func (l CartLine) ExtendedPrice() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the transient state of one checkout session. Lines keep
// insertion order. A Cart is not safe for concurrent use; each POS
// session owns exactly one.
type Cart struct {
	id    string
	lines []*CartLine
	index map[string]*CartLine
}

func NewCart() *Cart {
	return &Cart{
		id:    uuid.NewString(),
		index: make(map[string]*CartLine),
	}
}

// ID identifies the checkout session; it doubles as the fallback
// idempotency key for submission.
func (c *Cart) ID() string { return c.id }

// AddItem puts qty units of p in the cart, accumulating onto an
// existing line. The stock figure captured here is the one the
// product carried when it was loaded, not a fresh read.
func (c *Cart) AddItem(p domain.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.StockQuantity <= 0 {
		return ErrOutOfStock
	}

	if line, ok := c.index[p.ID]; ok {
		if line.Quantity+qty > line.stockSnapshot {
			return ErrInsufficientStock
		}
		line.Quantity += qty
		return nil
	}

	if qty > p.StockQuantity {
		return ErrInsufficientStock
	}
	line := &CartLine{
		ProductID:     p.ID,
		ProductName:   p.Name,
		PartNumber:    p.PartNumber,
		Quantity:      qty,
		UnitPrice:     p.Price,
		stockSnapshot: p.StockQuantity,
	}
	c.lines = append(c.lines, line)
	c.index[p.ID] = line
	return nil
}

// SetQuantity overwrites a line's quantity; qty <= 0 removes the line.
// It does not re-validate against stock.
func (c *Cart) SetQuantity(productID string, qty int) {
	line, ok := c.index[productID]
	if !ok {
		return
	}
	if qty <= 0 {
		c.RemoveItem(productID)
		return
	}
	line.Quantity = qty
}

func (c *Cart) RemoveItem(productID string) {
	if _, ok := c.index[productID]; !ok {
		return
	}
	delete(c.index, productID)
	for i, line := range c.lines {
		if line.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.ExtendedPrice())
	}
	return total
}

// Lines returns the cart content in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	for i, line := range c.lines {
		out[i] = *line
	}
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]*CartLine)
}
