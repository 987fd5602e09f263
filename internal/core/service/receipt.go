package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
)

const receiptWidth = 40

type Branding struct {
	Name    string
	Tagline string
	Footer  string
}

func DefaultBranding() Branding {
	return Branding{
		Name:    "MASUMA AUTO PARTS",
		Tagline: "East Africa",
		Footer:  "Thank you for your business!",
	}
}

// RenderReceipt formats a completed sale as a monospace text document.
// It is a pure function of its inputs; generatedAt is the only
// caller-supplied non-deterministic field. The TOTAL line is recomputed
// from the line items rather than read from sale.TotalAmount, which
// makes mismatches with the stored header visible on paper.
func RenderReceipt(sale domain.Sale, items []domain.SaleItem, customer *domain.Customer, branding Branding, generatedAt time.Time) string {
	var b strings.Builder

	writeCentered(&b, branding.Name)
	writeCentered(&b, branding.Tagline)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Date: %s\n", generatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Receipt: %s\n", sale.ReceiptNumber)
	if customer != nil {
		fmt.Fprintf(&b, "Customer: %s\n", customer.Name)
	}
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")

	total := decimal.Zero
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s)\n", item.ProductName, item.PartNumber)
		qty := fmt.Sprintf("  %d x %s", item.Quantity, money(sale.Currency, item.UnitPrice))
		ext := money(sale.Currency, item.TotalPrice)
		writeSpread(&b, qty, ext)
		total = total.Add(item.TotalPrice)
	}

	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")
	writeSpread(&b, "TOTAL", money(sale.Currency, total))
	fmt.Fprintf(&b, "Paid via: %s\n", sale.PaymentMethod)
	b.WriteString("\n")
	writeCentered(&b, branding.Footer)
	return b.String()
}

func writeCentered(b *strings.Builder, s string) {
	pad := (receiptWidth - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

func writeSpread(b *strings.Builder, left, right string) {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}

// money renders an amount as "KES 1,700.00".
func money(currency string, amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}
	out := grouped.String() + "." + frac
	if neg {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}
