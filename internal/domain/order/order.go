package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod labels how a sale was settled. Methods are labels only —
// no gateway is involved. Wastage is a pseudo-method recording discarded
// stock and is excluded from revenue.
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "Cash"
	MethodCard    PaymentMethod = "Card"
	MethodAccount PaymentMethod = "Account"
	MethodWastage PaymentMethod = "Wastage"
)

// Methods lists every payment method in display order.
func Methods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodCard, MethodAccount, MethodWastage}
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodAccount, MethodWastage:
		return true
	}
	return false
}

// RequiresNote reports whether checkout must capture a free-text note
// before an order with this method can be committed.
func (m PaymentMethod) RequiresNote() bool {
	return m == MethodAccount || m == MethodWastage
}

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Line is one item row on an order. Name, price, and category are copies
// taken from the catalog when the item entered the cart, so later catalog
// edits never change historical orders.
type Line struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price * quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a committed sale record owned by the Journal.
type Order struct {
	ID        int64           `json:"id"`
	Lines     []Line          `json:"lines"`
	Gratuity  decimal.Decimal `json:"gratuity"`
	Total     decimal.Decimal `json:"total"`
	Method    PaymentMethod   `json:"method"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Status    Status          `json:"status"`
}

// LinesTotal returns the sum of line subtotals plus gratuity. It is the
// editor-side helper for re-deriving Total after a content edit.
func LinesTotal(lines []Line, gratuity decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum.Add(gratuity)
}

// CloneLines returns a deep copy of lines.
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

func (o Order) clone() Order {
	c := o
	c.Lines = CloneLines(o.Lines)
	return c
}
