// Package cart implements the in-progress sale ledger. Exactly one cart
// exists per terminal session; there are no saved or parked carts.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/karak-pos/internal/domain/menu"
)

// Line is one accumulated item row. Name, price, and category are frozen
// copies taken from the catalog on first add.
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

// Cart accumulates selected items and gratuity for the current sale.
// Totals are derived reads, recomputed on every call.
type Cart struct {
	mu       sync.Mutex
	lines    []Line
	gratuity decimal.Decimal
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of an existing line for the item, or
// appends a new line with quantity 1, copying the item's current name,
// price, and category. Later catalog price edits do not change the line.
func (c *Cart) AddItem(it menu.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == it.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ItemID:   it.ID,
		Name:     it.Name,
		Price:    it.Price,
		Category: it.Category,
		Quantity: 1,
	})
}

// SetQuantity sets the quantity of the line for itemID, removing the line
// when qty drops to zero or below. An absent id is a silent no-op.
func (c *Cart) SetQuantity(itemID string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID != itemID {
			continue
		}
		if qty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = qty
		}
		return
	}
}

// RemoveItem removes the line for itemID if present.
func (c *Cart) RemoveItem(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetGratuity sets the gratuity amount. Negative input is coerced to zero.
func (c *Cart) SetGratuity(amount decimal.Decimal) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gratuity = amount
}

// Clear empties the lines and resets gratuity to zero.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.gratuity = decimal.Zero
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Gratuity returns the current gratuity amount.
func (c *Cart) Gratuity() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gratuity
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Subtotal returns the sum of line subtotals.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

// Total returns subtotal plus gratuity.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked().Add(c.gratuity)
}

func (c *Cart) subtotalLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
