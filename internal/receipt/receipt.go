// Package receipt renders a plain-text receipt artifact for a committed
// order. Rendering is strictly best-effort: checkout logs and swallows any
// failure here, and the transaction completes regardless.
package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/karak-pos/internal/domain/order"
)

// Data is the contract the checkout process hands to the renderer.
type Data struct {
	OrderID   int64
	Lines     []order.Line
	Total     decimal.Decimal
	Gratuity  decimal.Decimal
	Method    order.PaymentMethod
	Note      string
	Timestamp time.Time
}

// FileRenderer writes one text file per receipt into a local directory.
type FileRenderer struct {
	dir string
}

// NewFileRenderer creates the receipt directory if needed.
func NewFileRenderer(dir string) (*FileRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create receipt dir")
	}
	return &FileRenderer{dir: dir}, nil
}

// Render writes the receipt artifact for d.
func (r *FileRenderer) Render(ctx context.Context, d Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(r.dir, fmt.Sprintf("receipt-%d.txt", d.OrderID))
	if err := os.WriteFile(path, []byte(format(d)), 0o644); err != nil {
		return errors.Wrapf(err, "write receipt %d", d.OrderID)
	}
	return nil
}

func format(d Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d\n", d.OrderID)
	fmt.Fprintf(&b, "%s\n\n", d.Timestamp.Local().Format("02 Jan 2006 15:04"))

	for _, l := range d.Lines {
		fmt.Fprintf(&b, "%2dx %-28s %8s\n", l.Quantity, l.Name, l.Subtotal().StringFixed(2))
	}

	b.WriteString(strings.Repeat("-", 40) + "\n")
	if d.Gratuity.IsPositive() {
		fmt.Fprintf(&b, "    %-28s %8s\n", "Gratuity", d.Gratuity.StringFixed(2))
	}
	fmt.Fprintf(&b, "    %-28s %8s\n", "Total", d.Total.StringFixed(2))
	fmt.Fprintf(&b, "    %-28s %8s\n", "Paid by", string(d.Method))
	if d.Note != "" {
		fmt.Fprintf(&b, "\nNote: %s\n", d.Note)
	}
	return b.String()
}
