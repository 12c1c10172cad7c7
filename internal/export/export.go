// Package export streams order-journal archives as gzip-compressed JSON for
// offline bookkeeping. The write path uses a streaming encoder so a large
// journal never has to be buffered in full.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/karak-pos/internal/domain/order"
)

// Filename returns the archive name for a month, e.g. "orders-2026-08.json.gz".
// An empty month yields the full-journal archive name.
func Filename(month string) string {
	if month == "" {
		return "orders-all.json.gz"
	}
	return fmt.Sprintf("orders-%s.json.gz", month)
}

// Write streams orders to w as a gzip-compressed JSON document of the shape
// {"orders": [...]}, matching the persisted record layout.
func Write(w io.Writer, orders []order.Order) error {
	gz := pgzip.NewWriter(w)
	enc := jx.NewStreamingEncoder(gz, -1)

	enc.ObjStart()
	enc.FieldStart("orders")
	enc.ArrStart()
	for _, o := range orders {
		encodeOrder(enc, o)
	}
	enc.ArrEnd()
	enc.ObjEnd()

	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "flush archive")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}
	return nil
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range o.Lines {
		e.ObjStart()
		e.FieldStart("item_id")
		e.Str(l.ItemID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("price")
		e.Num(jx.Num(l.Price.String()))
		e.FieldStart("category")
		e.Str(l.Category)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("gratuity")
	e.Num(jx.Num(o.Gratuity.String()))
	e.FieldStart("total")
	e.Num(jx.Num(o.Total.String()))
	e.FieldStart("method")
	e.Str(string(o.Method))
	if o.Note != "" {
		e.FieldStart("note")
		e.Str(o.Note)
	}
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.Format(time.RFC3339Nano))
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.ObjEnd()
}
