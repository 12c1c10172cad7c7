package export

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/karak-pos/internal/domain/order"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "orders-all.json.gz", Filename(""))
	assert.Equal(t, "orders-2026-08.json.gz", Filename("2026-08"))
}

func TestWrite_ArchiveDecodesToPersistedShape(t *testing.T) {
	created := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	orders := []order.Order{
		{
			ID: 100,
			Lines: []order.Line{{
				ItemID:   "i1",
				Name:     "Signature Karak",
				Price:    decimal.RequireFromString("45"),
				Category: "Karak",
				Quantity: 2,
			}},
			Gratuity:  decimal.RequireFromString("5"),
			Total:     decimal.RequireFromString("95"),
			Method:    order.MethodAccount,
			Note:      "table 4",
			CreatedAt: created,
			Status:    order.StatusPending,
		},
		{
			ID: 101,
			Lines: []order.Line{{
				ItemID:   "i2",
				Name:     "Plain Paratha",
				Price:    decimal.RequireFromString("20"),
				Category: "Savoury Paratha",
				Quantity: 1,
			}},
			Gratuity:  decimal.Zero,
			Total:     decimal.RequireFromString("20"),
			Method:    order.MethodCash,
			CreatedAt: created,
			Status:    order.StatusCompleted,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, orders))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer func() { _ = gz.Close() }()

	var doc struct {
		Orders []order.Order `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(gz).Decode(&doc))

	require.Len(t, doc.Orders, 2)
	got := doc.Orders[0]
	assert.Equal(t, int64(100), got.ID)
	assert.Equal(t, order.MethodAccount, got.Method)
	assert.Equal(t, "table 4", got.Note)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, decimal.RequireFromString("95").Equal(got.Total))
	require.Len(t, got.Lines, 1)
	assert.True(t, decimal.RequireFromString("45").Equal(got.Lines[0].Price))
	assert.Equal(t, 2, got.Lines[0].Quantity)

	// Empty notes are omitted rather than encoded as "".
	assert.Empty(t, doc.Orders[1].Note)
}

func TestWrite_EmptyJournal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer func() { _ = gz.Close() }()

	var doc struct {
		Orders []order.Order `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(gz).Decode(&doc))
	assert.Empty(t, doc.Orders)
}
