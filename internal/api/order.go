package api

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/karak-pos/internal/domain/order"
	"github.com/xenking/karak-pos/internal/export"
)

type ordersResponse struct {
	Orders []order.Order `json:"orders"`
}

type updateStatusRequest struct {
	Status order.Status `json:"status"`
}

// updateOrderRequest is the caller-side editor payload. The handler
// re-derives the total from the submitted lines and gratuity before handing
// it to the journal, which stores it verbatim.
type updateOrderRequest struct {
	Lines    []order.Line         `json:"lines"`
	Method   *order.PaymentMethod `json:"method,omitempty"`
	Gratuity *decimal.Decimal     `json:"gratuity,omitempty"`
	Note     *string              `json:"note,omitempty"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.Filter{Month: q.Get("month")}

	if s := q.Get("status"); s != "" {
		status := order.Status(s)
		if !status.Valid() {
			writeError(w, r, http.StatusBadRequest, "unknown status")
			return
		}
		f.Status = &status
	}

	// The active queue is served FIFO; history views are newest first.
	f.NewestFirst = q.Get("view") != "active"

	writeJSON(w, r, http.StatusOK, ordersResponse{Orders: h.journal.List(f)})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	found, err := h.journal.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "order not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}
	var req updateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, found := h.journal.Get(id)
	if !found {
		writeError(w, r, http.StatusNotFound, "order not found")
		return
	}

	upd := order.Update{
		Lines:  req.Lines,
		Method: req.Method,
		Note:   req.Note,
	}

	// Re-derive the total the journal will store verbatim, preserving the
	// recorded gratuity unless the edit changes it.
	lines := existing.Lines
	if req.Lines != nil {
		lines = req.Lines
	}
	gratuity := existing.Gratuity
	if req.Gratuity != nil {
		gratuity = *req.Gratuity
		upd.Gratuity = req.Gratuity
	}
	total := order.LinesTotal(lines, gratuity)
	upd.Total = &total

	found, err := h.journal.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "order not found")
		return
	}

	updated, _ := h.journal.Get(id)
	writeJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) exportOrders(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	orders := h.journal.List(order.Filter{Month: month})

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(month))
	if err := export.Write(w, orders); err != nil {
		// Headers are gone; all we can do is log the broken download.
		zctx.From(r.Context()).Error("export orders", zap.Error(err))
	}
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "order id").Error())
		return 0, false
	}
	return id, true
}
