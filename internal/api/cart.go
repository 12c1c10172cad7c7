package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xenking/karak-pos/internal/domain/cart"
)

type cartResponse struct {
	Lines    []cart.Line     `json:"lines"`
	Gratuity decimal.Decimal `json:"gratuity"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
}

type addCartItemRequest struct {
	ItemID string `json:"item_id"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type gratuityRequest struct {
	// Raw so non-numeric input can be coerced to zero instead of erroring,
	// matching the ledger's lenient gratuity contract.
	Gratuity json.RawMessage `json:"gratuity"`
}

func (h *Handler) cartResponse() cartResponse {
	c := h.session.Cart()
	return cartResponse{
		Lines:    c.Lines(),
		Gratuity: c.Gratuity(),
		Subtotal: c.Subtotal(),
		Total:    c.Total(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.cartResponse())
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, ok := h.catalog.Get(req.ItemID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "menu item not found")
		return
	}
	h.session.Cart().AddItem(item)
	writeJSON(w, r, http.StatusOK, h.cartResponse())
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.session.Cart().SetQuantity(r.PathValue("id"), req.Quantity)
	writeJSON(w, r, http.StatusOK, h.cartResponse())
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.session.Cart().RemoveItem(r.PathValue("id"))
	writeJSON(w, r, http.StatusOK, h.cartResponse())
}

func (h *Handler) setGratuity(w http.ResponseWriter, r *http.Request) {
	var req gratuityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	amount := decimal.Zero
	if len(req.Gratuity) > 0 {
		var parsed decimal.Decimal
		if err := json.Unmarshal(req.Gratuity, &parsed); err == nil {
			amount = parsed
		}
	}
	h.session.Cart().SetGratuity(amount)
	writeJSON(w, r, http.StatusOK, h.cartResponse())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.session.Cart().Clear()
	writeJSON(w, r, http.StatusOK, h.cartResponse())
}
