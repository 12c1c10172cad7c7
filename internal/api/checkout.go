package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/karak-pos/internal/domain/checkout"
	"github.com/xenking/karak-pos/internal/domain/order"
)

type checkoutResponse struct {
	State  checkout.State      `json:"state"`
	Method order.PaymentMethod `json:"method,omitempty"`
	Order  *order.Order        `json:"order,omitempty"`
}

type selectMethodRequest struct {
	Method order.PaymentMethod `json:"method"`
}

type confirmRequest struct {
	Note string `json:"note"`
}

func checkoutState(p *checkout.Process) checkoutResponse {
	resp := checkoutResponse{State: p.State()}
	if m, ok := p.Method(); ok {
		resp.Method = m
	}
	if o, ok := p.Order(); ok {
		resp.Order = &o
	}
	return resp
}

func (h *Handler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	p, err := h.session.Begin()
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, checkout.ErrCheckoutActive):
			writeError(w, r, http.StatusConflict, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, r, http.StatusCreated, checkoutState(p))
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session.Active()
	if !ok {
		writeError(w, r, http.StatusNotFound, checkout.ErrNoCheckout.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, checkoutState(p))
}

func (h *Handler) selectMethod(w http.ResponseWriter, r *http.Request) {
	var req selectMethodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, ok := h.session.Active()
	if !ok {
		writeError(w, r, http.StatusNotFound, checkout.ErrNoCheckout.Error())
		return
	}
	if err := p.SelectMethod(r.Context(), req.Method); err != nil {
		writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, checkoutState(p))
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, ok := h.session.Active()
	if !ok {
		writeError(w, r, http.StatusNotFound, checkout.ErrNoCheckout.Error())
		return
	}
	if err := p.Confirm(r.Context(), req.Note); err != nil {
		writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, checkoutState(p))
}

func (h *Handler) cancelCheckout(w http.ResponseWriter, r *http.Request) {
	p, ok := h.session.Active()
	if !ok {
		writeError(w, r, http.StatusNotFound, checkout.ErrNoCheckout.Error())
		return
	}
	if err := p.Cancel(); err != nil {
		writeCheckoutError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrNoteRequired),
		errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, checkout.ErrBadTransition):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
