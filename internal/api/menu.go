package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/karak-pos/internal/domain/menu"
)

type menuResponse struct {
	Categories []string    `json:"categories"`
	Items      []menu.Item `json:"items"`
}

type menuItemRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, menuResponse{
		Categories: h.catalog.Categories(),
		Items:      h.catalog.Items(),
	})
}

func (h *Handler) addMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.catalog.Add(r.Context(), req.Name, req.Price, req.Category)
	if err != nil {
		writeMenuError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	found, err := h.catalog.UpdateItem(r.Context(), r.PathValue("id"), req.Name, req.Price, req.Category)
	if err != nil {
		writeMenuError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "menu item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.DeleteItem(r.Context(), r.PathValue("id")) {
		writeError(w, r, http.StatusNotFound, "menu item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.catalog.AddCategory(r.Context(), req.Name); err != nil {
		writeMenuError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func writeMenuError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, menu.ErrEmptyName),
		errors.Is(err, menu.ErrNegativePrice),
		errors.Is(err, menu.ErrEmptyCategory):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
