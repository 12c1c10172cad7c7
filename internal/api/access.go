package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/karak-pos/internal/domain/access"
)

type loginRequest struct {
	Code string `json:"code"`
}

type resetCodeRequest struct {
	Code string `json:"code"`
}

// identityView hides the access code from API responses.
type identityView struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role access.Role `json:"role"`
}

func toIdentityView(id access.Identity) identityView {
	return identityView{ID: id.ID, Name: id.Name, Role: id.Role}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := h.access.Authenticate(r.Context(), req.Code)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unknown access code")
		return
	}
	writeJSON(w, r, http.StatusOK, toIdentityView(id))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.access.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listIdentities(w http.ResponseWriter, r *http.Request) {
	identities := h.access.Identities()
	out := make([]identityView, len(identities))
	for i, id := range identities {
		out[i] = toIdentityView(id)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) resetCode(w http.ResponseWriter, r *http.Request) {
	var req resetCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	found, err := h.access.ResetCode(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		if errors.Is(err, access.ErrInvalidCode) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "identity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
