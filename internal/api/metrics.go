package api

import (
	"net/http"
	"time"

	"github.com/xenking/karak-pos/internal/domain/analytics"
)

func (h *Handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	window, err := analytics.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m := analytics.Compute(h.journal.All(), window, time.Now())
	writeJSON(w, r, http.StatusOK, m)
}
