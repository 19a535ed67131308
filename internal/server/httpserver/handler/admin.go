package handler

import (
	"net/http"

	"github.com/cool4zbl/build-redis-from-scratch/internal/infra/buildinfo"
)

// handleStats handles GET /stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "NO_STORE", "store not attached")
		return
	}
	st := h.stats.Stats()
	h.writeJSON(w, r, http.StatusOK, StatsResponse{
		Keys:          st.Keys,
		ExpiringKeys:  st.Expiring,
		ExpiredLazy:   st.ExpiredLazy,
		ExpiredActive: st.ExpiredActive,
	})
}

// handleVersion handles GET /version.
func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, buildinfo.Get())
}
