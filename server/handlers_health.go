package server

import (
	"net/http"
	"os"
)

// HandleHealthz responds to liveness probe requests by checking that the
// default transcript root exists or can be created.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	cfg := h.provider()
	if err := os.MkdirAll(cfg.LogRoot, 0o755); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
