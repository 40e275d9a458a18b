// Package server exposes the HTTP handlers.
package server

import (
	"net/http"

	"github.com/aphyr/lazybot/config"
	"github.com/aphyr/lazybot/telemetry"
	"github.com/aphyr/lazybot/transcript"
)

// notFoundBody is the fixed fallback body for anything the router cannot
// place, unknown servers and missing day-files included.
const notFoundBody = "These are not the logs you're looking for."

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	provider config.Provider
	catalog  *transcript.Catalog
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(provider config.Provider) *Handlers {
	return &Handlers{
		provider: provider,
		catalog:  transcript.NewCatalog(provider),
	}
}

// notFound writes the fixed 404 response. No headers are set; the body is
// always the same.
func (h *Handlers) notFound(w http.ResponseWriter) {
	telemetry.CountNotFound()
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}
