// Package healthz serves liveness and readiness probes.
package healthz

import (
	"fmt"
	"net/http"
)

// A Check reports whether one dependency is usable.
type Check func() error

type Handler struct {
	checks map[string]Check
}

func New() *Handler {
	return &Handler{
		checks: map[string]Check{},
	}
}

// AddCheck registers a named dependency check.  A handler with no checks
// always reports healthy.
func (h *Handler) AddCheck(name string, check Check) {
	h.checks[name] = check
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.checks {
		if err := check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "unhealthy: %s: %v", name, err)
			return
		}
	}
	w.Write([]byte("200 OK"))
}
