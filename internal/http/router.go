// Package httpapi assembles the console's HTTP surface: the audit endpoints
// behind the admin guard, plus health and metrics.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/admin/handler"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/middleware"
)

// NewRouter wires all endpoints. Everything under /admin requires a valid
// admin JWT; /healthz and /metrics stay open for the platform probes.
func NewRouter(h *handler.Handler, jwtSecret []byte, health func(r *http.Request) error) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metadata)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(jwtSecret))
		r.Mount("/", h.Routes())
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if health != nil {
			if err := health(req); err != nil {
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "degraded", "error": err.Error()}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
