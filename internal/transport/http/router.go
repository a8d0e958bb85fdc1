// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mayaportal/internal/platform/health"
	"mayaportal/internal/platform/middleware"
	"mayaportal/pkg/gate"
)

// NewRouter wires all public endpoints with middleware. Everything lives
// under /api; the session routes and health stay open, the report routes sit
// behind the cookie gate.
func NewRouter(authHandler *AuthHandler, statsHandler *StatsHandler, healthHandler *health.Handler, codec *gate.Codec, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Route("/api", func(api chi.Router) {
		healthHandler.Register(api)
		authHandler.Register(api)

		api.Group(func(protected chi.Router) {
			protected.Use(gate.RequireAuth(codec, logger))
			statsHandler.Register(protected)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
