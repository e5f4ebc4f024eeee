// Package http assembles the service router: API routes, operational
// endpoints and the shared middleware chain.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jceconsulta/internal/consulta/handler"
	"jceconsulta/internal/consulta/models"
	"jceconsulta/internal/platform/httputil"
	"jceconsulta/internal/platform/middleware/metadata"
	"jceconsulta/pkg/apierrors"
)

// NewRouter builds the HTTP routing tree.
func NewRouter(h *handler.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(metadata.ClientMetadata)
	r.Use(recoverer(logger))

	h.Routes(r)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// recoverer converts panics into the standard error envelope so callers never
// see a bare 500 page.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						"panic", rec,
						"path", r.URL.Path,
					)
					apiErr := apierrors.New(apierrors.CodeErrorInterno, "Error interno del servicio")
					httputil.WriteJSON(w, apierrors.HTTPStatus(apiErr.Code), models.Fallida("", apiErr, 0))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
