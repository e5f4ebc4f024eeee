// Package handler exposes the consultation pipeline over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jceconsulta/internal/consulta/models"
	"jceconsulta/internal/consulta/service"
	"jceconsulta/internal/platform/httputil"
	rlmodels "jceconsulta/internal/ratelimit/models"
	"jceconsulta/pkg/apierrors"
)

// Handler serves the consulta API.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// New creates the consulta HTTP handler.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Routes mounts the API endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/v1/consulta", h.consultar)
	r.Get("/api/v1/consulta/{cedula}", h.consultarPorRuta)
	r.Get("/api/v1/health", h.health)
}

// consultar handles the JSON body form of the consultation.
func (h *Handler) consultar(w http.ResponseWriter, r *http.Request) {
	var req models.ConsultaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErr := apierrors.New(apierrors.CodeCedulaInvalida, "Cuerpo de la solicitud inválido")
		httputil.WriteJSON(w, apierrors.HTTPStatus(apiErr.Code), models.Fallida("", apiErr, 0))
		return
	}
	h.respond(w, r, req)
}

// consultarPorRuta handles the path form, with options as query parameters.
func (h *Handler) consultarPorRuta(w http.ResponseWriter, r *http.Request) {
	req := models.ConsultaRequest{
		Cedula:      chi.URLParam(r, "cedula"),
		IncluirFoto: r.URL.Query().Get("incluirFoto") == "true",
		Formato:     r.URL.Query().Get("formato"),
	}
	h.respond(w, r, req)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, req models.ConsultaRequest) {
	resp, admission := h.service.Consultar(r.Context(), req)
	writeRateLimitHeaders(w, admission)
	if resp.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(resp.RetryAfter, 10))
	}
	httputil.WriteJSON(w, apierrors.HTTPStatus(resp.Codigo), resp)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health(r.Context())

	status := http.StatusOK
	overall := "UP"
	if !health.Portal || !health.Redis {
		status = http.StatusServiceUnavailable
		overall = "DEGRADED"
	}

	httputil.WriteJSON(w, status, map[string]any{
		"status":     overall,
		"components": health,
	})
}

func writeRateLimitHeaders(w http.ResponseWriter, admission *rlmodels.Result) {
	if admission == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(admission.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(admission.Remaining))
	if !admission.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(admission.ResetAt.Unix(), 10))
	}
}
