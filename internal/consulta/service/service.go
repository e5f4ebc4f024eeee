// Package service orchestrates the consultation pipeline: cédula validation,
// admission control, cache lookup, deduplicated portal fetches and response
// shaping. Every outcome leaves through the same response envelope.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"jceconsulta/internal/cedula"
	"jceconsulta/internal/consulta/cache"
	"jceconsulta/internal/consulta/metrics"
	"jceconsulta/internal/consulta/models"
	"jceconsulta/internal/jce"
	"jceconsulta/internal/platform/middleware/metadata"
	rlmodels "jceconsulta/internal/ratelimit/models"
	"jceconsulta/pkg/apierrors"
)

// Fetcher queries the JCE data portal.
type Fetcher interface {
	Fetch(ctx context.Context, ced cedula.Cedula) (*jce.Record, error)
	Health(ctx context.Context) bool
}

// Admitter decides whether a client may run another consultation.
type Admitter interface {
	Admit(ctx context.Context, clientAddr string) (*rlmodels.Result, error)
}

// RedisPinger checks shared store connectivity for the health report.
type RedisPinger interface {
	Health(ctx context.Context) error
}

// Service runs consultations end to end.
type Service struct {
	fetcher       Fetcher
	cache         cache.Store
	admitter      Admitter
	portalBaseURL string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	redis         RedisPinger
	group         singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRedisHealth adds shared store connectivity to the health report.
func WithRedisHealth(p RedisPinger) Option {
	return func(s *Service) { s.redis = p }
}

// New builds the consultation orchestrator.
func New(fetcher Fetcher, cacheStore cache.Store, admitter Admitter, portalBaseURL string, logger *slog.Logger, opts ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("portal fetcher is required")
	}
	if cacheStore == nil {
		return nil, errors.New("cache store is required")
	}
	if admitter == nil {
		return nil, errors.New("admitter is required")
	}

	s := &Service{
		fetcher:       fetcher,
		cache:         cacheStore,
		admitter:      admitter,
		portalBaseURL: portalBaseURL,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Consultar runs one consultation. It always returns a response envelope;
// the second return value carries admission state for response headers and
// is nil when the request never reached the admission stage.
func (s *Service) Consultar(ctx context.Context, req models.ConsultaRequest) (*models.ConsultaResponse, *rlmodels.Result) {
	start := time.Now()
	consultaID := uuid.NewString()

	defer func() {
		if s.metrics != nil {
			s.metrics.Duracion.Observe(time.Since(start).Seconds())
		}
	}()

	ced, err := cedula.Parse(req.Cedula)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CedulasInvalidas.Inc()
		}
		return s.fallida(ctx, consultaID, req.Cedula, start,
			apierrors.New(apierrors.CodeCedulaInvalida, "Cédula inválida: debe contener exactamente 11 dígitos")), nil
	}

	formato, err := models.ParseFormato(req.Formato)
	if err != nil {
		return s.fallida(ctx, consultaID, ced.String(), start, apierrors.FromError(err)), nil
	}

	clientAddr := metadata.GetClientIP(ctx)
	admission, err := s.admitter.Admit(ctx, clientAddr)
	if err != nil {
		return s.fallida(ctx, consultaID, ced.String(), start,
			apierrors.Wrap(err, apierrors.CodeErrorProcesamiento, "No fue posible evaluar el límite de consultas")), nil
	}
	if !admission.Allowed {
		resp := s.fallida(ctx, consultaID, ced.String(), start,
			apierrors.New(apierrors.CodeRateLimitExcedido, "Límite de consultas excedido, intente más tarde"))
		resp.RetryAfter = retryAfterSeconds(admission.RetryAfter)
		return resp, admission
	}

	rec, err := s.lookup(ctx, consultaID, ced)
	if err != nil {
		return s.fallida(ctx, consultaID, ced.String(), start, s.classify(err)), admission
	}

	datos := models.Shape(ced.String(), rec, formato)
	var foto *models.InformacionFoto
	if req.IncluirFoto {
		foto = models.ShapeFoto(rec, s.portalBaseURL)
	}

	if s.metrics != nil {
		s.metrics.Exitosas.Inc()
	}
	s.logger.InfoContext(ctx, "consulta completed",
		"consulta_id", consultaID,
		"cedula", ced.Formatted(),
		"formato", string(formato),
		"duration_ms", time.Since(start).Milliseconds(),
		"log_type", "audit",
	)
	return models.Exitosa(ced.String(), datos, foto, time.Since(start)), admission
}

// lookup serves the record from cache when possible, collapsing concurrent
// misses for the same cédula into a single portal fetch. Only records with
// citizen data are cached; not-found outcomes always re-consult the portal.
func (s *Service) lookup(ctx context.Context, consultaID string, ced cedula.Cedula) (*jce.Record, error) {
	rec, found, err := s.cache.Get(ctx, ced.String())
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed, consulting portal",
			"consulta_id", consultaID,
			"error", err,
		)
	}
	if found {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return rec, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	v, err, _ := s.group.Do(ced.String(), func() (interface{}, error) {
		fetched, err := s.fetcher.Fetch(ctx, ced)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(ctx, ced.String(), fetched); err != nil {
			s.logger.WarnContext(ctx, "cache write failed",
				"consulta_id", consultaID,
				"error", err,
			)
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jce.Record), nil
}

// Health reports dependency reachability for the health endpoint.
type Health struct {
	Portal bool `json:"portal"`
	Redis  bool `json:"redis"`
}

// Health probes the portal and, when configured, the shared store.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{Portal: s.fetcher.Health(ctx), Redis: true}
	if s.redis != nil {
		h.Redis = s.redis.Health(ctx) == nil
	}
	return h
}

// classify maps portal client failures to stable result codes.
func (s *Service) classify(err error) *apierrors.Error {
	switch {
	case errors.Is(err, jce.ErrNotFound):
		if s.metrics != nil {
			s.metrics.NoEncontrados.Inc()
		}
		return apierrors.Wrap(err, apierrors.CodeCiudadanoNoEncontrado, "Ciudadano no encontrado en el registro")
	case errors.Is(err, jce.ErrTimeout):
		return apierrors.Wrap(err, apierrors.CodeJCETimeout, "El portal de la JCE no respondió a tiempo")
	case errors.Is(err, jce.ErrUnavailable):
		return apierrors.Wrap(err, apierrors.CodeJCENoDisponible, "El portal de la JCE no está disponible")
	case errors.Is(err, jce.ErrBadResponse):
		return apierrors.Wrap(err, apierrors.CodeJCERespuestaInvalida, "El portal de la JCE devolvió una respuesta inválida")
	default:
		return apierrors.Wrap(err, apierrors.CodeErrorProcesamiento, "Error procesando la consulta")
	}
}

func (s *Service) fallida(ctx context.Context, consultaID, ced string, start time.Time, apiErr *apierrors.Error) *models.ConsultaResponse {
	if s.metrics != nil {
		s.metrics.Errores.WithLabelValues(string(apiErr.Code)).Inc()
	}
	s.logger.InfoContext(ctx, "consulta failed",
		"consulta_id", consultaID,
		"codigo", string(apiErr.Code),
		"error", apiErr,
		"duration_ms", time.Since(start).Milliseconds(),
		"log_type", "audit",
	)
	return models.Fallida(ced, apiErr, time.Since(start))
}

// retryAfterSeconds rounds a wait up to whole seconds so the hint never
// tells a client to come back too early.
func retryAfterSeconds(wait time.Duration) int64 {
	secs := int64(wait / time.Second)
	if wait%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
