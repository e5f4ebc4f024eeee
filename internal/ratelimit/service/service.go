// Package service implements the admission controller: a two-window rate
// limit check against the shared counter store, keyed by client address,
// with an in-memory fallback for store outages.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"jceconsulta/internal/platform/config"
	"jceconsulta/internal/ratelimit/metrics"
	"jceconsulta/internal/ratelimit/models"
	"jceconsulta/internal/ratelimit/store/bucket"
)

// Store consumes one token from both windows of the bucket for key.
type Store interface {
	Take(ctx context.Context, key string) (*models.Result, error)
}

// Service decides whether a request may proceed into the pipeline.
type Service struct {
	primary  Store
	fallback Store
	enabled  bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithFallback replaces the degraded-mode store. Used by tests.
func WithFallback(st Store) Option {
	return func(s *Service) { s.fallback = st }
}

// New builds an admission controller over the given primary store. The
// fallback is an in-memory bucket with the same two-window shape, so limits
// stay bounded per instance even while the shared store is down.
func New(primary Store, cfg config.RateLimit, logger *slog.Logger, opts ...Option) (*Service, error) {
	if primary == nil {
		return nil, errors.New("primary bucket store is required")
	}

	limits := models.Limits{
		RequestsPerMinute: cfg.RequestsPerMinute,
		RequestsPerHour:   cfg.RequestsPerHour,
		BurstCapacity:     cfg.BurstCapacity,
	}

	s := &Service{
		primary:  primary,
		fallback: bucket.NewMemoryStore(limits, cfg.BucketExpiration),
		enabled:  cfg.Enabled,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Admit checks both windows for the client address and consumes one token
// from each when capacity exists. A shared-store failure degrades to the
// local fallback; it never silently admits all traffic.
func (s *Service) Admit(ctx context.Context, clientAddr string) (*models.Result, error) {
	if !s.enabled {
		return &models.Result{Allowed: true, ResetAt: time.Now()}, nil
	}

	key := models.ClientKey(clientAddr)

	res, err := s.primary.Take(ctx, key)
	if err != nil {
		if s.metrics != nil {
			s.metrics.StoreFallbacks.Inc()
		}
		s.logger.WarnContext(ctx, "shared bucket store unavailable, using local fallback",
			"error", err,
		)
		res, err = s.fallback.Take(ctx, key)
		if err != nil {
			return nil, err
		}
	}

	if res.Allowed {
		if s.metrics != nil {
			s.metrics.Admitted.Inc()
		}
		return res, nil
	}

	if s.metrics != nil {
		s.metrics.Denied.Inc()
	}
	s.logger.InfoContext(ctx, "rate limit exceeded",
		"client_addr", clientAddr,
		"retry_after", res.RetryAfter.String(),
		"log_type", "audit",
	)
	return res, nil
}
