package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jceconsulta/internal/consulta/cache"
	"jceconsulta/internal/consulta/handler"
	consultametrics "jceconsulta/internal/consulta/metrics"
	"jceconsulta/internal/consulta/service"
	apihttp "jceconsulta/internal/http"
	"jceconsulta/internal/jce"
	"jceconsulta/internal/platform/config"
	"jceconsulta/internal/platform/httpserver"
	"jceconsulta/internal/platform/logger"
	platformredis "jceconsulta/internal/platform/redis"
	ratelimitmetrics "jceconsulta/internal/ratelimit/metrics"
	rlmodels "jceconsulta/internal/ratelimit/models"
	ratelimit "jceconsulta/internal/ratelimit/service"
	"jceconsulta/internal/ratelimit/store/bucket"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	limits := rlmodels.Limits{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		RequestsPerHour:   cfg.RateLimit.RequestsPerHour,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
	}
	bucketStore := bucket.NewRedisStore(redisClient.Client, limits, cfg.RateLimit.BucketExpiration)

	admitter, err := ratelimit.New(bucketStore, cfg.RateLimit, log,
		ratelimit.WithMetrics(ratelimitmetrics.New()),
	)
	if err != nil {
		log.Error("rate limiter setup failed", "error", err)
		os.Exit(1)
	}

	portalClient := jce.NewClient(cfg.Portal, log)
	recordCache := cache.NewRedisStore(redisClient.Client, cfg.Cache.TTL)

	consultaSvc, err := service.New(portalClient, recordCache, admitter, cfg.Portal.BaseURL, log,
		service.WithMetrics(consultametrics.New()),
		service.WithRedisHealth(redisClient),
	)
	if err != nil {
		log.Error("consulta service setup failed", "error", err)
		os.Exit(1)
	}

	router := apihttp.NewRouter(handler.New(consultaSvc, log), log)
	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting jce-consulta", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
