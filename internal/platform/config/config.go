// Package config loads service configuration from environment variables so
// main stays lean. Defaults target local development; production overrides
// everything through the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates all runtime configuration for the service.
type Config struct {
	Server    Server
	Redis     Redis
	Portal    Portal
	RateLimit RateLimit
	Cache     Cache
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"JCE_CONSULTA_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"JCE_CONSULTA_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Redis configures the shared counter and cache store connection.
type Redis struct {
	URL          string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Portal configures the upstream JCE data portal client.
type Portal struct {
	BaseURL    string        `env:"JCE_PORTAL_BASE_URL" envDefault:"https://dataportal.jce.gob.do"`
	Endpoint   string        `env:"JCE_PORTAL_ENDPOINT" envDefault:"/idcedula.asp"`
	ServiceID  string        `env:"JCE_PORTAL_SERVICE_ID" envDefault:"2"`
	Timeout    time.Duration `env:"JCE_PORTAL_TIMEOUT" envDefault:"25s"`
	MaxRetries int           `env:"JCE_PORTAL_RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay time.Duration `env:"JCE_PORTAL_RETRY_DELAY" envDefault:"1s"`
}

// RateLimit configures the per client admission controller.
type RateLimit struct {
	Enabled           bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RequestsPerMinute int           `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100"`
	RequestsPerHour   int           `env:"RATE_LIMIT_REQUESTS_PER_HOUR" envDefault:"1000"`
	BurstCapacity     int           `env:"RATE_LIMIT_BURST_CAPACITY" envDefault:"20"`
	BucketExpiration  time.Duration `env:"RATE_LIMIT_BUCKET_EXPIRATION" envDefault:"60m"`
}

// Cache configures the consultation result cache.
type Cache struct {
	TTL time.Duration `env:"CONSULTA_CACHE_TTL" envDefault:"30m"`
}

// Load builds the full configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
