package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/cmsfetch/auth"
	"github.com/jonwraymond/cmsfetch/observe"
	"github.com/jonwraymond/cmsfetch/secret"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	ErrMissingHost    = errors.New("config: dotcms host is required")
	ErrInvalidHost    = errors.New("config: dotcms host must be an absolute http(s) url")
	ErrInvalidBackend = errors.New("config: unknown cache backend")
	ErrMissingRedis   = errors.New("config: redis backend requires redis_url")
	ErrInvalidValue   = errors.New("config: invalid value")
)

// Config is the complete cmsfetch configuration.
type Config struct {
	DotCMS        DotCMSConfig        `yaml:"dotcms" envPrefix:"DOTCMS_"`
	Cache         CacheConfig         `yaml:"cache" envPrefix:"CMSFETCH_CACHE_"`
	Breaker       BreakerConfig       `yaml:"breaker" envPrefix:"CMSFETCH_BREAKER_"`
	Observability ObservabilityConfig `yaml:"observability" envPrefix:"CMSFETCH_"`
}

// DotCMSConfig describes the upstream API and its credential.
type DotCMSConfig struct {
	Host     string   `yaml:"host" env:"HOST"`
	Token    string   `yaml:"token" env:"TOKEN"`
	Username string   `yaml:"username" env:"USERNAME"`
	Password string   `yaml:"password" env:"PASSWORD"`
	Timeout  Duration `yaml:"timeout" env:"TIMEOUT"`
}

// CacheConfig selects and tunes the page cache.
type CacheConfig struct {
	Backend   string   `yaml:"backend" env:"BACKEND"`
	RedisURL  string   `yaml:"redis_url" env:"REDIS_URL"`
	KeyPrefix string   `yaml:"key_prefix" env:"KEY_PREFIX"`
	LiveTTL   Duration `yaml:"live_ttl" env:"LIVE_TTL"`
	MaxTTL    Duration `yaml:"max_ttl" env:"MAX_TTL"`
}

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	Enabled      bool     `yaml:"enabled" env:"ENABLED"`
	MaxFailures  int      `yaml:"max_failures" env:"MAX_FAILURES"`
	ResetTimeout Duration `yaml:"reset_timeout" env:"RESET_TIMEOUT"`
}

// ObservabilityConfig configures logs, traces and metrics.
type ObservabilityConfig struct {
	ServiceName     string  `yaml:"service_name" env:"SERVICE_NAME"`
	TracingExporter string  `yaml:"tracing_exporter" env:"TRACING_EXPORTER"`
	SamplePct       float64 `yaml:"sample_pct" env:"SAMPLE_PCT"`
	MetricsExporter string  `yaml:"metrics_exporter" env:"METRICS_EXPORTER"`
	LogLevel        string  `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DotCMS: DotCMSConfig{
			Timeout: Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			Backend:   BackendMemory,
			KeyPrefix: "cmsfetch:",
			LiveTTL:   Duration(60 * time.Second),
			MaxTTL:    Duration(time.Hour),
		},
		Breaker: BreakerConfig{
			MaxFailures:  5,
			ResetTimeout: Duration(30 * time.Second),
		},
		Observability: ObservabilityConfig{
			ServiceName:     "cmsfetch",
			TracingExporter: "none",
			SamplePct:       1.0,
			MetricsExporter: "none",
			LogLevel:        "info",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the environment and secret references.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.ResolveSecrets(ctx, secret.DefaultResolver()); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeYAML rejects unknown keys so typos do not silently fall back to
// defaults.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ResolveSecrets resolves the credential and connection fields in place.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	return r.ResolveAll(ctx, map[string]*string{
		"dotcms.host":     &c.DotCMS.Host,
		"dotcms.token":    &c.DotCMS.Token,
		"dotcms.username": &c.DotCMS.Username,
		"dotcms.password": &c.DotCMS.Password,
		"cache.redis_url": &c.Cache.RedisURL,
	})
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	host := strings.TrimSpace(c.DotCMS.Host)
	if host == "" {
		return ErrMissingHost
	}
	u, err := url.Parse(host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	if c.DotCMS.Timeout <= 0 {
		return fmt.Errorf("%w: dotcms.timeout must be positive", ErrInvalidValue)
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return ErrMissingRedis
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Cache.Backend)
	}
	if c.Cache.LiveTTL < 0 {
		return fmt.Errorf("%w: cache.live_ttl must not be negative", ErrInvalidValue)
	}
	if c.Cache.MaxTTL <= 0 {
		return fmt.Errorf("%w: cache.max_ttl must be positive", ErrInvalidValue)
	}

	if c.Breaker.Enabled {
		if c.Breaker.MaxFailures <= 0 {
			return fmt.Errorf("%w: breaker.max_failures must be positive", ErrInvalidValue)
		}
		if c.Breaker.ResetTimeout <= 0 {
			return fmt.Errorf("%w: breaker.reset_timeout must be positive", ErrInvalidValue)
		}
	}

	obs := c.ObserveConfig()
	return obs.Validate()
}

// Credential returns the upstream credential, preferring the token.
func (c *Config) Credential() (auth.Credential, error) {
	return auth.FromConfig(c.DotCMS.Token, c.DotCMS.Username, c.DotCMS.Password)
}

// ObserveConfig maps the observability section to an observe.Config.
func (c *Config) ObserveConfig() observe.Config {
	o := c.Observability
	return observe.Config{
		ServiceName: o.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   enabled(o.TracingExporter),
			Exporter:  o.TracingExporter,
			SamplePct: o.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  enabled(o.MetricsExporter),
			Exporter: o.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   o.LogLevel,
		},
	}
}

func enabled(exporter string) bool {
	return exporter != "" && exporter != "none"
}
