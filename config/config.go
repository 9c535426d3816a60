// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config holds the one explicit configuration value from which
// an httpi.Client and its standard interceptors are assembled.
//
// A Config starts from Default. Load decodes a TOML or YAML file over
// the defaults: every key present in the file wins, including false,
// zero and empty values, and every absent key keeps its default.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogama/httpi/xsrf"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level client configuration.
type Config struct {
	// BaseURL prefixes every relative request URL. Empty means none.
	BaseURL   string          `toml:"base_url" yaml:"base_url"`
	XSRF      XSRFConfig      `toml:"xsrf" yaml:"xsrf"`
	Timeout   TimeoutConfig   `toml:"timeout" yaml:"timeout"`
	RateLimit RateLimitConfig `toml:"rate_limit" yaml:"rate_limit"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	Metrics   MetricsConfig   `toml:"metrics" yaml:"metrics"`
	Tracing   TracingConfig   `toml:"tracing" yaml:"tracing"`
	RequestID RequestIDConfig `toml:"request_id" yaml:"request_id"`
	JSONP     JSONPConfig     `toml:"jsonp" yaml:"jsonp"`
}

// XSRFConfig controls the XSRF interceptor.
type XSRFConfig struct {
	Enabled    bool   `toml:"enabled" yaml:"enabled"`
	CookieName string `toml:"cookie_name" yaml:"cookie_name"`
	HeaderName string `toml:"header_name" yaml:"header_name"`
	// Origin is the URL whose cookies hold the token. Empty means
	// BaseURL.
	Origin string `toml:"origin" yaml:"origin"`
}

// TimeoutConfig controls the timeout interceptor. Durations use
// time.ParseDuration syntax; "0" disables the timeout.
type TimeoutConfig struct {
	Default   string            `toml:"default" yaml:"default"`
	PerMethod map[string]string `toml:"per_method" yaml:"per_method"`
}

// RateLimitConfig controls the client-side rate limiter.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	// Burst of 0 means the requests per second rounded up, at least 1.
	Burst int `toml:"burst" yaml:"burst"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Requests enables the one-line-per-request logging interceptor.
	Requests bool   `toml:"requests" yaml:"requests"`
	Level    string `toml:"level" yaml:"level"`
	Format   string `toml:"format" yaml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// RequestIDConfig controls the request ID interceptor.
type RequestIDConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Header  string `toml:"header" yaml:"header"`
}

// JSONPConfig controls whether JSONP requests are routed to the JSONP
// backend.
type JSONPConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		XSRF: XSRFConfig{
			Enabled:    true,
			CookieName: xsrf.DefaultCookieName,
			HeaderName: xsrf.DefaultHeaderName,
		},
		Timeout: TimeoutConfig{
			Default: "30s",
		},
		Log: LogConfig{
			Requests: true,
			Level:    "info",
			Format:   "json",
		},
		RequestID: RequestIDConfig{
			Header: "X-Request-Id",
		},
		JSONP: JSONPConfig{
			Enabled: true,
		},
	}
}

// Load reads the file at path over Default and validates the result.
// The format is chosen by extension: .toml, or .yaml and .yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		if err := validateAbsURL(c.BaseURL); err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
	}

	if c.XSRF.Enabled {
		if c.XSRF.CookieName == "" {
			return fmt.Errorf("xsrf.cookie_name is required when xsrf is enabled")
		}
		if c.XSRF.HeaderName == "" {
			return fmt.Errorf("xsrf.header_name is required when xsrf is enabled")
		}
		if c.XSRF.Origin != "" {
			if err := validateAbsURL(c.XSRF.Origin); err != nil {
				return fmt.Errorf("xsrf.origin: %w", err)
			}
		}
	}

	if _, err := parseDuration(c.Timeout.Default); err != nil {
		return fmt.Errorf("timeout.default: %w", err)
	}
	for method, d := range c.Timeout.PerMethod {
		if _, err := parseDuration(d); err != nil {
			return fmt.Errorf("timeout.per_method.%s: %w", method, err)
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit.burst must be non-negative; got %d", c.RateLimit.Burst)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	if c.RequestID.Enabled && c.RequestID.Header == "" {
		return fmt.Errorf("request_id.header is required when request IDs are enabled")
	}

	return nil
}

func validateAbsURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an absolute http or https URL; got %q", raw)
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative; got %s", s)
	}
	return d, nil
}
