// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
	"github.com/gogama/httpi"
	"github.com/gogama/httpi/intercept"
	"github.com/gogama/httpi/jsonp"
	"github.com/gogama/httpi/timeout"
	"github.com/gogama/httpi/transport"
	"github.com/gogama/httpi/xsrf"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Deps holds the collaborators NewClient cannot build from a Config.
// Every field is optional.
type Deps struct {
	// Backend ends the chain. If nil, a *transport.Backend using Doer
	// and Jar is built.
	Backend httpi.Backend
	// Doer is the HTTP client of the default backend.
	Doer transport.HTTPDoer
	// Jar holds cookies for the default backend and is the default
	// source of the XSRF token.
	Jar http.CookieJar
	// Logger receives request log lines. The zero value discards them.
	Logger logr.Logger
	// Registerer receives the request metrics. If nil,
	// prometheus.DefaultRegisterer is used.
	Registerer prometheus.Registerer
	// TracerProvider and Propagator are used for tracing. If nil, the
	// global ones are used.
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
	// TokenSource, if set, adds an OAuth2 bearer token to requests.
	TokenSource oauth2.TokenSource
	// XSRFTokens overrides the cookie-based XSRF token extractor.
	XSRFTokens xsrf.TokenExtractor
	// JSONP is the JSONP backend. If nil, a zero value *jsonp.Backend
	// is used.
	JSONP *jsonp.Backend
	// Extra interceptors run innermost, after all the standard ones.
	Extra []httpi.Interceptor
}

// Interceptors returns the interceptors configured by c, outermost
// first, in this fixed order: request ID, logging, metrics, tracing,
// timeout, rate limit, XSRF, base URL, bearer token, JSONP, then
// deps.Extra. Interceptors which are disabled are left out.
//
// XSRF runs before the base URL is applied, so that relative request
// URLs, which target the configured origin, still receive the token.
func Interceptors(c Config, deps Deps) ([]httpi.Interceptor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var is []httpi.Interceptor
	if c.RequestID.Enabled {
		is = append(is, intercept.RequestID(c.RequestID.Header))
	}
	if c.Log.Requests {
		is = append(is, intercept.Logging(deps.Logger))
	}
	if c.Metrics.Enabled {
		reg := deps.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		is = append(is, intercept.Metrics(reg))
	}
	if c.Tracing.Enabled {
		is = append(is, intercept.Tracing(deps.TracerProvider, deps.Propagator))
	}
	if p := timeoutPolicy(c.Timeout); p != timeout.Infinite {
		is = append(is, timeout.Interceptor(p))
	}
	if c.RateLimit.Enabled {
		is = append(is, intercept.RateLimit(limiter(c.RateLimit)))
	}
	if c.XSRF.Enabled {
		tokens := deps.XSRFTokens
		if tokens == nil {
			tokens = xsrf.NewCookieExtractor(jarSource(c, deps.Jar), c.XSRF.CookieName)
		}
		is = append(is, xsrf.Interceptor(tokens, c.XSRF.HeaderName))
	}
	if c.BaseURL != "" {
		is = append(is, intercept.BaseURL(c.BaseURL))
	}
	if deps.TokenSource != nil {
		is = append(is, intercept.Bearer(deps.TokenSource))
	}
	if c.JSONP.Enabled {
		backend := deps.JSONP
		if backend == nil {
			backend = &jsonp.Backend{}
		}
		is = append(is, jsonp.Interceptor(backend))
	}
	return append(is, deps.Extra...), nil
}

// NewClient returns a client whose chain is built from c and deps by
// Interceptors.
func NewClient(c Config, deps Deps) (*httpi.Client, error) {
	is, err := Interceptors(c, deps)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	backend := deps.Backend
	if backend == nil {
		backend = &transport.Backend{Doer: deps.Doer, Jar: deps.Jar}
	}
	return httpi.NewClient(backend, is...), nil
}

// timeoutPolicy expects a validated TimeoutConfig. A zero duration
// means no timeout.
func timeoutPolicy(tc TimeoutConfig) timeout.Policy {
	usual, _ := parseDuration(tc.Default)
	if len(tc.PerMethod) == 0 {
		if usual == 0 {
			return timeout.Infinite
		}
		return timeout.Fixed(usual)
	}
	byMethod := make(map[string]time.Duration, len(tc.PerMethod))
	for method, s := range tc.PerMethod {
		byMethod[method], _ = parseDuration(s)
	}
	return timeout.PerMethod(usual, byMethod)
}

func limiter(rc RateLimitConfig) *rate.Limiter {
	burst := rc.Burst
	if burst == 0 {
		burst = int(math.Ceil(rc.RequestsPerSecond))
		if burst < 1 {
			burst = 1
		}
	}
	return rate.NewLimiter(rate.Limit(rc.RequestsPerSecond), burst)
}

func jarSource(c Config, jar http.CookieJar) xsrf.CookieSource {
	origin := c.XSRF.Origin
	if origin == "" {
		origin = c.BaseURL
	}
	u, err := url.Parse(origin)
	if err != nil || origin == "" {
		return xsrf.StaticSource("")
	}
	return xsrf.JarSource{Jar: jar, URL: u}
}
