// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/gogama/httpi"
	"github.com/gogama/httpi/jsonp"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/gogama/httpi/timeout"
	"github.com/gogama/httpi/xsrf"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

func TestInterceptors(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		is, err := Interceptors(Default(), Deps{})
		require.NoError(t, err)
		// Logging, timeout, XSRF and JSONP.
		assert.Len(t, is, 4)
	})
	t.Run("everything", func(t *testing.T) {
		cfg := Default()
		cfg.BaseURL = "https://api.example.com"
		cfg.RequestID.Enabled = true
		cfg.Metrics.Enabled = true
		cfg.Tracing.Enabled = true
		cfg.RateLimit = RateLimitConfig{Enabled: true, RequestsPerSecond: 100}
		extra := httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
			return next.Handle(req)
		})
		is, err := Interceptors(cfg, Deps{
			Registerer:  prometheus.NewRegistry(),
			TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "a"}),
			Extra:       []httpi.Interceptor{extra},
		})
		require.NoError(t, err)
		assert.Len(t, is, 11)
	})
	t.Run("no timeout", func(t *testing.T) {
		cfg := Default()
		cfg.Timeout.Default = "0"
		cfg.XSRF.Enabled = false
		cfg.JSONP.Enabled = false
		cfg.Log.Requests = false
		is, err := Interceptors(cfg, Deps{})
		require.NoError(t, err)
		assert.Empty(t, is)
	})
	t.Run("metrics on default registerer twice", func(t *testing.T) {
		cfg := Default()
		cfg.Metrics.Enabled = true
		assert.NotPanics(t, func() {
			_, err := NewClient(cfg, Deps{})
			require.NoError(t, err)
			_, err = NewClient(cfg, Deps{})
			require.NoError(t, err)
		})
	})
	t.Run("invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Log.Level = "loud"
		_, err := NewClient(cfg, Deps{})
		assert.ErrorContains(t, err, "config: log.level")
	})
}

func TestNewClient(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	origin, err := url.Parse(server.URL)
	require.NoError(t, err)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)
	jar.SetCookies(origin, []*http.Cookie{{Name: "XSRF-TOKEN", Value: "from-jar"}})

	var lines []string
	reg := prometheus.NewRegistry()
	cfg := Default()
	cfg.BaseURL = server.URL + "/v1"
	cfg.RequestID.Enabled = true
	cfg.Metrics.Enabled = true

	cl, err := NewClient(cfg, Deps{
		Doer:       server.Client(),
		Jar:        jar,
		Registerer: reg,
		Logger: funcr.New(func(_, args string) {
			lines = append(lines, args)
		}, funcr.Options{}),
	})
	require.NoError(t, err)

	t.Run("relative POST", func(t *testing.T) {
		body, err := cl.Post("items", map[string]string{"n": "1"}, httpi.Options{}).Do(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"ok": true}, body)
		require.NotNil(t, got)
		assert.Equal(t, "/v1/items", got.URL.Path)
		assert.Equal(t, "from-jar", got.Header.Get("X-XSRF-TOKEN"))
		_, err = uuid.Parse(got.Header.Get("X-Request-Id"))
		assert.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "succeeded in")
		count, err := testutil.GatherAndCount(reg, "httpi_client_requests_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
	t.Run("relative GET", func(t *testing.T) {
		_, err := cl.Get("items", httpi.Options{}).Do(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got.Header.Get("X-XSRF-TOKEN"))
	})
	t.Run("absolute POST", func(t *testing.T) {
		_, err := cl.Post(server.URL+"/other", nil, httpi.Options{}).Do(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/other", got.URL.Path)
		assert.Empty(t, got.Header.Get("X-XSRF-TOKEN"))
	})
}

func TestNewClientJSONP(t *testing.T) {
	reg := jsonp.NewRegistry()
	loader := jsonpLoader(func(s *jsonpScript, reg *jsonp.Registry) {
		reg.Invoke(jsonp.CallbackPrefix+"0", "hi")
		s.done <- nil
	})
	cfg := Default()
	cl, err := NewClient(cfg, Deps{
		Backend: httpi.HandlerFunc(func(*request.Request) response.Stream {
			return response.Of()
		}),
		JSONP: &jsonp.Backend{Loader: loader, Registry: reg},
	})
	require.NoError(t, err)
	body, err := cl.Jsonp("/api", "cb").Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", body)
}

func TestTimeoutPolicy(t *testing.T) {
	get, err := request.New("GET", "/")
	require.NoError(t, err)
	post, err := request.New("POST", "/")
	require.NoError(t, err)

	assert.Equal(t, timeout.Infinite, timeoutPolicy(TimeoutConfig{Default: "0"}))
	assert.Equal(t, timeout.Infinite, timeoutPolicy(TimeoutConfig{}))
	assert.Equal(t, 5*time.Second, timeoutPolicy(TimeoutConfig{Default: "5s"}).Timeout(get))

	p := timeoutPolicy(TimeoutConfig{Default: "5s", PerMethod: map[string]string{"post": "1m"}})
	assert.Equal(t, 5*time.Second, p.Timeout(get))
	assert.Equal(t, time.Minute, p.Timeout(post))
}

func TestLimiter(t *testing.T) {
	assert.Equal(t, 3, limiter(RateLimitConfig{RequestsPerSecond: 2.5}).Burst())
	assert.Equal(t, 1, limiter(RateLimitConfig{RequestsPerSecond: 0.1}).Burst())
	assert.Equal(t, 7, limiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 7}).Burst())
}

func TestJarSource(t *testing.T) {
	cfg := Default()
	assert.Equal(t, xsrf.StaticSource(""), jarSource(cfg, nil))

	cfg.BaseURL = "https://api.example.com"
	src, ok := jarSource(cfg, nil).(xsrf.JarSource)
	require.True(t, ok)
	assert.Equal(t, "api.example.com", src.URL.Host)

	cfg.XSRF.Origin = "https://app.example.com"
	src, ok = jarSource(cfg, nil).(xsrf.JarSource)
	require.True(t, ok)
	assert.Equal(t, "app.example.com", src.URL.Host)
}

type jsonpLoader func(s *jsonpScript, reg *jsonp.Registry)

func (f jsonpLoader) Inject(_ context.Context, _ string, reg *jsonp.Registry) jsonp.Script {
	s := &jsonpScript{done: make(chan error, 1)}
	f(s, reg)
	return s
}

type jsonpScript struct {
	done chan error
}

func (s *jsonpScript) Done() <-chan error { return s.done }
func (s *jsonpScript) Remove()            {}
