// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

func TestLogging(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, args)
	}, funcr.Options{})

	t.Run("succeeded", func(t *testing.T) {
		lines = nil
		s := httpi.Chain(okBackend(200), Logging(logger)).Handle(newRequest(t, "GET", "/items", request.SetParam("page", "2")))
		_, err := s.Collect(context.Background())
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], `GET \"/items?page=2\" succeeded in`)
		assert.Contains(t, lines[0], `"method"="GET"`)
		assert.Contains(t, lines[0], `"url"="/items?page=2"`)
		assert.NotContains(t, lines[0], `"error"`)
	})
	t.Run("failed", func(t *testing.T) {
		lines = nil
		_, err := httpi.Chain(failBackend(503), Logging(logger)).Handle(newRequest(t, "POST", "/x")).Collect(context.Background())
		require.Error(t, err)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], `POST \"/x\" failed in`)
		assert.Contains(t, lines[0], `"error"=`)
	})
	t.Run("one line per subscription", func(t *testing.T) {
		lines = nil
		s := httpi.Chain(okBackend(200), Logging(logger)).Handle(newRequest(t, "GET", "/x"))
		for i := 0; i < 3; i++ {
			_, _ = s.Collect(context.Background())
		}
		assert.Len(t, lines, 3)
	})
	t.Run("cancelled", func(t *testing.T) {
		lines = nil
		ctx, cancel := context.WithCancel(context.Background())
		blocking := httpi.HandlerFunc(func(*request.Request) response.Stream {
			return func(ctx context.Context, emit func(response.Event)) error {
				emit(response.Sent{})
				<-ctx.Done()
				return ctx.Err()
			}
		})
		err := httpi.Chain(blocking, Logging(logger)).Handle(newRequest(t, "GET", "/x")).Subscribe(ctx, func(response.Event) {
			cancel()
		})
		assert.Equal(t, context.Canceled, err)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "cancelled in")
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)
	i := m.Interceptor()

	_, err := httpi.Chain(okBackend(201), i).Handle(newRequest(t, "PUT", "/a")).Collect(context.Background())
	require.NoError(t, err)
	_, err = httpi.Chain(failBackend(404), i).Handle(newRequest(t, "GET", "/b")).Collect(context.Background())
	require.Error(t, err)
	_, err = httpi.Chain(failBackend(404), i).Handle(newRequest(t, "GET", "/c")).Collect(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("PUT", "succeeded", "201")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "failed", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))

	count, err := testutil.GatherAndCount(reg, "httpi_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	again := NewRequestMetrics(reg)
	assert.Same(t, m.RequestsTotal, again.RequestsTotal)
	assert.Same(t, m.RequestDuration, again.RequestDuration)
	_, err = httpi.Chain(okBackend(201), Metrics(reg)).Handle(newRequest(t, "PUT", "/d")).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("PUT", "succeeded", "201")))

	assert.NotPanics(t, func() {
		NewRequestMetrics(nil)
	})

	clash := prometheus.NewRegistry()
	clash.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "httpi_client_requests_total", Help: "x"}))
	assert.Panics(t, func() {
		NewRequestMetrics(clash)
	})
}

func TestRateLimit(t *testing.T) {
	b := &countingBackend{}
	s := httpi.Chain(b, RateLimit(rate.NewLimiter(rate.Every(time.Hour), 1))).Handle(newRequest(t, "GET", "/x"))

	_, err := s.Collect(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	evs, err := s.Collect(ctx)
	assert.Error(t, err)
	assert.Empty(t, evs)
	assert.Equal(t, 1, b.calls)

	assert.PanicsWithValue(t, "httpi/intercept: nil limiter", func() {
		RateLimit(nil)
	})
}

func TestBearer(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc", TokenType: "Bearer"})

	t.Run("sets header", func(t *testing.T) {
		got := capture(t, Bearer(ts), newRequest(t, "GET", "/x"))
		assert.Equal(t, "Bearer abc", got.Headers().Get("Authorization"))
	})
	t.Run("keeps caller header", func(t *testing.T) {
		got := capture(t, Bearer(ts), newRequest(t, "GET", "/x", request.SetHeader("authorization", "Basic Zm9v")))
		assert.Equal(t, "Basic Zm9v", got.Headers().Get("Authorization"))
	})
	t.Run("token failure", func(t *testing.T) {
		b := &countingBackend{}
		cause := errors.New("token endpoint down")
		failing := tokenSourceFunc(func() (*oauth2.Token, error) { return nil, cause })
		_, err := httpi.Chain(b, Bearer(failing)).Handle(newRequest(t, "GET", "/x")).Collect(context.Background())
		var er *response.ErrorResponse
		require.True(t, errors.As(err, &er))
		assert.Equal(t, 0, er.Status)
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, 0, b.calls)
	})
	t.Run("nil token source", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpi/intercept: nil token source", func() {
			Bearer(nil)
		})
	})
}

func TestRequestID(t *testing.T) {
	var ids []string
	backend := httpi.HandlerFunc(func(req *request.Request) response.Stream {
		ids = append(ids, req.Headers().Get(DefaultRequestIDHeader))
		return response.Of(response.NewResponse(response.Init{}))
	})
	s := httpi.Chain(backend, RequestID("")).Handle(newRequest(t, "GET", "/x"))
	_, _ = s.Collect(context.Background())
	_, _ = s.Collect(context.Background())
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, ids[0], ids[1])

	got := capture(t, RequestID("X-Trace"), newRequest(t, "GET", "/x", request.SetHeader("X-Trace", "mine")))
	assert.Equal(t, "mine", got.Headers().Get("X-Trace"))
}

func TestBaseURL(t *testing.T) {
	testCases := []struct {
		base     string
		url      string
		expected string
	}{
		{"https://api.example.com/v1", "items", "https://api.example.com/v1/items"},
		{"https://api.example.com/v1/", "/items", "https://api.example.com/v1/items"},
		{"https://api.example.com", "", "https://api.example.com/"},
		{"https://api.example.com/v1", "http://other.example.com/x", "http://other.example.com/x"},
		{"https://api.example.com/v1", "//cdn.example.com/x", "//cdn.example.com/x"},
		{"", "/items", "/items"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.base+"|"+testCase.url, func(t *testing.T) {
			got := capture(t, BaseURL(testCase.base), newRequest(t, "GET", testCase.url, request.SetParam("q", "1")))
			assert.Equal(t, testCase.expected, got.URL())
			assert.True(t, strings.HasSuffix(got.URLWithParams(), "?q=1"))
		})
	}
}

func TestNoop(t *testing.T) {
	req := newRequest(t, "GET", "/x")
	assert.Same(t, req, capture(t, Noop, req))
}

func newRequest(t *testing.T, method, url string, opts ...request.Option) *request.Request {
	req, err := request.New(method, url, opts...)
	require.NoError(t, err)
	return req
}

func okBackend(status int) httpi.Backend {
	return httpi.HandlerFunc(func(req *request.Request) response.Stream {
		return response.Of(response.Sent{}, response.NewResponse(response.Init{Status: status, URL: req.URLWithParams()}))
	})
}

func failBackend(status int) httpi.Backend {
	return httpi.HandlerFunc(func(req *request.Request) response.Stream {
		return func(ctx context.Context, emit func(response.Event)) error {
			emit(response.Sent{})
			return response.NewErrorResponse(response.Init{Status: status, URL: req.URLWithParams()}, nil)
		}
	})
}

type countingBackend struct {
	calls int
}

func (b *countingBackend) Handle(req *request.Request) response.Stream {
	return func(ctx context.Context, emit func(response.Event)) error {
		b.calls++
		emit(response.NewResponse(response.Init{}))
		return nil
	}
}

// capture runs req through i and returns the request which reached the
// backend.
func capture(t *testing.T, i httpi.Interceptor, req *request.Request) *request.Request {
	var got *request.Request
	backend := httpi.HandlerFunc(func(req *request.Request) response.Stream {
		got = req
		return response.Of(response.NewResponse(response.Init{}))
	})
	_, err := httpi.Chain(backend, i).Handle(req).Collect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	return got
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) {
	return f()
}
