// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"errors"
	"strconv"
	"time"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics holds the Prometheus collectors updated by the
// interceptor returned from its Interceptor method.
type RequestMetrics struct {
	// RequestsTotal counts ended subscriptions by method, outcome
	// (succeeded, failed or cancelled) and status code. The status is
	// "0" when no HTTP response was received.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration observes the time from subscription to the end of
	// the stream, in seconds, by method.
	RequestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered. If reg already holds collectors
// with the same names and labels, those are reused, so every
// RequestMetrics built against one registry records into the same
// series.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	m := &RequestMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httpi_client_requests_total",
			Help: "Total requests sent through the httpi client chain.",
		}, []string{"method", "outcome", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httpi_client_request_duration_seconds",
			Help:    "Request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg != nil {
		m.RequestsTotal = register(reg, m.RequestsTotal)
		m.RequestDuration = register(reg, m.RequestDuration)
	}
	return m
}

// register registers c with reg, returning the collector already
// registered in its place if there is one. Any other registration
// error, such as a name clash with different labels, panics.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// Interceptor returns an interceptor recording into m.
func (m *RequestMetrics) Interceptor() httpi.Interceptor {
	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		return response.Defer(func() response.Stream {
			start := time.Now()
			status := 0
			return next.Handle(req).Tap(func(ev response.Event) {
				if r, ok := ev.(*response.Response); ok {
					status = r.Status()
				}
			}, func(err error) {
				var er *response.ErrorResponse
				if errors.As(err, &er) {
					status = er.Status
				}
				m.RequestsTotal.WithLabelValues(req.Method(), outcomeOf(err), strconv.Itoa(status)).Inc()
				m.RequestDuration.WithLabelValues(req.Method()).Observe(time.Since(start).Seconds())
			})
		})
	})
}

// Metrics registers RequestMetrics with reg, reusing collectors already
// registered there, and returns an interceptor recording into them.
func Metrics(reg prometheus.Registerer) httpi.Interceptor {
	return NewRequestMetrics(reg).Interceptor()
}
