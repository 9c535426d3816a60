// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"
	"testing"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	i := Tracing(tp, propagation.TraceContext{})

	t.Run("success", func(t *testing.T) {
		var traceparent string
		backend := httpi.HandlerFunc(func(req *request.Request) response.Stream {
			traceparent = req.Headers().Get("traceparent")
			return response.Of(response.Sent{}, response.NewResponse(response.Init{Status: 200}))
		})
		_, err := httpi.Chain(backend, i).Handle(newRequest(t, "GET", "/items", request.SetParam("a", "1"))).Collect(context.Background())
		require.NoError(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		span := spans[0]
		assert.Equal(t, "HTTP GET", span.Name())
		assert.Equal(t, trace.SpanKindClient, span.SpanKind())
		assert.Equal(t, codes.Ok, span.Status().Code)
		assert.Contains(t, span.Attributes(), attribute.String("url.full", "/items?a=1"))
		assert.Contains(t, span.Attributes(), attribute.Int("http.response.status_code", 200))
		assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
		assert.Contains(t, traceparent, span.SpanContext().SpanID().String())
	})
	t.Run("failure", func(t *testing.T) {
		_, err := httpi.Chain(failBackend(502), i).Handle(newRequest(t, "DELETE", "/x")).Collect(context.Background())
		require.Error(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 2)
		span := spans[1]
		assert.Equal(t, "HTTP DELETE", span.Name())
		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Contains(t, span.Attributes(), attribute.Int("http.response.status_code", 502))
		require.Len(t, span.Events(), 1)
		assert.Equal(t, "exception", span.Events()[0].Name)
	})
	t.Run("child of caller span", func(t *testing.T) {
		ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
		_, err := httpi.Chain(okBackend(200), i).Handle(newRequest(t, "GET", "/x")).Collect(ctx)
		parent.End()
		require.NoError(t, err)

		spans := sr.Ended()
		child := spans[len(spans)-2]
		assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
		assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())
	})
}
