// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"
	"errors"
	"net/http"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gogama/httpi/intercept"

// Tracing returns an interceptor which starts a client span for every
// subscription and injects the span context into the request headers
// with prop, so that the server can continue the trace.
//
// A nil tp means the global tracer provider and a nil prop the global
// propagator, both looked up on each subscription.
func Tracing(tp trace.TracerProvider, prop propagation.TextMapPropagator) httpi.Interceptor {
	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		return func(ctx context.Context, emit func(response.Event)) error {
			provider, propagator := tp, prop
			if provider == nil {
				provider = otel.GetTracerProvider()
			}
			if propagator == nil {
				propagator = otel.GetTextMapPropagator()
			}

			ctx, span := provider.Tracer(tracerName).Start(ctx, "HTTP "+req.Method(),
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method()),
					attribute.String("url.full", req.URLWithParams()),
				),
			)
			defer span.End()

			carrier := propagation.HeaderCarrier(http.Header{})
			propagator.Inject(ctx, carrier)
			headers := req.Headers()
			for _, key := range carrier.Keys() {
				headers = headers.Set(key, carrier.Get(key))
			}

			err := next.Handle(req.Clone(request.WithHeaders(headers))).Subscribe(ctx, func(ev response.Event) {
				if r, ok := ev.(*response.Response); ok {
					span.SetAttributes(attribute.Int("http.response.status_code", r.Status()))
				}
				emit(ev)
			})
			if err != nil {
				var er *response.ErrorResponse
				if errors.As(err, &er) {
					span.SetAttributes(attribute.Int("http.response.status_code", er.Status))
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		}
	})
}
