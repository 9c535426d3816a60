// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpi

import (
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// A Handler turns a request into a lazy stream of response events.
//
// Handle must not start any work. The work starts when the returned
// stream is subscribed to, and it starts again on every subscription.
type Handler interface {
	Handle(req *request.Request) response.Stream
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as handlers. If f is a function with appropriate signature,
// then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(req *request.Request) response.Stream

// Handle calls f(req).
func (f HandlerFunc) Handle(req *request.Request) response.Stream {
	return f(req)
}

// A Backend is the terminal Handler of a chain: the one that actually
// talks to the outside world, for example over HTTP (package transport)
// or by script injection (package jsonp).
//
// A Backend has no downstream handler. It must emit the Sent event
// first and, on success, end its stream with exactly one
// *response.Response event.
type Backend interface {
	Handler
}

// An Interceptor inspects or transforms a request on its way to the
// backend, and the stream of events on its way back.
//
// Intercept receives the request and the next handler in the chain. A
// typical interceptor derives a new request with req.Clone, forwards it
// with next.Handle, and decorates the resulting stream. An interceptor
// may also answer a request itself without calling next at all.
//
// Interceptors must forward response.User events they do not
// understand.
type Interceptor interface {
	Intercept(req *request.Request, next Handler) response.Stream
}

// The InterceptorFunc type is an adapter to allow the use of ordinary
// functions as interceptors. If f is a function with appropriate
// signature, then InterceptorFunc(f) is an Interceptor that calls f.
type InterceptorFunc func(req *request.Request, next Handler) response.Stream

// Intercept calls f(req, next).
func (f InterceptorFunc) Intercept(req *request.Request, next Handler) response.Stream {
	return f(req, next)
}

type interceptorHandler struct {
	next        Handler
	interceptor Interceptor
}

func (h *interceptorHandler) Handle(req *request.Request) response.Stream {
	return h.interceptor.Intercept(req, h.next)
}

// Chain builds a Handler which passes each request through the
// interceptors, in order, and finally to backend.
//
// The first interceptor is the outermost: it sees the request first and
// the response events last. With no interceptors, Chain returns backend
// itself.
//
// Chain panics if backend or any interceptor is nil.
func Chain(backend Backend, interceptors ...Interceptor) Handler {
	if backend == nil {
		panic("httpi: nil backend")
	}

	var h Handler = backend
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] == nil {
			panic("httpi: nil interceptor")
		}
		h = &interceptorHandler{
			next:        h,
			interceptor: interceptors[i],
		}
	}

	return h
}
