// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpi

import (
	"sync"

	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/gogama/httpi/transport"
)

// A Client sends requests through a chain of interceptors to a backend.
// Its zero value is a valid configuration.
//
// The zero value client uses a transport.Backend wrapping
// http.DefaultClient (from net/http) as the backend and has no
// interceptors.
//
// The chain is built once, the first time the client dispatches a
// request. Changing Backend or Interceptors after that has no effect.
// Client is safe for concurrent use by multiple goroutines.
//
// Every Client method is lazy. The methods build a request and return
// either a response.Stream or a *Call, and nothing is sent until the
// stream or call is subscribed to. Each subscription runs the whole
// chain again, interceptors included, so retrying a request is a matter
// of subscribing to it again.
type Client struct {
	// Backend is the terminal handler of the chain.
	//
	// If Backend is nil, a transport.Backend using http.DefaultClient
	// is used.
	Backend Backend
	// Interceptors are applied to every request in order: the first
	// interceptor sees the request first and the response events last.
	Interceptors []Interceptor

	once  sync.Once
	chain Handler
}

// NewClient returns a client with the given backend and interceptors.
func NewClient(backend Backend, interceptors ...Interceptor) *Client {
	return &Client{
		Backend:      backend,
		Interceptors: interceptors,
	}
}

func (c *Client) handler() Handler {
	c.once.Do(func() {
		backend := c.Backend
		if backend == nil {
			backend = &transport.Backend{}
		}
		c.chain = Chain(backend, c.Interceptors...)
	})
	return c.chain
}

// Do returns the raw event stream for a pre-built request.
//
// The stream is lazy. Each subscription passes req through the whole
// interceptor chain to the backend, and delivers every event, including
// progress events, to the subscriber. A failed request ends the stream
// with an error, typically a *response.ErrorResponse.
func (c *Client) Do(req *request.Request) response.Stream {
	if req == nil {
		panic("httpi: nil request")
	}

	h := c.handler()
	return response.Defer(func() response.Stream {
		return h.Handle(req)
	})
}

// Request builds a request from method, url and opts and returns a lazy
// call which projects the event stream as opts.Observe asks.
//
// An error building the request, for example an invalid method, is
// reported when the call is subscribed to. Request panics if
// opts.Observe is not a known Observe value.
func (c *Client) Request(method, url string, opts Options) *Call {
	return Request(c, method, url, opts)
}

// Get returns a lazy call issuing a GET to url.
func (c *Client) Get(url string, opts Options) *Call {
	return Get(c, url, opts)
}

// Delete returns a lazy call issuing a DELETE to url.
func (c *Client) Delete(url string, opts Options) *Call {
	return Delete(c, url, opts)
}

// Head returns a lazy call issuing a HEAD to url.
func (c *Client) Head(url string, opts Options) *Call {
	return Head(c, url, opts)
}

// Options returns a lazy call issuing an OPTIONS to url.
func (c *Client) Options(url string, opts Options) *Call {
	return OptionsMethod(c, url, opts)
}

// Post returns a lazy call issuing a POST of body to url. The body
// parameter replaces opts.Body.
func (c *Client) Post(url string, body interface{}, opts Options) *Call {
	return Post(c, url, body, opts)
}

// Put returns a lazy call issuing a PUT of body to url. The body
// parameter replaces opts.Body.
func (c *Client) Put(url string, body interface{}, opts Options) *Call {
	return Put(c, url, body, opts)
}

// Patch returns a lazy call issuing a PATCH of body to url. The body
// parameter replaces opts.Body.
func (c *Client) Patch(url string, body interface{}, opts Options) *Call {
	return Patch(c, url, body, opts)
}

// Jsonp returns a lazy call issuing a JSONP request to url. The query
// parameter callbackParam is set to the JSONP_CALLBACK placeholder,
// which the JSONP backend replaces with a generated callback name.
//
// The call observes the body and expects JSON. The client's chain must
// route JSONP requests to a JSONP backend, for example by including
// jsonp.Interceptor.
func (c *Client) Jsonp(url, callbackParam string) *Call {
	return Jsonp(c, url, callbackParam)
}
