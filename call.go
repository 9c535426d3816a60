// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpi

import (
	"context"
	"fmt"

	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Observe selects what a Call delivers to its subscriber.
type Observe int

const (
	// ObserveBody delivers the decoded body of each *response.Response,
	// after checking that it has the shape the response type promises.
	// It is the default.
	ObserveBody Observe = iota
	// ObserveResponse delivers each *response.Response.
	ObserveResponse
	// ObserveEvents delivers every response.Event, progress events
	// included.
	ObserveEvents
)

var observeNames = []string{
	"body",
	"response",
	"events",
}

// String returns the name of the observe mode.
func (o Observe) String() string {
	if o < 0 || int(o) >= len(observeNames) {
		return fmt.Sprintf("Observe(%d)", int(o))
	}
	return observeNames[o]
}

// Options are the optional parts of a request built by Client.Request
// and the verb helpers.
type Options struct {
	// Body is the request body. See request.Request.SerializeBody for
	// the supported types.
	Body interface{}
	// Headers may be nil, a request.Headers, a map[string][]string or a
	// map[string]string.
	Headers interface{}
	// Params may be nil, a request.Params, a map[string][]string or a
	// map[string]string. Params given here are added to any which the
	// helper itself sets.
	Params interface{}
	// Observe selects what the call delivers. The zero value is
	// ObserveBody.
	Observe Observe
	// ResponseType says how to decode the body. The zero value means
	// request.JSON.
	ResponseType request.ResponseType
	// ReportProgress asks the backend for progress events.
	ReportProgress bool
	// WithCredentials asks the backend to send credentials such as
	// cookies.
	WithCredentials bool
}

// A BodyTypeError is returned by a Call observing the body when the
// decoded body does not have the Go type its response type promises.
// This only happens if an interceptor replaces the body of a response.
type BodyTypeError struct {
	ResponseType request.ResponseType
	Body         interface{}
}

func (e *BodyTypeError) Error() string {
	var want string
	switch e.ResponseType {
	case request.ArrayBuffer:
		want = "[]byte"
	case request.Blob:
		want = "*response.Blob"
	default:
		want = "string"
	}
	return fmt.Sprintf("httpi: response body is %T, not %s", e.Body, want)
}

// A Call is a lazy request whose event stream is projected according
// to an Observe mode.
//
// Nothing is sent until Subscribe or Do is called, and every call to
// either runs the whole interceptor chain and backend again.
type Call struct {
	doer    Doer
	req     *request.Request
	err     error
	observe Observe
}

func newCall(d Doer, req *request.Request, err error, observe Observe) *Call {
	if d == nil {
		panic("httpi: nil doer")
	}
	if observe < ObserveBody || observe > ObserveEvents {
		panic(fmt.Sprintf("httpi: unknown observe %d", int(observe)))
	}

	return &Call{
		doer:    d,
		req:     req,
		err:     err,
		observe: observe,
	}
}

// Request returns the request the call sends, or the error which
// prevented it from being built.
func (c *Call) Request() (*request.Request, error) {
	return c.req, c.err
}

// Observe returns the call's observe mode.
func (c *Call) Observe() Observe {
	return c.observe
}

// Events returns the raw event stream of the call, ignoring its
// observe mode.
func (c *Call) Events() response.Stream {
	if c.err != nil {
		return response.Fail(c.err)
	}
	return c.doer.Do(c.req)
}

// Subscribe sends the request and passes each projected value to fn,
// returning when the stream ends. The values are response.Event for
// ObserveEvents, *response.Response for ObserveResponse and the decoded
// body for ObserveBody.
//
// The returned error is nil if the stream completed. Otherwise it is
// the request building error, the stream's error (typically a
// *response.ErrorResponse), a *BodyTypeError or ctx.Err().
func (c *Call) Subscribe(ctx context.Context, fn func(interface{})) error {
	if fn == nil {
		fn = func(interface{}) {}
	}
	events := c.Events()

	switch c.observe {
	case ObserveEvents:
		return events.Subscribe(ctx, func(ev response.Event) {
			fn(ev)
		})
	case ObserveResponse:
		return events.Filter(response.IsResponse).Subscribe(ctx, func(ev response.Event) {
			fn(ev)
		})
	default:
		return c.subscribeBody(ctx, events, fn)
	}
}

func (c *Call) subscribeBody(ctx context.Context, events response.Stream, fn func(interface{})) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bodyErr error
	err := events.Filter(response.IsResponse).Subscribe(ctx, func(ev response.Event) {
		body := ev.(*response.Response).Body()
		if err := checkBody(c.req.ResponseType(), body); err != nil {
			bodyErr = err
			cancel()
			return
		}
		fn(body)
	})

	if bodyErr != nil {
		return bodyErr
	}
	return err
}

// Do subscribes to the call and returns the last projected value, which
// for ObserveBody and ObserveResponse is the single response.
func (c *Call) Do(ctx context.Context) (interface{}, error) {
	var last interface{}
	err := c.Subscribe(ctx, func(v interface{}) {
		last = v
	})
	return last, err
}

func checkBody(rt request.ResponseType, body interface{}) error {
	if body == nil {
		return nil
	}

	var ok bool
	switch rt {
	case request.ArrayBuffer:
		_, ok = body.([]byte)
	case request.Blob:
		_, ok = body.(*response.Blob)
	case request.Text:
		_, ok = body.(string)
	default:
		ok = true
	}

	if !ok {
		return &BodyTypeError{ResponseType: rt, Body: body}
	}
	return nil
}

func buildRequest(method, url string, params request.Params, opts Options) (*request.Request, error) {
	headers, err := toHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}
	extra, err := toParams(opts.Params)
	if err != nil {
		return nil, err
	}

	return request.New(method, url,
		request.WithBody(opts.Body),
		request.WithHeaders(headers),
		request.WithParams(params.Merge(extra)),
		request.WithResponseType(opts.ResponseType),
		request.WithReportProgress(opts.ReportProgress),
		request.WithCredentials(opts.WithCredentials),
	)
}

func toHeaders(v interface{}) (request.Headers, error) {
	switch h := v.(type) {
	case nil:
		return request.Headers{}, nil
	case request.Headers:
		return h, nil
	case map[string][]string:
		return request.NewHeaders(h), nil
	case map[string]string:
		return request.NewHeaders(singleValued(h)), nil
	default:
		return request.Headers{}, fmt.Errorf("httpi: unsupported headers type %T", v)
	}
}

func toParams(v interface{}) (request.Params, error) {
	switch p := v.(type) {
	case nil:
		return request.Params{}, nil
	case request.Params:
		return p, nil
	case map[string][]string:
		return request.NewParams(p), nil
	case map[string]string:
		return request.NewParams(singleValued(p)), nil
	default:
		return request.Params{}, fmt.Errorf("httpi: unsupported params type %T", v)
	}
}

func singleValued(m map[string]string) map[string][]string {
	m2 := make(map[string][]string, len(m))
	for k, v := range m {
		m2[k] = []string{v}
	}
	return m2
}
