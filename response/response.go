// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"github.com/gogama/httpi/request"
)

// Init holds the values used to construct a *HeaderResponse, a
// *Response or an *ErrorResponse.
type Init struct {
	Headers    request.Headers
	Status     int
	StatusText string
	URL        string
	// Body is only used by NewResponse.
	Body interface{}
}

// Base holds the fields shared by *HeaderResponse and *Response.
type Base struct {
	headers    request.Headers
	status     int
	statusText string
	url        string
	ok         bool
}

func newBase(init Init, defaultStatus int, defaultStatusText string) Base {
	b := Base{
		headers:    init.Headers,
		status:     init.Status,
		statusText: init.StatusText,
		url:        init.URL,
	}
	if b.status == 0 {
		b.status = defaultStatus
	}
	if b.statusText == "" {
		b.statusText = defaultStatusText
	}
	b.ok = b.status >= 200 && b.status < 300
	return b
}

// Headers returns the response headers.
func (b *Base) Headers() request.Headers { return b.headers }

// Status returns the HTTP status code.
func (b *Base) Status() int { return b.status }

// StatusText returns the textual description of the status code. Do
// not depend on its value.
func (b *Base) StatusText() string { return b.statusText }

// URL returns the URL of the resource, or the empty string if unknown.
func (b *Base) URL() string { return b.url }

// OK reports whether the status code is in the range [200, 300). The
// value is computed once, at construction.
func (b *Base) OK() bool { return b.ok }

func (b *Base) update(init Init) Init {
	if init.Headers.Len() == 0 {
		init.Headers = b.headers
	}
	if init.Status == 0 {
		init.Status = b.status
	}
	if init.StatusText == "" {
		init.StatusText = b.statusText
	}
	if init.URL == "" {
		init.URL = b.url
	}
	return init
}

// A HeaderResponse is a partial response holding the status and headers
// but no body. Backends emit it only when the request asked for
// progress reporting.
type HeaderResponse struct {
	Base
}

// NewHeaderResponse returns a new *HeaderResponse. A zero status means
// 200 and an empty status text means "OK".
func NewHeaderResponse(init Init) *HeaderResponse {
	return &HeaderResponse{Base: newBase(init, 200, "OK")}
}

// Type returns HeaderResponseType.
func (*HeaderResponse) Type() Type { return HeaderResponseType }
func (*HeaderResponse) event()     {}

// Clone returns a copy of r with the non-zero fields of update
// overriding the current values.
func (r *HeaderResponse) Clone(update Init) *HeaderResponse {
	return NewHeaderResponse(r.update(update))
}

// A Response is the full response, including the decoded body. Every
// successful request produces exactly one Response event, and it is
// the last event of the stream.
type Response struct {
	Base
	body interface{}
}

// NewResponse returns a new *Response. A zero status means 200 and an
// empty status text means "OK".
func NewResponse(init Init) *Response {
	return &Response{
		Base: newBase(init, 200, "OK"),
		body: init.Body,
	}
}

// Type returns ResponseType.
func (*Response) Type() Type { return ResponseType }
func (*Response) event()     {}

// Body returns the decoded body, which may be nil.
func (r *Response) Body() interface{} { return r.body }

// Clone returns a copy of r with the non-zero fields of update
// overriding the current values, including the body. A nil body in
// update keeps the current body; use WithBody to clear it.
func (r *Response) Clone(update Init) *Response {
	init := r.update(update)
	if init.Body == nil {
		init.Body = r.body
	}
	return NewResponse(init)
}

// WithBody returns a copy of r whose body is exactly body, which may be
// nil.
func (r *Response) WithBody(body interface{}) *Response {
	c := *r
	c.body = body
	return &c
}

// A Blob is the decoded body for the request.Blob response type: the
// raw bytes together with their media type.
type Blob struct {
	ContentType string
	Data        []byte
}

// Size returns the length of the blob in bytes.
func (b *Blob) Size() int {
	return len(b.Data)
}
