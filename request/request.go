// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// JSONP is the custom method token which routes a request to a JSONP
// backend instead of a regular HTTP transport.
const JSONP = "JSONP"

// A ResponseType tells the backend how to decode the response body.
type ResponseType string

const (
	// ArrayBuffer decodes the body as raw bytes ([]byte).
	ArrayBuffer ResponseType = "arraybuffer"
	// Blob decodes the body as a *response.Blob, i.e. raw bytes
	// together with their content type.
	Blob ResponseType = "blob"
	// JSON decodes the body as JSON into generic Go values (maps,
	// slices, float64, string, bool and nil). It is the default.
	JSON ResponseType = "json"
	// Text decodes the body as a string.
	Text ResponseType = "text"
)

// Valid reports whether rt is one of the four known response types.
func (rt ResponseType) Valid() bool {
	switch rt {
	case ArrayBuffer, Blob, JSON, Text:
		return true
	default:
		return false
	}
}

// A Request is an immutable description of an outgoing HTTP request.
//
// Requests are created with New and never change afterwards. Code
// which needs a different request, for example an interceptor which
// adds a header, must derive one with Clone. Because of this a single
// Request may be dispatched any number of times, concurrently, and
// every dispatch sees exactly the same values.
type Request struct {
	method          string
	url             string
	body            interface{}
	headers         Headers
	params          Params
	responseType    ResponseType
	reportProgress  bool
	withCredentials bool
	urlWithParams   string
}

// An Option sets a field of a Request, either while it is being created
// by New or while it is being copied by Clone.
//
// An option that is not given leaves the field at its default (New) or
// current (Clone) value.
type Option func(*Request)

// WithBody sets the request body. A nil body means an explicitly empty
// body, so Clone(WithBody(nil)) removes the body of a request.
func WithBody(body interface{}) Option {
	return func(r *Request) {
		r.body = body
	}
}

// WithHeaders replaces the request headers.
func WithHeaders(h Headers) Option {
	return func(r *Request) {
		r.headers = h
	}
}

// SetHeader sets one header field, keeping the other headers.
func SetHeader(name string, values ...string) Option {
	return func(r *Request) {
		r.headers = r.headers.Set(name, values...)
	}
}

// WithParams replaces the query parameters.
func WithParams(p Params) Option {
	return func(r *Request) {
		r.params = p
	}
}

// SetParam sets one query parameter, keeping the other parameters.
func SetParam(name string, values ...string) Option {
	return func(r *Request) {
		r.params = r.params.Set(name, values...)
	}
}

// WithResponseType sets the expected response type.
func WithResponseType(rt ResponseType) Option {
	return func(r *Request) {
		r.responseType = rt
	}
}

// WithReportProgress sets whether the backend should emit progress
// events and a header response event.
func WithReportProgress(b bool) Option {
	return func(r *Request) {
		r.reportProgress = b
	}
}

// WithCredentials sets whether cookies and other credentials should
// accompany the request.
func WithCredentials(b bool) Option {
	return func(r *Request) {
		r.withCredentials = b
	}
}

// WithMethod changes the method. It is mostly useful with Clone.
func WithMethod(method string) Option {
	return func(r *Request) {
		r.method = method
	}
}

// WithURL changes the base URL. It is mostly useful with Clone.
func WithURL(url string) Option {
	return func(r *Request) {
		r.url = url
	}
}

// New returns a new Request for the given method and URL.
//
// The method is converted to upper case and must be a valid HTTP token
// (custom methods such as JSONP are allowed). An empty method means
// GET. The URL is kept as given; query parameters set via WithParams or
// SetParam are appended to it in URLWithParams.
//
// The request body is nil unless WithBody is given, whatever the
// method. The response type defaults to JSON.
func New(method, url string, opts ...Option) (*Request, error) {
	r := &Request{
		method:       method,
		url:          url,
		responseType: JSON,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

// Clone returns a copy of r with the given options applied. Fields not
// touched by any option keep their current values. Clone with no
// options returns an equal but distinct Request.
//
// Clone panics if the options produce an invalid method or response
// type, since such options are programming errors.
func (r *Request) Clone(opts ...Option) *Request {
	r2 := new(Request)
	*r2 = *r
	for _, opt := range opts {
		opt(r2)
	}
	if err := r2.init(); err != nil {
		panic(err.Error())
	}
	return r2
}

func (r *Request) init() error {
	if r.method == "" {
		r.method = "GET"
	}
	r.method = strings.ToUpper(r.method)
	if !validMethod(r.method) {
		return fmt.Errorf("httpi/request: invalid method %q", r.method)
	}
	if r.responseType == "" {
		r.responseType = JSON
	}
	if !r.responseType.Valid() {
		return fmt.Errorf("httpi/request: invalid response type %q", r.responseType)
	}
	r.urlWithParams = joinParams(r.url, r.params)
	return nil
}

// Method returns the upper-case request method.
func (r *Request) Method() string { return r.method }

// URL returns the base URL, without the query parameters from Params.
func (r *Request) URL() string { return r.url }

// Body returns the request body, which may be nil.
func (r *Request) Body() interface{} { return r.body }

// Headers returns the request headers.
func (r *Request) Headers() Headers { return r.headers }

// Params returns the query parameters.
func (r *Request) Params() Params { return r.params }

// ResponseType returns the expected response type.
func (r *Request) ResponseType() ResponseType { return r.responseType }

// ReportProgress reports whether progress events were requested.
func (r *Request) ReportProgress() bool { return r.reportProgress }

// WithCredentials reports whether credentials should be sent.
func (r *Request) WithCredentials() bool { return r.withCredentials }

// URLWithParams returns the URL with the encoded query parameters
// appended. It is computed once, when the request is created.
func (r *Request) URLWithParams() string { return r.urlWithParams }

// MightHaveBody reports whether requests using method conventionally
// carry a body. DELETE, GET, HEAD, OPTIONS and JSONP do not.
func MightHaveBody(method string) bool {
	switch strings.ToUpper(method) {
	case "DELETE", "GET", "HEAD", "OPTIONS", JSONP:
		return false
	default:
		return true
	}
}

func joinParams(url string, params Params) string {
	q := params.String()
	if q == "" {
		return url
	}
	var sep string
	switch i := strings.IndexByte(url, '?'); {
	case i == -1:
		sep = "?"
	case i < len(url)-1:
		sep = "&"
	}
	return url + sep + q
}

func validMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
