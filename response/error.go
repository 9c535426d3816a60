// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"fmt"

	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/transient"
)

// An ErrorResponse is the error delivered on a Stream when a request
// fails, either in transit or while its body was being parsed.
//
// The two cases are told apart by status alone. If the status is in
// the 2xx range the server answered successfully but the body could not
// be decoded (a parse failure). Any other status, including 0 when no
// HTTP response was received at all, indicates a transport failure.
//
// ErrorResponse is never an Event. It travels on the error channel of a
// Stream, as the error returned by Subscribe.
type ErrorResponse struct {
	// Headers holds the response headers, if a response was received.
	Headers request.Headers
	// Status is the HTTP status code, or 0 if no response was received.
	Status int
	// StatusText describes the status. It defaults to "Unknown Error".
	StatusText string
	// URL is the request URL, or the empty string if unknown.
	URL string
	// Err is the underlying cause: a transport error, a parse error, or
	// for non-2xx responses the decoded error body wrapped in a
	// *BodyError. It may be nil.
	Err error
	// Message is a human-readable summary.
	Message string
}

// NewErrorResponse returns a new *ErrorResponse. The Body field of init
// is ignored; use a *BodyError as cause to carry an error body.
func NewErrorResponse(init Init, cause error) *ErrorResponse {
	e := &ErrorResponse{
		Headers:    init.Headers,
		Status:     init.Status,
		StatusText: init.StatusText,
		URL:        init.URL,
		Err:        cause,
	}
	if e.StatusText == "" {
		e.StatusText = "Unknown Error"
	}
	url := e.URL
	if url == "" {
		url = "(unknown url)"
	}
	if e.Status >= 200 && e.Status < 300 {
		e.Message = "Http failure during parsing for " + url
	} else {
		e.Message = fmt.Sprintf("Http failure response for %s: %d %s", url, e.Status, e.StatusText)
	}
	return e
}

// Error returns the message, followed by the cause if there is one.
func (e *ErrorResponse) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// OK always returns false: an error is never okay, even when the
// status code is in the 2xx range.
func (e *ErrorResponse) OK() bool {
	return false
}

// ParseFailure reports whether the error is a body parse failure on an
// otherwise successful response.
func (e *ErrorResponse) ParseFailure() bool {
	return e.Status >= 200 && e.Status < 300
}

// Timeout reports whether the underlying cause is a timeout.
func (e *ErrorResponse) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// A BodyError carries the decoded body of an unsuccessful (non-2xx)
// response as the cause of an ErrorResponse.
type BodyError struct {
	Body interface{}
}

func (e *BodyError) Error() string {
	switch b := e.Body.(type) {
	case nil:
		return "empty error body"
	case string:
		return b
	case []byte:
		return string(b)
	default:
		return fmt.Sprintf("%v", b)
	}
}
