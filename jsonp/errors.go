// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonp

import (
	"errors"
)

var (
	// ErrWrongMethod is wrapped by the ConfigError for a request
	// whose method is not request.JSONP.
	ErrWrongMethod = errors.New("JSONP requests must use JSONP request method")
	// ErrWrongResponseType is wrapped by the ConfigError for a request
	// whose response type is not request.JSON.
	ErrWrongResponseType = errors.New("JSONP requests must use Json response type")
	// ErrNoCallback is the cause of the error returned when the script
	// loaded without invoking its callback.
	ErrNoCallback = errors.New("JSONP injected script did not invoke callback")
)

// A ConfigError reports a request which was routed to the JSONP backend
// but cannot be sent as JSONP. It is returned before any event is
// emitted.
type ConfigError struct {
	Method string
	Err    error
}

func (e *ConfigError) Error() string {
	return "httpi/jsonp: " + e.Method + " request: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
