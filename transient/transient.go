// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category classifies why a request failed, as reported by
// Categorize.
//
// Not means the failure says nothing about whether the same request
// could succeed if sent again. Every other category names a condition
// that is typically short-lived.
type Category int

const (
	// Not indicates a nil error, or an error which is not transient.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error, or one of the
	// errors it wraps, has a Timeout method which reports true. This
	// includes context.DeadlineExceeded.
	Timeout
	// Canceled indicates the subscriber gave up on the request: the
	// error is, or wraps, context.Canceled.
	Canceled
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED), which often just means the service is
	// restarting.
	ConnRefused
	// ConnReset indicates the remote host reset an established
	// connection (syscall.ECONNRESET).
	ConnReset
)

var categoryNames = []string{
	"not",
	"timeout",
	"canceled",
	"conn_refused",
	"conn_reset",
}

// String returns a short snake_case name for the category, suitable
// as a metric label value.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the category of err, looking through wrapped
// causes as well as err itself. Timeout takes precedence over every
// other category.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
