// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"strings"
	"time"

	"github.com/gogama/httpi/request"
)

// A Policy defines a timeout policy which may be plugged into an
// interceptor chain, via Interceptor, to direct how long each request
// may run before it is abandoned.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the request. A zero or
	// negative value means no timeout.
	Timeout(req *request.Request) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 30 seconds on each request.
var DefaultPolicy Policy = Fixed(30 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value for every
// request. The return value is a timeout policy that always returns the
// value d.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (p fixed) Timeout(_ *request.Request) time.Duration {
	return time.Duration(p)
}

// PerMethod constructs a timeout policy that looks up the timeout by
// request method, falling back to usual for methods not in byMethod.
// Method names are matched case-insensitively.
//
// Consider the following timeout policy:
//
// 	p := PerMethod(5*time.Second, map[string]time.Duration{
// 		"POST":  30 * time.Second,
// 		"JSONP": 10 * time.Second,
// 	})
//
// The policy p gives POST requests 30 seconds, JSONP requests 10
// seconds and every other request 5 seconds.
func PerMethod(usual time.Duration, byMethod map[string]time.Duration) Policy {
	p := perMethod{
		usual:    usual,
		byMethod: make(map[string]time.Duration, len(byMethod)),
	}
	for m, d := range byMethod {
		p.byMethod[strings.ToUpper(m)] = d
	}
	return p
}

type perMethod struct {
	usual    time.Duration
	byMethod map[string]time.Duration
}

func (p perMethod) Timeout(req *request.Request) time.Duration {
	if d, ok := p.byMethod[req.Method()]; ok {
		return d
	}
	return p.usual
}
