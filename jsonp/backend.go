// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonp

import (
	"context"
	"regexp"
	"sync"

	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// A ScriptLoader loads and runs JSONP scripts.
type ScriptLoader interface {
	// Inject starts loading the script at url and returns at once.
	// While it runs, the script may call back into callbacks by name.
	// Loading stops when ctx is done or the Script is removed.
	Inject(ctx context.Context, url string, callbacks *Registry) Script
}

// A Script is a script being loaded by a ScriptLoader.
type Script interface {
	// Done returns a channel which receives one value when the script
	// has finished: nil if it loaded and ran, or the error which made
	// it fail.
	Done() <-chan error
	// Remove stops the script, if it is still loading, and releases
	// its resources. Remove may be called more than once.
	Remove()
}

var placeholder = regexp.MustCompile(`=JSONP_CALLBACK(&|$)`)

const errorStatusText = "JSONP Error"

// A Backend sends JSONP requests. Its zero value is a valid
// configuration which loads scripts with an HTTPLoader and keeps
// callbacks in DefaultRegistry.
//
// Backend is safe for concurrent use by multiple goroutines.
type Backend struct {
	// Loader loads the scripts. If nil, an HTTPLoader using
	// http.DefaultClient is used.
	Loader ScriptLoader
	// Registry holds the callbacks while requests are in flight. If
	// nil, DefaultRegistry is used.
	Registry *Registry
}

// Handle returns the lazy event stream for req.
//
// If req is not a JSONP request with a JSON response type, the stream
// fails with a *ConfigError as soon as it is subscribed to, without
// emitting any event. Handle itself never fails.
//
// Otherwise, each subscription emits response.Sent once the script has
// been injected, then ends in one of three ways. If the script called
// its callback and loaded, a *response.Response with status 200 and the
// callback's data as body is emitted. If the script loaded without
// calling back, the stream fails with a *response.ErrorResponse with
// status 0 wrapping ErrNoCallback. If the script failed, the stream
// fails with a *response.ErrorResponse with status 0 wrapping the
// script's error. On every path, including cancellation, the script is
// removed and the callback unregistered exactly once.
func (b *Backend) Handle(req *request.Request) response.Stream {
	if req.Method() != request.JSONP {
		return response.Fail(&ConfigError{Method: req.Method(), Err: ErrWrongMethod})
	} else if req.ResponseType() != request.JSON {
		return response.Fail(&ConfigError{Method: req.Method(), Err: ErrWrongResponseType})
	}

	return func(ctx context.Context, emit func(response.Event)) error {
		return b.run(ctx, req, emit)
	}
}

func (b *Backend) registry() *Registry {
	if b.Registry == nil {
		return DefaultRegistry
	}
	return b.Registry
}

func (b *Backend) loader() ScriptLoader {
	if b.Loader == nil {
		return &HTTPLoader{}
	}
	return b.Loader
}

func (b *Backend) run(ctx context.Context, req *request.Request, emit func(response.Event)) error {
	reg := b.registry()
	name := reg.NextName()
	url := substitute(req.URLWithParams(), name)

	callback := make(chan interface{}, 1)
	reg.Register(name, func(data interface{}) {
		select {
		case callback <- data:
		default:
		}
	})

	script := b.loader().Inject(ctx, url, reg)

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			script.Remove()
			reg.Unregister(name)
		})
	}
	defer cleanup()

	emit(response.Sent{})

	var body interface{}
	finished := false
	for {
		select {
		case body = <-callback:
			finished = true
		case err := <-script.Done():
			if err != nil {
				cleanup()
				return response.NewErrorResponse(response.Init{
					URL:        url,
					StatusText: errorStatusText,
				}, err)
			}
			if !finished {
				select {
				case body = <-callback:
					finished = true
				default:
				}
			}
			cleanup()
			if !finished {
				return response.NewErrorResponse(response.Init{
					URL:        url,
					StatusText: errorStatusText,
				}, ErrNoCallback)
			}
			emit(response.NewResponse(response.Init{
				Status:     200,
				StatusText: "OK",
				URL:        url,
				Body:       body,
			}))
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// substitute replaces the first JSONP_CALLBACK placeholder value in url
// with name, keeping the & that may follow it.
func substitute(url, name string) string {
	loc := placeholder.FindStringSubmatchIndex(url)
	if loc == nil {
		return url
	}
	return url[:loc[0]] + "=" + name + url[loc[2]:loc[3]] + url[loc[1]:]
}
