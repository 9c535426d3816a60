// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpi

import (
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Doer is the interface that wraps the basic Do method.
//
// Do returns the lazy event stream for a pre-built request. Client
// implements the Doer interface, and any other Doer implementation must
// behave substantially the same as Client.Do: nothing happens until the
// stream is subscribed to, and each subscription sends the request
// again.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(req *request.Request) response.Stream
}

// Requester is the interface that wraps the basic Request method.
//
// Request builds a request and returns a lazy call which projects the
// event stream according to opts.Observe. Client implements the
// Requester interface.
//
// Any Doer can be used to emulate a Requester via the Request function.
type Requester interface {
	Request(method, url string, opts Options) *Call
}

// Getter is the interface that wraps the basic Get method.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string, opts Options) *Call
}

// Deleter is the interface that wraps the basic Delete method.
//
// Any Doer can be used to emulate a Deleter via the Delete function.
type Deleter interface {
	Delete(url string, opts Options) *Call
}

// Header is the interface that wraps the basic Head method.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string, opts Options) *Call
}

// Poster is the interface that wraps the basic Post method.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.Request.SerializeBody.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url string, body interface{}, opts Options) *Call
}

// Putter is the interface that wraps the basic Put method.
//
// Any Doer can be used to emulate a Putter via the Put function.
type Putter interface {
	Put(url string, body interface{}, opts Options) *Call
}

// Patcher is the interface that wraps the basic Patch method.
//
// Any Doer can be used to emulate a Patcher via the Patch function.
type Patcher interface {
	Patch(url string, body interface{}, opts Options) *Call
}

// Executor is the interface that groups the basic Do, Request, Get,
// Delete, Head, Options, Post, Put, Patch and Jsonp methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Requester
	Getter
	Deleter
	Header
	Poster
	Putter
	Patcher
	Options(url string, opts Options) *Call
	Jsonp(url, callbackParam string) *Call
}

// Request uses the specified Doer to build a lazy call for method and
// url. A request building error is deferred to the call's subscription.
// Request panics if opts.Observe is not a known Observe value.
func Request(d Doer, method, url string, opts Options) *Call {
	req, err := buildRequest(method, url, request.Params{}, opts)
	return newCall(d, req, err, opts.Observe)
}

// Get uses the specified Doer to build a lazy GET call. Any opts.Body
// is ignored.
func Get(d Doer, url string, opts Options) *Call {
	opts.Body = nil
	return Request(d, "GET", url, opts)
}

// Delete uses the specified Doer to build a lazy DELETE call. Any
// opts.Body is ignored.
func Delete(d Doer, url string, opts Options) *Call {
	opts.Body = nil
	return Request(d, "DELETE", url, opts)
}

// Head uses the specified Doer to build a lazy HEAD call. Any opts.Body
// is ignored.
func Head(d Doer, url string, opts Options) *Call {
	opts.Body = nil
	return Request(d, "HEAD", url, opts)
}

// OptionsMethod uses the specified Doer to build a lazy OPTIONS call.
// Any opts.Body is ignored.
func OptionsMethod(d Doer, url string, opts Options) *Call {
	opts.Body = nil
	return Request(d, "OPTIONS", url, opts)
}

// Post uses the specified Doer to build a lazy POST call sending body.
func Post(d Doer, url string, body interface{}, opts Options) *Call {
	opts.Body = body
	return Request(d, "POST", url, opts)
}

// Put uses the specified Doer to build a lazy PUT call sending body.
func Put(d Doer, url string, body interface{}, opts Options) *Call {
	opts.Body = body
	return Request(d, "PUT", url, opts)
}

// Patch uses the specified Doer to build a lazy PATCH call sending
// body.
func Patch(d Doer, url string, body interface{}, opts Options) *Call {
	opts.Body = body
	return Request(d, "PATCH", url, opts)
}

// JSONPCallback is the placeholder value a JSONP backend replaces with
// the name of the generated callback function.
const JSONPCallback = "JSONP_CALLBACK"

// Jsonp uses the specified Doer to build a lazy JSONP call. It adds the
// query parameter callbackParam=JSONP_CALLBACK, expects JSON and
// observes the body.
func Jsonp(d Doer, url, callbackParam string) *Call {
	params := request.Params{}.Append(callbackParam, JSONPCallback)
	req, err := buildRequest(request.JSONP, url, params, Options{
		ResponseType: request.JSON,
	})
	return newCall(d, req, err, ObserveBody)
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("httpi: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(req *request.Request) response.Stream {
	return i.doer.Do(req)
}

func (i inflated) Request(method, url string, opts Options) *Call {
	return Request(i.doer, method, url, opts)
}

func (i inflated) Get(url string, opts Options) *Call {
	return Get(i.doer, url, opts)
}

func (i inflated) Delete(url string, opts Options) *Call {
	return Delete(i.doer, url, opts)
}

func (i inflated) Head(url string, opts Options) *Call {
	return Head(i.doer, url, opts)
}

func (i inflated) Options(url string, opts Options) *Call {
	return OptionsMethod(i.doer, url, opts)
}

func (i inflated) Post(url string, body interface{}, opts Options) *Call {
	return Post(i.doer, url, body, opts)
}

func (i inflated) Put(url string, body interface{}, opts Options) *Call {
	return Put(i.doer, url, body, opts)
}

func (i inflated) Patch(url string, body interface{}, opts Options) *Call {
	return Patch(i.doer, url, body, opts)
}

func (i inflated) Jsonp(url, callbackParam string) *Call {
	return Jsonp(i.doer, url, callbackParam)
}
