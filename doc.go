// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpi provides an HTTP client built around a chain of
interceptors which ends in a pluggable backend, and a lazy stream of
response events flowing back through the chain.

Create a Client to begin making requests. Requests are lazy: nothing is
sent until the returned call is subscribed to.

	client := &httpi.Client{}
	body, err := client.Get("https://www.example.com/items", httpi.Options{}).Do(ctx)
	...
	body, err := client.Post("https://www.example.com/items",
		map[string]interface{}{"name": "x"}, httpi.Options{}).Do(ctx)

Every call observes the body by default. To see the whole response, or
every event including upload and download progress, set Observe:

	call := client.Get("https://www.example.com/big", httpi.Options{
		Observe:        httpi.ObserveEvents,
		ReportProgress: true,
		ResponseType:   request.ArrayBuffer,
	})
	err := call.Subscribe(ctx, func(v interface{}) {
		switch ev := v.(type) {
		case response.DownloadProgress:
			...
		case *response.Response:
			...
		}
	})

To change what every request does, install interceptors. Each
interceptor gets the request and the next handler in the chain:

	addToken := httpi.InterceptorFunc(
		func(req *request.Request, next httpi.Handler) response.Stream {
			return next.Handle(req.Clone(request.SetHeader("Authorization", token)))
		})
	client := &httpi.Client{
		Interceptors: []httpi.Interceptor{addToken},
	}

Ready-made interceptors live in packages intercept, timeout, xsrf and
jsonp. Package config assembles a client with a standard interceptor
list from a configuration file.

For control over how requests are sent, use a custom Backend. Package
transport provides the default net/http backend; package jsonp provides
a backend for JSONP requests.

Package httpi provides basic interfaces for each method of the client
(Doer, Requester, Getter, Deleter, Header, Poster, Putter and Patcher);
a combined interface that composes all of them (Executor); and utility
functions for working with a Doer (Inflate, Request, Get, Delete, Head,
OptionsMethod, Post, Put, Patch and Jsonp).
*/
package httpi
