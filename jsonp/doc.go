// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package jsonp sends JSONP requests: requests answered by a script which
calls a named callback function with the response data.

A JSONP request has the method request.JSONP, the response type
request.JSON and a query parameter whose value is the placeholder
JSONP_CALLBACK. For each subscription the Backend generates a unique
callback name, substitutes it for the placeholder, registers the
callback in a Registry and asks a ScriptLoader to load the script. The
script is expected to invoke the callback before it finishes loading.

Route JSONP requests to the backend by installing Interceptor in the
client's chain:

	client := &httpi.Client{
		Interceptors: []httpi.Interceptor{jsonp.Interceptor(nil)},
	}
	data, err := client.Jsonp("https://api.example.com/search?q=go", "callback").Do(ctx)
*/
package jsonp
