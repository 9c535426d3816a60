// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains Request, the immutable description of an
outgoing HTTP call, and the two ordered multi-value stores it is built
from: Headers and Params.

Create a request with New, passing options for everything beyond the
method and URL:

	r, err := request.New("POST", "/api/items",
		request.WithBody(item),
		request.SetHeader("Accept", "application/json"),
		request.SetParam("dry_run", "true"))
	...

A Request never changes after it is created. To derive a modified
request, typically inside an interceptor, use Clone with the same
options:

	r2 := r.Clone(request.SetHeader("X-Trace", id))
	r3 := r.Clone(request.WithBody(nil)) // same request, empty body

Options not passed to Clone keep their current values, so Clone()
with no options returns an equal but distinct copy.

Query parameters are kept apart from the base URL. URLWithParams joins
the two once, at creation time, choosing '?', '&' or no separator
depending on whether the base URL already has a query.
*/
package request
