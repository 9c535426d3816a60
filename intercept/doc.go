// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package intercept provides ready-made interceptors for an httpi.Client.

Every interceptor here does its per-request work when the stream is
subscribed to, not when the request enters the chain. A request ID, a
span, a rate-limit token or an OAuth2 token is therefore taken afresh
each time a Call is resubscribed.

A typical chain, outermost first:

	cl := httpi.NewClient(backend,
		intercept.RequestID(""),
		intercept.Logging(logger),
		intercept.Metrics(prometheus.DefaultRegisterer),
		intercept.Tracing(nil, nil),
		intercept.RateLimit(rate.NewLimiter(10, 1)),
		intercept.BaseURL("https://api.example.com/v1"),
	)
*/
package intercept
