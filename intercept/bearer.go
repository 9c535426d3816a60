// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"golang.org/x/oauth2"
)

// Bearer returns an interceptor which sets the Authorization header
// from a token taken from ts on every subscription. A request which
// already has an Authorization header is passed on unchanged.
//
// If ts fails, the stream fails with a *response.ErrorResponse with
// status 0 wrapping the token source's error, and nothing is sent.
func Bearer(ts oauth2.TokenSource) httpi.Interceptor {
	if ts == nil {
		panic("httpi/intercept: nil token source")
	}

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		if req.Headers().Has("Authorization") {
			return next.Handle(req)
		}
		return func(ctx context.Context, emit func(response.Event)) error {
			tok, err := ts.Token()
			if err != nil {
				return response.NewErrorResponse(response.Init{URL: req.URLWithParams()}, err)
			}
			authed := req.Clone(request.SetHeader("Authorization", tok.Type()+" "+tok.AccessToken))
			return next.Handle(authed).Subscribe(ctx, emit)
		}
	})
}
