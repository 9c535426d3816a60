// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"errors"
	"time"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Interceptor returns an interceptor which bounds every subscription of
// a request by the timeout p chooses for it. The clock starts when the
// stream is subscribed to, not when the request is built.
//
// When the timeout expires the downstream stream is cancelled and the
// subscriber receives a *response.ErrorResponse with status 0 whose
// cause is context.DeadlineExceeded. A stream which completes without
// error is left alone even if the deadline passed before it returned.
// A nil policy means DefaultPolicy.
func Interceptor(p Policy) httpi.Interceptor {
	if p == nil {
		p = DefaultPolicy
	}

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		d := p.Timeout(req)
		if d <= 0 || d == time.Duration(1<<63-1) {
			return next.Handle(req)
		}

		return func(ctx context.Context, emit func(response.Event)) error {
			attemptCtx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			err := next.Handle(req).Subscribe(attemptCtx, emit)
			if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				var er *response.ErrorResponse
				if !errors.As(err, &er) {
					err = response.NewErrorResponse(response.Init{URL: req.URLWithParams()}, context.DeadlineExceeded)
				}
			}
			return err
		}
	})
}
