// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"golang.org/x/time/rate"
)

// RateLimit returns an interceptor which waits for a token from limiter
// before passing each subscription down the chain. If the wait is cut
// short by the context, the stream fails without emitting any event.
func RateLimit(limiter *rate.Limiter) httpi.Interceptor {
	if limiter == nil {
		panic("httpi/intercept: nil limiter")
	}

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		return func(ctx context.Context, emit func(response.Event)) error {
			if err := limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return err
			}
			return next.Handle(req).Subscribe(ctx, emit)
		}
	})
}
