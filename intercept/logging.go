// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Logging returns an interceptor which logs one line per subscription
// once the stream has ended, in the form
//
//	GET "https://api.example.com/items?page=2" succeeded in 38 ms.
//
// Successful and cancelled requests are logged at Info level and
// failed ones at Error level with the error attached. The method, URL
// and elapsed time are also given as key/value pairs.
func Logging(logger logr.Logger) httpi.Interceptor {
	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		return response.Defer(func() response.Stream {
			start := time.Now()
			return next.Handle(req).Tap(nil, func(err error) {
				elapsed := time.Since(start).Milliseconds()
				outcome := outcomeOf(err)
				msg := fmt.Sprintf("%s %q %s in %d ms.", req.Method(), req.URLWithParams(), outcome, elapsed)
				kv := []interface{}{"method", req.Method(), "url", req.URLWithParams(), "elapsedMs", elapsed}
				if outcome == outcomeFailed {
					logger.Error(err, msg, kv...)
				} else {
					logger.Info(msg, kv...)
				}
			})
		})
	})
}

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSucceeded
	case errors.Is(err, context.Canceled):
		return outcomeCancelled
	default:
		return outcomeFailed
	}
}
