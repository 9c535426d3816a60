// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"context"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/google/uuid"
)

// DefaultRequestIDHeader is the header used by RequestID when given an
// empty header name.
const DefaultRequestIDHeader = "X-Request-Id"

// RequestID returns an interceptor which gives each subscription a new
// random UUID in the named header, unless the caller set the header.
func RequestID(header string) httpi.Interceptor {
	if header == "" {
		header = DefaultRequestIDHeader
	}

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		if req.Headers().Has(header) {
			return next.Handle(req)
		}
		return func(ctx context.Context, emit func(response.Event)) error {
			tagged := req.Clone(request.SetHeader(header, uuid.New().String()))
			return next.Handle(tagged).Subscribe(ctx, emit)
		}
	})
}
