// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonp

import (
	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Interceptor returns an interceptor which hands requests with the
// method request.JSONP to backend, and passes every other request down
// the chain. A nil backend means a zero value *Backend.
func Interceptor(backend httpi.Backend) httpi.Interceptor {
	if backend == nil {
		backend = &Backend{}
	}

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		if req.Method() == request.JSONP {
			return backend.Handle(req)
		}
		return next.Handle(req)
	})
}
