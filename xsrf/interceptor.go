// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xsrf

import (
	"strings"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Interceptor returns an interceptor which adds the token from
// extractor to eligible requests under the header headerName. An empty
// headerName means DefaultHeaderName.
//
// A request is eligible unless its method is GET or HEAD or its URL is
// an absolute http:// or https:// URL. The header is only added if
// extractor has a token and the request does not already carry the
// header.
func Interceptor(extractor TokenExtractor, headerName string) httpi.Interceptor {
	if extractor == nil {
		panic("httpi/xsrf: nil token extractor")
	}
	if headerName == "" {
		headerName = DefaultHeaderName
	}

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		if bypass(req) {
			return next.Handle(req)
		}
		token, ok := extractor.Token()
		if ok && !req.Headers().Has(headerName) {
			req = req.Clone(request.SetHeader(headerName, token))
		}
		return next.Handle(req)
	})
}

func bypass(req *request.Request) bool {
	if req.Method() == "GET" || req.Method() == "HEAD" {
		return true
	}
	lcURL := strings.ToLower(req.URL())
	return strings.HasPrefix(lcURL, "http://") || strings.HasPrefix(lcURL, "https://")
}
