// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package intercept

import (
	"net/url"
	"strings"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// Noop is an interceptor which passes every request on unchanged.
var Noop httpi.Interceptor = httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
	return next.Handle(req)
})

// BaseURL returns an interceptor which prefixes relative request URLs
// with base, joining them with exactly one slash. Absolute URLs, and
// every URL when base is empty, are left alone.
func BaseURL(base string) httpi.Interceptor {
	if base == "" {
		return Noop
	}
	base = strings.TrimRight(base, "/")

	return httpi.InterceptorFunc(func(req *request.Request, next httpi.Handler) response.Stream {
		if isAbs(req.URL()) {
			return next.Handle(req)
		}
		return next.Handle(req.Clone(request.WithURL(base + "/" + strings.TrimLeft(req.URL(), "/"))))
	})
}

func isAbs(rawURL string) bool {
	if strings.HasPrefix(rawURL, "//") {
		return true
	}
	u, err := url.Parse(rawURL)
	return err == nil && u.IsAbs()
}
