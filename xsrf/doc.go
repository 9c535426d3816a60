// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package xsrf provides an interceptor which protects mutating requests
against cross-site request forgery by copying an anti-forgery token,
usually read from a cookie, into a request header.

The interceptor leaves alone GET and HEAD requests, which do not need a
token, and requests to absolute http:// or https:// URLs, since the
cookie set for our own origin is not the token another origin expects.
It never overwrites a header the caller has already set.

	jar, _ := cookiejar.New(nil)
	ex := xsrf.NewCookieExtractor(xsrf.JarSource{Jar: jar, URL: origin}, xsrf.DefaultCookieName)
	cl := httpi.NewClient(&transport.Backend{Jar: jar}, xsrf.Interceptor(ex, xsrf.DefaultHeaderName))
*/
package xsrf
