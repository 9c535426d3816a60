// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xsrf

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const (
	// DefaultCookieName is the name of the cookie from which the token
	// is read by default.
	DefaultCookieName = "XSRF-TOKEN"
	// DefaultHeaderName is the name of the request header into which the
	// token is copied by default.
	DefaultHeaderName = "X-XSRF-TOKEN"
)

// A TokenExtractor retrieves the token to use with the next outgoing
// request. It is consulted once per eligible request, so the token may
// change between requests.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type TokenExtractor interface {
	// Token returns the current token, and false if there is none.
	Token() (string, bool)
}

// The TokenExtractorFunc type is an adapter to allow the use of
// ordinary functions as token extractors.
type TokenExtractorFunc func() (string, bool)

// Token calls f().
func (f TokenExtractorFunc) Token() (string, bool) {
	return f()
}

// A CookieSource supplies the raw cookie string, in the form of a
// Cookie request header ("a=1; b=2").
type CookieSource interface {
	Cookies() string
}

// The CookieSourceFunc type is an adapter to allow the use of ordinary
// functions as cookie sources.
type CookieSourceFunc func() string

// Cookies calls f().
func (f CookieSourceFunc) Cookies() string {
	return f()
}

// StaticSource is a CookieSource which always returns the same string.
type StaticSource string

// Cookies returns s.
func (s StaticSource) Cookies() string {
	return string(s)
}

// JarSource is a CookieSource which reads the cookies a jar holds for a
// URL, typically the origin the client talks to.
type JarSource struct {
	Jar http.CookieJar
	URL *url.URL
}

// Cookies returns the jar's cookies for s.URL joined into a single
// cookie string, or the empty string if the jar or the URL is nil.
func (s JarSource) Cookies() string {
	if s.Jar == nil || s.URL == nil {
		return ""
	}
	cookies := s.Jar.Cookies(s.URL)
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}

// A CookieExtractor is a TokenExtractor which reads the token from a
// named cookie. It remembers the last cookie string it parsed and only
// parses again when the string changes.
//
// CookieExtractor is safe for concurrent use by multiple goroutines.
type CookieExtractor struct {
	source     CookieSource
	cookieName string

	mu          sync.Mutex
	lastCookies string
	lastToken   string
	lastOK      bool
	parseCount  int
}

// NewCookieExtractor returns a CookieExtractor reading the cookie named
// cookieName from source. An empty cookieName means DefaultCookieName.
func NewCookieExtractor(source CookieSource, cookieName string) *CookieExtractor {
	if source == nil {
		panic("httpi/xsrf: nil cookie source")
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &CookieExtractor{
		source:     source,
		cookieName: cookieName,
	}
}

// Token returns the value of the cookie, and false if the cookie is
// absent.
func (e *CookieExtractor) Token() (string, bool) {
	cookies := e.source.Cookies()

	e.mu.Lock()
	defer e.mu.Unlock()
	if cookies != e.lastCookies {
		e.parseCount++
		e.lastToken, e.lastOK = ParseCookieValue(cookies, e.cookieName)
		e.lastCookies = cookies
	}
	return e.lastToken, e.lastOK
}

// ParseCount returns the number of times the cookie string has been
// parsed.
func (e *CookieExtractor) ParseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parseCount
}

// ParseCookieValue returns the value of the cookie named name within
// the cookie string cookies, percent-decoded, and whether it was found.
// A malformed escape leaves the value as it is.
func ParseCookieValue(cookies, name string) (string, bool) {
	name = url.PathEscape(name)
	for _, cookie := range strings.Split(cookies, ";") {
		cookieName, cookieValue := cookie, ""
		if i := strings.IndexByte(cookie, '='); i >= 0 {
			cookieName, cookieValue = cookie[:i], cookie[i+1:]
		}
		if strings.TrimSpace(cookieName) != name {
			continue
		}
		if v, err := url.PathUnescape(cookieValue); err == nil {
			return v, true
		}
		return cookieValue, true
	}
	return "", false
}
