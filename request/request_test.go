// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		method  string
		url     string
		opts    []Option
		asserts func(*testing.T, *Request, error)
	}{
		{
			name:   "empty method means GET",
			method: "",
			url:    "https://foo.com",
			asserts: func(t *testing.T, r *Request, err error) {
				assert.NoError(t, err)
				require.NotNil(t, r)
				assert.Equal(t, "GET", r.Method())
				assert.Equal(t, "https://foo.com", r.URL())
				assert.Equal(t, "https://foo.com", r.URLWithParams())
				assert.Nil(t, r.Body())
				assert.Equal(t, JSON, r.ResponseType())
				assert.False(t, r.ReportProgress())
				assert.False(t, r.WithCredentials())
				assert.Equal(t, 0, r.Headers().Len())
				assert.Equal(t, 0, r.Params().Len())
			},
		},
		{
			name:   "method is upper-cased",
			method: "patch",
			url:    "/a",
			asserts: func(t *testing.T, r *Request, err error) {
				assert.NoError(t, err)
				require.NotNil(t, r)
				assert.Equal(t, "PATCH", r.Method())
			},
		},
		{
			name:   "custom method token",
			method: "JSONP",
			url:    "/cb",
			asserts: func(t *testing.T, r *Request, err error) {
				assert.NoError(t, err)
				require.NotNil(t, r)
				assert.Equal(t, JSONP, r.Method())
			},
		},
		{
			name:   "invalid method",
			method: "GET POST",
			url:    "/",
			asserts: func(t *testing.T, r *Request, err error) {
				assert.Nil(t, r)
				assert.EqualError(t, err, `httpi/request: invalid method "GET POST"`)
			},
		},
		{
			name:   "invalid response type",
			method: "GET",
			url:    "/",
			opts:   []Option{WithResponseType("xml")},
			asserts: func(t *testing.T, r *Request, err error) {
				assert.Nil(t, r)
				assert.EqualError(t, err, `httpi/request: invalid response type "xml"`)
			},
		},
		{
			name:   "body-less method keeps nil body without option",
			method: "DELETE",
			url:    "/x",
			opts:   []Option{WithCredentials(true)},
			asserts: func(t *testing.T, r *Request, err error) {
				assert.NoError(t, err)
				require.NotNil(t, r)
				assert.Nil(t, r.Body())
				assert.True(t, r.WithCredentials())
			},
		},
		{
			name:   "body-less method with explicit body",
			method: "GET",
			url:    "/x",
			opts:   []Option{WithBody("q")},
			asserts: func(t *testing.T, r *Request, err error) {
				assert.NoError(t, err)
				require.NotNil(t, r)
				assert.Equal(t, "q", r.Body())
			},
		},
		{
			name:   "all options",
			method: "POST",
			url:    "/y",
			opts: []Option{
				WithBody(map[string]int{"x": 1}),
				WithHeaders(Headers{}.Set("Accept", "text/plain")),
				WithParams(Params{}.Set("a", "1")),
				WithResponseType(Text),
				WithReportProgress(true),
				WithCredentials(true),
			},
			asserts: func(t *testing.T, r *Request, err error) {
				assert.NoError(t, err)
				require.NotNil(t, r)
				assert.Equal(t, map[string]int{"x": 1}, r.Body())
				assert.Equal(t, "text/plain", r.Headers().Get("accept"))
				assert.Equal(t, "/y?a=1", r.URLWithParams())
				assert.Equal(t, Text, r.ResponseType())
				assert.True(t, r.ReportProgress())
				assert.True(t, r.WithCredentials())
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r, err := New(testCase.method, testCase.url, testCase.opts...)
			testCase.asserts(t, r, err)
		})
	}
}

func TestRequest_URLWithParams(t *testing.T) {
	a1 := Params{}.Set("a", "1")
	testCases := []struct {
		name     string
		url      string
		params   Params
		expected string
	}{
		{"no params", "http://x/y", Params{}, "http://x/y"},
		{"no query", "http://x/y", a1, "http://x/y?a=1"},
		{"existing query", "http://x/y?b=2", a1, "http://x/y?b=2&a=1"},
		{"trailing question mark", "http://x/y?", a1, "http://x/y?a=1"},
		{"encoded", "/s", Params{}.Set("q", "a b&c=d"), "/s?q=a%20b%26c%3Dd"},
		{"multi value", "/m", Params{}.Append("k", "1", "2"), "/m?k=1&k=2"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r, err := New("GET", testCase.url, WithParams(testCase.params))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, r.URLWithParams())
			assert.Equal(t, testCase.url, r.URL())
		})
	}
}

func TestRequest_Clone(t *testing.T) {
	r, err := New("POST", "/c",
		WithBody(map[string]int{"x": 1}),
		SetHeader("X-A", "a"),
		SetParam("p", "1"),
		WithResponseType(Blob),
		WithReportProgress(true))
	require.NoError(t, err)

	t.Run("no options", func(t *testing.T) {
		r2 := r.Clone()
		assert.NotSame(t, r, r2)
		assert.Equal(t, r, r2)
	})
	t.Run("clear body", func(t *testing.T) {
		r2 := r.Clone(WithBody(nil))
		assert.Nil(t, r2.Body())
		assert.Equal(t, map[string]int{"x": 1}, r.Body())
		assert.Equal(t, r.Headers(), r2.Headers())
		assert.Equal(t, r.URLWithParams(), r2.URLWithParams())
	})
	t.Run("set header and param", func(t *testing.T) {
		r2 := r.Clone(SetHeader("X-B", "b"), SetParam("q", "2"))
		assert.Equal(t, "a", r2.Headers().Get("X-A"))
		assert.Equal(t, "b", r2.Headers().Get("x-b"))
		assert.False(t, r.Headers().Has("X-B"))
		assert.Equal(t, "/c?p=1&q=2", r2.URLWithParams())
		assert.Equal(t, "/c?p=1", r.URLWithParams())
	})
	t.Run("method and url", func(t *testing.T) {
		r2 := r.Clone(WithMethod("put"), WithURL("/d?z=0"))
		assert.Equal(t, "PUT", r2.Method())
		assert.Equal(t, "/d?z=0&p=1", r2.URLWithParams())
		assert.Equal(t, Blob, r2.ResponseType())
		assert.True(t, r2.ReportProgress())
	})
	t.Run("false overrides true", func(t *testing.T) {
		r2 := r.Clone(WithReportProgress(false))
		assert.False(t, r2.ReportProgress())
	})
	t.Run("invalid method panics", func(t *testing.T) {
		assert.Panics(t, func() { r.Clone(WithMethod("a b")) })
	})
}

func TestMightHaveBody(t *testing.T) {
	for _, m := range []string{"GET", "head", "DELETE", "OPTIONS", "JSONP"} {
		assert.False(t, MightHaveBody(m), m)
	}
	for _, m := range []string{"POST", "PUT", "patch", "PROPFIND"} {
		assert.True(t, MightHaveBody(m), m)
	}
}
