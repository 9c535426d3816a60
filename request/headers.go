// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"sort"
	"strings"
)

// Headers is an immutable, ordered, multi-value collection of HTTP
// header fields. Header names are case-insensitive, but the spelling
// used when a name is first added is kept for output.
//
// The zero value is an empty collection ready to use. Every method
// which changes the collection returns a new value and leaves the
// receiver untouched, so a Headers value may be shared freely between
// requests and goroutines.
type Headers struct {
	names  []string
	values map[string][]string
}

// NewHeaders returns a Headers collection containing the given fields.
// Because Go maps are unordered, the fields are added in lexical order
// of their names.
func NewHeaders(m map[string][]string) Headers {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var h Headers
	for _, k := range keys {
		h = h.Append(k, m[k]...)
	}
	return h
}

// HeadersFromHTTP converts a net/http header map into Headers.
func HeadersFromHTTP(hdr http.Header) Headers {
	return NewHeaders(hdr)
}

// Has reports whether a header field named name is present.
func (h Headers) Has(name string) bool {
	_, ok := h.values[strings.ToLower(name)]
	return ok
}

// Get returns the first value of the named header field, or the empty
// string if the field is not present.
func (h Headers) Get(name string) string {
	v := h.values[strings.ToLower(name)]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values of the named header field. The returned
// slice must not be modified.
func (h Headers) Values(name string) []string {
	return h.values[strings.ToLower(name)]
}

// Keys returns the header field names in insertion order.
func (h Headers) Keys() []string {
	keys := make([]string, len(h.names))
	copy(keys, h.names)
	return keys
}

// Len returns the number of distinct header field names.
func (h Headers) Len() int {
	return len(h.names)
}

// Set returns a copy of h in which the named field has exactly the
// given values, replacing any previous values.
func (h Headers) Set(name string, values ...string) Headers {
	h2 := h.copy()
	lc := strings.ToLower(name)
	if _, ok := h2.values[lc]; !ok {
		h2.names = append(h2.names, name)
	}
	h2.values[lc] = append([]string(nil), values...)
	return h2
}

// Append returns a copy of h with values added after any existing
// values of the named field.
func (h Headers) Append(name string, values ...string) Headers {
	h2 := h.copy()
	lc := strings.ToLower(name)
	existing, ok := h2.values[lc]
	if !ok {
		h2.names = append(h2.names, name)
	}
	h2.values[lc] = append(append([]string(nil), existing...), values...)
	return h2
}

// Delete returns a copy of h without the named field. If values are
// given, only those values are removed, and the field itself is only
// removed once no values remain.
func (h Headers) Delete(name string, values ...string) Headers {
	lc := strings.ToLower(name)
	existing, ok := h.values[lc]
	if !ok {
		return h
	}
	h2 := h.copy()
	if len(values) > 0 {
		remaining := make([]string, 0, len(existing))
		for _, v := range existing {
			if !contains(values, v) {
				remaining = append(remaining, v)
			}
		}
		if len(remaining) > 0 {
			h2.values[lc] = remaining
			return h2
		}
	}
	delete(h2.values, lc)
	for i, n := range h2.names {
		if strings.ToLower(n) == lc {
			h2.names = append(h2.names[:i], h2.names[i+1:]...)
			break
		}
	}
	return h2
}

// HTTP converts h into a net/http header map. The returned map is a
// fresh copy which the caller may modify.
func (h Headers) HTTP() http.Header {
	hdr := make(http.Header, len(h.names))
	for _, n := range h.names {
		for _, v := range h.values[strings.ToLower(n)] {
			hdr.Add(n, v)
		}
	}
	return hdr
}

// String returns the header fields in wire format, one "Name: value"
// line per value.
func (h Headers) String() string {
	var b strings.Builder
	for _, n := range h.names {
		for _, v := range h.values[strings.ToLower(n)] {
			b.WriteString(n)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

func (h Headers) copy() Headers {
	h2 := Headers{
		names:  make([]string, len(h.names), len(h.names)+1),
		values: make(map[string][]string, len(h.values)+1),
	}
	copy(h2.names, h.names)
	for k, v := range h.values {
		h2.values[k] = v
	}
	return h2
}

func contains(s []string, x string) bool {
	for _, y := range s {
		if y == x {
			return true
		}
	}
	return false
}
