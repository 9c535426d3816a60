// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Params is an immutable, ordered, multi-value collection of URL query
// parameters. Unlike Headers, parameter names are case-sensitive.
//
// The zero value is an empty collection ready to use. Methods that
// change the collection return a new value.
type Params struct {
	keys   []string
	values map[string][]string
}

// NewParams returns a Params collection containing the given
// parameters, added in lexical order of their names.
func NewParams(m map[string][]string) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var p Params
	for _, k := range keys {
		p = p.Append(k, m[k]...)
	}
	return p
}

// ParseParams parses a URL-encoded query string, such as "a=1&b=2&a=3",
// preserving the order in which parameter names first appear. A leading
// '?' is ignored.
func ParseParams(query string) (Params, error) {
	var p Params
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return p, nil
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		k, v := pair, ""
		if i := strings.IndexByte(pair, '='); i >= 0 {
			k, v = pair[:i], pair[i+1:]
		}
		dk, err := url.QueryUnescape(k)
		if err != nil {
			return Params{}, fmt.Errorf("httpi/request: bad query key %q: %w", k, err)
		}
		dv, err := url.QueryUnescape(v)
		if err != nil {
			return Params{}, fmt.Errorf("httpi/request: bad query value %q: %w", v, err)
		}
		p = p.Append(dk, dv)
	}
	return p, nil
}

// Has reports whether a parameter named name is present.
func (p Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Get returns the first value of the named parameter, or the empty
// string if absent.
func (p Params) Get(name string) string {
	v := p.values[name]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Values returns all values of the named parameter. The returned slice
// must not be modified.
func (p Params) Values(name string) []string {
	return p.values[name]
}

// Keys returns the parameter names in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of distinct parameter names.
func (p Params) Len() int {
	return len(p.keys)
}

// Set returns a copy of p in which the named parameter has exactly the
// given values.
func (p Params) Set(name string, values ...string) Params {
	p2 := p.copy()
	if _, ok := p2.values[name]; !ok {
		p2.keys = append(p2.keys, name)
	}
	p2.values[name] = append([]string(nil), values...)
	return p2
}

// Append returns a copy of p with values added after any existing
// values of the named parameter.
func (p Params) Append(name string, values ...string) Params {
	p2 := p.copy()
	existing, ok := p2.values[name]
	if !ok {
		p2.keys = append(p2.keys, name)
	}
	p2.values[name] = append(append([]string(nil), existing...), values...)
	return p2
}

// Merge returns a copy of p with every parameter of other appended.
// Parameters already present in p keep their values; other's values
// are added after them.
func (p Params) Merge(other Params) Params {
	p2 := p
	for _, k := range other.keys {
		p2 = p2.Append(k, other.values[k]...)
	}
	return p2
}

// Delete returns a copy of p without the named parameter, or without
// only the given values of it if any values are given.
func (p Params) Delete(name string, values ...string) Params {
	existing, ok := p.values[name]
	if !ok {
		return p
	}
	p2 := p.copy()
	if len(values) > 0 {
		remaining := make([]string, 0, len(existing))
		for _, v := range existing {
			if !contains(values, v) {
				remaining = append(remaining, v)
			}
		}
		if len(remaining) > 0 {
			p2.values[name] = remaining
			return p2
		}
	}
	delete(p2.values, name)
	for i, k := range p2.keys {
		if k == name {
			p2.keys = append(p2.keys[:i], p2.keys[i+1:]...)
			break
		}
	}
	return p2
}

// String serializes the parameters as "key=value&key2=value2", with
// every key and value URI-component encoded. A parameter with several
// values produces one key=value pair per value.
func (p Params) String() string {
	var b strings.Builder
	for _, k := range p.keys {
		ek := encodeURIComponent(k)
		for _, v := range p.values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(ek)
			b.WriteByte('=')
			b.WriteString(encodeURIComponent(v))
		}
	}
	return b.String()
}

func (p Params) copy() Params {
	p2 := Params{
		keys:   make([]string, len(p.keys), len(p.keys)+1),
		values: make(map[string][]string, len(p.values)+1),
	}
	copy(p2.keys, p.keys)
	for k, v := range p.values {
		p2.values[k] = v
	}
	return p2
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent escapes everything except the unreserved marks
// A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
