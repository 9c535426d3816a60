// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonp

import (
	"strconv"
	"sync"
)

// CallbackPrefix starts every callback name handed out by a Registry.
const CallbackPrefix = "httpi_jsonp_callback_"

// A Registry holds the callbacks of JSONP requests in flight, keyed by
// callback name. It plays the part of the global object a script calls
// back into.
//
// Callback names are unique for the lifetime of the Registry. Registry
// is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu        sync.Mutex
	next      uint64
	callbacks map[string]func(data interface{})
}

// DefaultRegistry is the Registry used by a Backend or HTTPLoader whose
// Registry field is nil. It is shared by the whole process.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an empty Registry whose first callback name ends
// in 0.
func NewRegistry() *Registry {
	return &Registry{
		callbacks: make(map[string]func(data interface{})),
	}
}

// NextName returns a callback name never returned before by r.
func (r *Registry) NextName() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := CallbackPrefix + strconv.FormatUint(r.next, 10)
	r.next++
	return name
}

// Register installs fn under name, replacing any callback already
// registered under that name.
func (r *Registry) Register(name string, fn func(data interface{})) {
	if fn == nil {
		panic("httpi/jsonp: nil callback")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[name] = fn
}

// Unregister removes the callback registered under name, if any.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.callbacks, name)
}

// Invoke removes the callback registered under name and calls it with
// data. A callback runs at most once. Invoke reports whether a callback
// was found.
func (r *Registry) Invoke(name string, data interface{}) bool {
	r.mu.Lock()
	fn, ok := r.callbacks[name]
	delete(r.callbacks, name)
	r.mu.Unlock()

	if ok {
		fn(data)
	}
	return ok
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks)
}
