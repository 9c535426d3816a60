// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines flexible policies for bounding how long a
// request may take, and an interceptor which applies a policy to every
// subscription of a request. A generic interface for timeout policies
// is provided, Policy, along with several useful policy generating
// functions and built-in policies.
package timeout
