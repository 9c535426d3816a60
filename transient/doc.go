// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies the errors that end an event stream,
// for example to decide whether re-subscribing is worthwhile or to
// bucket failures in metrics and logs.
package transient
