// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"
	"io"
)

// SerializeBody converts the request body into bytes suitable for
// sending over the wire. The conversion logic is:
//
// • nil produces a nil byte slice;
//
// • a []byte is returned as is, and a string is converted directly;
//
// • Params are encoded with Params.String;
//
// • an io.Reader is read to the end (and closed, if it is also an
// io.Closer);
//
// • any other value is encoded as JSON.
func (r *Request) SerializeBody() ([]byte, error) {
	switch x := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case Params:
		return []byte(x.String()), nil
	case io.Reader:
		b, err := io.ReadAll(x)
		if c, ok := x.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return json.Marshal(x)
	}
}

// DetectContentType returns the Content-Type a backend should send for
// the request body when the caller did not set one. The empty string
// means no Content-Type should be inferred, either because there is no
// body or because raw bytes carry no type information.
func (r *Request) DetectContentType() string {
	switch r.body.(type) {
	case nil, []byte, io.Reader:
		return ""
	case string:
		return "text/plain"
	case Params:
		return "application/x-www-form-urlencoded;charset=UTF-8"
	default:
		return "application/json"
	}
}
