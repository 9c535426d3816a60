// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"fmt"

	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/tidwall/gjson"
)

// xssiPrefix is stripped from JSON bodies before parsing. Servers send
// it to defeat cross-site script inclusion of JSON arrays.
var xssiPrefix = []byte(")]}',\n")

// A ParseError is the cause of the error returned when a successful
// response has a body which is not valid JSON.
type ParseError struct {
	// Text is the raw body.
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("httpi/transport: invalid JSON body (%d bytes)", len(e.Text))
}

// decode converts a raw body into the Go value promised by rt. A body
// which fails to parse as JSON is an error only when ok is true; for
// an unsuccessful response the raw text is kept instead.
func decode(rt request.ResponseType, contentType string, data []byte, ok bool) (interface{}, error) {
	switch rt {
	case request.Text:
		return string(data), nil
	case request.ArrayBuffer:
		return data, nil
	case request.Blob:
		return &response.Blob{ContentType: contentType, Data: data}, nil
	default:
		return decodeJSON(data, ok)
	}
}

func decodeJSON(data []byte, ok bool) (interface{}, error) {
	text := bytes.TrimPrefix(data, xssiPrefix)
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(text) {
		if ok {
			return nil, &ParseError{Text: string(data)}
		}
		return string(data), nil
	}
	return gjson.ParseBytes(text).Value(), nil
}
