// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport provides the default backend, which sends requests
with a net/http style HTTPDoer and reports the exchange as a stream of
response events.

Each subscription to the stream returned by Backend.Handle sends the
request once. The events are, in order:

	response.Sent                      always
	response.UploadProgress            only with ReportProgress and a body
	*response.HeaderResponse           only with ReportProgress
	response.DownloadProgress          only with ReportProgress
	*response.Response                 on success

A failed exchange ends the stream with a *response.ErrorResponse
instead of the final *response.Response. The body of a successful
response is decoded according to the request's response type; JSON is
parsed with github.com/tidwall/gjson.
*/
package transport
