// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package response contains the event model that flows back out of an
interceptor chain: the closed Event union, the ErrorResponse error, and
Stream, the lazy push-based sequence that carries them.

Within one request the events arrive in a fixed order:

	Sent → [UploadProgress | HeaderResponse | DownloadProgress | User]* → *Response

and the stream then completes. If the request fails, the stream ends
with an error (usually an *ErrorResponse) instead of the *Response.
*/
package response
