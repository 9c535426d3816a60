// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

// A Type identifies the kind of an Event.
type Type int

const (
	// SentType identifies the Sent event, emitted when the request has
	// been handed to the transport.
	SentType Type = iota
	// UploadProgressType identifies an UploadProgress event.
	UploadProgressType
	// HeaderResponseType identifies a *HeaderResponse event, emitted
	// once the status and headers are known, only when progress
	// reporting was requested.
	HeaderResponseType
	// DownloadProgressType identifies a DownloadProgress event.
	DownloadProgressType
	// ResponseType identifies the terminal *Response event.
	ResponseType
	// UserType identifies a User event, which interceptors and backends
	// may emit for their own purposes.
	UserType
	// typeSentinel provides the total number of event types typed as a
	// Type.
	typeSentinel

	// numTypes provides the total number of event types as an int.
	numTypes = int(typeSentinel)
)

var typeNames = []string{
	"Sent",
	"UploadProgress",
	"HeaderResponse",
	"DownloadProgress",
	"Response",
	"User",
}

// Types returns a slice containing all event types, in the order in
// which events of those types would typically occur.
func Types() []Type {
	return []Type{
		SentType,
		UploadProgressType,
		HeaderResponseType,
		DownloadProgressType,
		ResponseType,
		UserType,
	}
}

// Name returns the name of the event type.
func (t Type) Name() string {
	return typeNames[int(t)]
}

// String returns the name of the event type.
func (t Type) String() string {
	return t.Name()
}

// An Event is one item of the event stream produced while a request is
// in flight.
//
// The set of events is closed: every Event is exactly one of Sent,
// UploadProgress, *HeaderResponse, DownloadProgress, *Response or User.
// Code which branches on the kind of event should use a type switch:
//
//	switch ev := ev.(type) {
//	case *response.Response:
//		...
//	case response.DownloadProgress:
//		...
//	}
type Event interface {
	// Type returns the kind of the event.
	Type() Type

	event()
}

// Sent is emitted when the request has been dispatched to the transport.
// It carries no payload.
type Sent struct{}

// Type returns SentType.
func (Sent) Type() Type { return SentType }
func (Sent) event()     {}

// UploadProgress reports how much of the request body has been sent.
type UploadProgress struct {
	// Loaded is the number of bytes sent so far. It never decreases
	// within one request's event stream.
	Loaded int64
	// Total is the total number of bytes to send, or -1 if unknown.
	Total int64
}

// Type returns UploadProgressType.
func (UploadProgress) Type() Type { return UploadProgressType }
func (UploadProgress) event()     {}

// DownloadProgress reports how much of the response body has been
// received.
type DownloadProgress struct {
	// Loaded is the number of bytes received so far. It never decreases
	// within one request's event stream.
	Loaded int64
	// Total is the expected body size, or -1 if unknown.
	Total int64
	// PartialText is the body received so far. It is only populated
	// when the response type is text.
	PartialText string
}

// Type returns DownloadProgressType.
func (DownloadProgress) Type() Type { return DownloadProgressType }
func (DownloadProgress) event()     {}

// User is an opaque event defined by an interceptor or a backend. All
// interceptors forward User events they do not understand.
type User struct {
	Value interface{}
}

// Type returns UserType.
func (User) Type() Type { return UserType }
func (User) event()     {}
