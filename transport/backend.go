// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// ErrJSONP is the cause of the error a Backend returns for a request
// whose method is request.JSONP. Such requests must be routed to a
// JSONP backend by an interceptor earlier in the chain.
var ErrJSONP = errors.New("httpi/transport: JSONP request reached the HTTP backend; install jsonp.Interceptor")

const defaultAccept = "application/json, text/plain, */*"

// A Backend sends requests over HTTP. Its zero value is a valid
// configuration which uses http.DefaultClient.
//
// Backend is safe for concurrent use by multiple goroutines.
type Backend struct {
	// Doer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If Doer is nil, http.DefaultClient from the standard net/http
	// package is used.
	Doer HTTPDoer
	// Jar supplies and stores cookies for requests whose
	// WithCredentials flag is set. Requests without the flag never
	// touch Jar. If Jar is nil, no cookies are managed by the backend.
	//
	// Do not give Doer a jar of its own if Jar is set, or cookies will
	// be sent twice.
	Jar http.CookieJar
}

// Handle returns the lazy event stream for req. Nothing is sent until
// the stream is subscribed to, and every subscription sends req again.
func (b *Backend) Handle(req *request.Request) response.Stream {
	return func(ctx context.Context, emit func(response.Event)) error {
		return b.exchange(ctx, req, emit)
	}
}

func (b *Backend) doer() HTTPDoer {
	if b.Doer == nil {
		return http.DefaultClient
	}

	return b.Doer
}

type result struct {
	resp *http.Response
	err  error
}

func (b *Backend) exchange(ctx context.Context, req *request.Request, emit func(response.Event)) error {
	reqURL := req.URLWithParams()
	if req.Method() == request.JSONP {
		return response.NewErrorResponse(response.Init{URL: reqURL}, ErrJSONP)
	}

	body, err := req.SerializeBody()
	if err != nil {
		return response.NewErrorResponse(response.Init{URL: reqURL}, urlErrorWrap(req, err))
	}

	var uploaded int64
	uploadSignal := make(chan struct{}, 1)
	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
		if req.ReportProgress() {
			bodyReader = &countingReader{r: bodyReader, n: &uploaded, signal: uploadSignal}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), reqURL, bodyReader)
	if err != nil {
		return response.NewErrorResponse(response.Init{URL: reqURL}, urlErrorWrap(req, err))
	}
	httpReq.ContentLength = int64(len(body))
	b.setHeaders(req, httpReq)

	emit(response.Sent{})

	done := make(chan result, 1)
	go func() {
		resp, err := b.doer().Do(httpReq)
		done <- result{resp, err}
	}()

	var r result
	var lastUploaded int64
	total := int64(len(body))
	reportUpload := func() {
		n := atomic.LoadInt64(&uploaded)
		if n > lastUploaded {
			lastUploaded = n
			emit(response.UploadProgress{Loaded: n, Total: total})
		}
	}
WaitLoop:
	for {
		select {
		case <-uploadSignal:
			reportUpload()
		case r = <-done:
			break WaitLoop
		}
	}

	if r.err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return response.NewErrorResponse(response.Init{URL: reqURL}, urlErrorWrap(req, r.err))
	}
	defer func() {
		_ = r.resp.Body.Close()
	}()
	if req.ReportProgress() && len(body) > 0 {
		reportUpload()
	}

	if req.WithCredentials() && b.Jar != nil {
		b.Jar.SetCookies(httpReq.URL, r.resp.Cookies())
	}

	init := response.Init{
		Headers:    request.HeadersFromHTTP(r.resp.Header),
		Status:     r.resp.StatusCode,
		StatusText: statusText(r.resp),
		URL:        responseURL(r.resp, reqURL),
	}

	if req.ReportProgress() {
		emit(response.NewHeaderResponse(init))
	}

	data, err := readBody(ctx, req, r.resp, emit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return response.NewErrorResponse(response.Init{URL: init.URL}, urlErrorWrap(req, err))
	}

	ok := init.Status >= 200 && init.Status < 300
	decoded, err := decode(req.ResponseType(), r.resp.Header.Get("Content-Type"), data, ok)
	if err != nil {
		return response.NewErrorResponse(init, err)
	}
	if !ok {
		return response.NewErrorResponse(init, &response.BodyError{Body: decoded})
	}

	init.Body = decoded
	emit(response.NewResponse(init))
	return nil
}

func (b *Backend) setHeaders(req *request.Request, httpReq *http.Request) {
	httpReq.Header = req.Headers().HTTP()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", defaultAccept)
	}
	if httpReq.Header.Get("Content-Type") == "" {
		if ct := req.DetectContentType(); ct != "" {
			httpReq.Header.Set("Content-Type", ct)
		}
	}
	if req.WithCredentials() && b.Jar != nil {
		for _, c := range b.Jar.Cookies(httpReq.URL) {
			httpReq.AddCookie(c)
		}
	}
}

func readBody(ctx context.Context, req *request.Request, resp *http.Response, emit func(response.Event)) ([]byte, error) {
	if !req.ReportProgress() {
		return io.ReadAll(resp.Body)
	}

	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			ev := response.DownloadProgress{
				Loaded: int64(buf.Len()),
				Total:  resp.ContentLength,
			}
			if req.ResponseType() == request.Text {
				ev.PartialText = buf.String()
			}
			emit(ev)
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
}

func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "OK"
}

func responseURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	if u := resp.Header.Get("X-Request-URL"); u != "" {
		return u
	}
	return fallback
}

type countingReader struct {
	r      io.Reader
	n      *int64
	signal chan struct{}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		atomic.AddInt64(c.n, int64(n))
		select {
		case c.signal <- struct{}{}:
		default:
		}
	}
	return n, err
}

func urlErrorWrap(req *request.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(req.Method()),
		URL: req.URLWithParams(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
