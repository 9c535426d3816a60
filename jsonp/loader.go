// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/gogama/httpi/transport"
	"github.com/tidwall/gjson"
)

// An HTTPLoader loads JSONP scripts over HTTP and runs them by
// recognising the usual JSONP shape, a single call of a named function
// with one JSON argument:
//
//	httpi_jsonp_callback_0({"hello": "world"});
//
// The named callback is invoked through the Registry with the argument
// decoded as generic JSON. A script of any other shape loads without
// calling back. A non-2xx status, a transport failure or an argument
// which is not valid JSON fails the script.
type HTTPLoader struct {
	// Doer fetches the script. If nil, http.DefaultClient is used.
	Doer transport.HTTPDoer
}

var callPattern = regexp.MustCompile(`^\s*(?:/\*\*/\s*)?(?:typeof\s+[\w$.]+\s*===?\s*'function'\s*&&\s*)?([A-Za-z_$][\w$.]*)\s*\(([\s\S]*)\)\s*;?\s*$`)

// A ScriptError is the cause of a failed script load.
type ScriptError struct {
	URL    string
	Status int
	Err    error
}

func (e *ScriptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("httpi/jsonp: script %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("httpi/jsonp: script %s: status %d", e.URL, e.Status)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Inject starts fetching the script at url on a new goroutine.
func (l *HTTPLoader) Inject(ctx context.Context, url string, callbacks *Registry) Script {
	ctx, cancel := context.WithCancel(ctx)
	s := &httpScript{
		done:   make(chan error, 1),
		cancel: cancel,
	}
	go func() {
		s.done <- l.load(ctx, url, callbacks)
	}()
	return s
}

func (l *HTTPLoader) doer() transport.HTTPDoer {
	if l.Doer == nil {
		return http.DefaultClient
	}
	return l.Doer
}

func (l *HTTPLoader) load(ctx context.Context, url string, callbacks *Registry) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return &ScriptError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/javascript, text/javascript, */*")

	resp, err := l.doer().Do(req)
	if err != nil {
		return &ScriptError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ScriptError{URL: url, Status: resp.StatusCode}
	}

	src, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ScriptError{URL: url, Status: resp.StatusCode, Err: err}
	}

	m := callPattern.FindSubmatch(src)
	if m == nil {
		return nil
	}
	name := string(m[1])
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	var data interface{}
	if arg := strings.TrimSpace(string(m[2])); arg != "" {
		if !gjson.Valid(arg) {
			return &ScriptError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("invalid callback argument")}
		}
		data = gjson.Parse(arg).Value()
	}

	callbacks.Invoke(name, data)
	return nil
}

type httpScript struct {
	done   chan error
	cancel context.CancelFunc
	once   sync.Once
}

func (s *httpScript) Done() <-chan error {
	return s.done
}

func (s *httpScript) Remove() {
	s.once.Do(s.cancel)
}
