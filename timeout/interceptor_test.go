// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogama/httpi"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptor(t *testing.T) {
	slow := httpi.HandlerFunc(func(req *request.Request) response.Stream {
		return func(ctx context.Context, emit func(response.Event)) error {
			emit(response.Sent{})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Hour):
				emit(response.NewResponse(response.Init{}))
				return nil
			}
		}
	})
	fast := httpi.HandlerFunc(func(req *request.Request) response.Stream {
		return response.Of(response.Sent{}, response.NewResponse(response.Init{Body: "ok"}))
	})

	t.Run("times out", func(t *testing.T) {
		h := httpi.Chain(slow, Interceptor(Fixed(10*time.Millisecond)))
		evs, err := h.Handle(newRequest(t, "GET")).Collect(context.Background())
		assert.Equal(t, []response.Event{response.Sent{}}, evs)
		var er *response.ErrorResponse
		require.True(t, errors.As(err, &er))
		assert.Equal(t, 0, er.Status)
		assert.Equal(t, "/x", er.URL)
		assert.True(t, er.Timeout())
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
	t.Run("fresh deadline per subscription", func(t *testing.T) {
		s := httpi.Chain(fast, Interceptor(Fixed(50*time.Millisecond))).Handle(newRequest(t, "GET"))
		for i := 0; i < 3; i++ {
			time.Sleep(20 * time.Millisecond)
			_, err := s.Collect(context.Background())
			assert.NoError(t, err)
		}
	})
	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		h := httpi.Chain(slow, Interceptor(Fixed(time.Hour)))
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := h.Handle(newRequest(t, "GET")).Subscribe(ctx, nil)
		assert.Equal(t, context.Canceled, err)
	})
	t.Run("deadline after response keeps success", func(t *testing.T) {
		resp := response.NewResponse(response.Init{Status: 200})
		lagging := httpi.HandlerFunc(func(req *request.Request) response.Stream {
			return func(ctx context.Context, emit func(response.Event)) error {
				emit(response.Sent{})
				emit(resp)
				time.Sleep(30 * time.Millisecond)
				return nil
			}
		})
		h := httpi.Chain(lagging, Interceptor(Fixed(10*time.Millisecond)))
		evs, err := h.Handle(newRequest(t, "GET")).Collect(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []response.Event{response.Sent{}, resp}, evs)
	})
	t.Run("infinite passes through", func(t *testing.T) {
		req := newRequest(t, "GET")
		s := Interceptor(Infinite).Intercept(req, fast)
		body, err := s.Filter(response.IsResponse).Collect(context.Background())
		assert.NoError(t, err)
		assert.Len(t, body, 1)
	})
	t.Run("nil policy", func(t *testing.T) {
		assert.NotPanics(t, func() {
			_ = Interceptor(nil).Intercept(newRequest(t, "GET"), fast)
		})
	})
}
