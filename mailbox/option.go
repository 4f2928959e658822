// MIT License
//
// Copyright (c) 2026 Arsene Tochemey Gandote
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package mailbox

import (
	"time"

	"github.com/tochemey/postbox/eventloop"
	"github.com/tochemey/postbox/internal/frame"
	"github.com/tochemey/postbox/log"
)

type options struct {
	logger         log.Logger
	maxPayloadSize int
	dialTimeout    time.Duration
	keepAlive      time.Duration
	dialRetries    int
	loop           *eventloop.Loop
	dedicatedLoop  bool
}

func defaultOptions() *options {
	return &options{
		logger:         log.DefaultLogger,
		maxPayloadSize: frame.DefaultMaxPayloadSize,
		dialTimeout:    5 * time.Second,
		keepAlive:      15 * time.Second,
		dialRetries:    3,
	}
}

// Option configures a Client, Server or Consumer.
type Option func(*options)

// WithLogger sets the logger. The default is log.DefaultLogger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxPayloadSize overrides the maximum frame payload size accepted and
// produced on a connection. The default is 16 MiB.
func WithMaxPayloadSize(size int) Option {
	return func(o *options) { o.maxPayloadSize = size }
}

// WithDialTimeout sets the timeout for establishing the outbound connection.
// The default is 5 seconds.
func WithDialTimeout(timeout time.Duration) Option {
	return func(o *options) { o.dialTimeout = timeout }
}

// WithKeepAlive sets the TCP keep-alive interval for the outbound
// connection. The default is 15 seconds.
func WithKeepAlive(interval time.Duration) Option {
	return func(o *options) { o.keepAlive = interval }
}

// WithDialRetries sets how many times a failed dial is retried before the
// error is surfaced. The default is 3.
func WithDialRetries(retries int) Option {
	return func(o *options) { o.dialRetries = retries }
}

// WithLoop hands the client an externally owned event loop (typically the
// actor's own). The client will not stop it on Close.
func WithLoop(loop *eventloop.Loop) Option {
	return func(o *options) { o.loop = loop }
}

// WithDedicatedLoop makes the client bridge a CPU-bound actor: it creates a
// fresh event loop and runs it on its own OS thread, so the actor's work
// does not starve the scheduling of mailbox I/O. The loop is stopped through
// its control channel when the client closes.
func WithDedicatedLoop() Option {
	return func(o *options) { o.dedicatedLoop = true }
}
