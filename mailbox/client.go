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
	"context"
	"net"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/postbox/eventloop"
	"github.com/tochemey/postbox/future"
	"github.com/tochemey/postbox/log"
)

// Mailbox is the capability set a per-actor endpoint exposes. Client
// implements it for actors that own their outbound connection;
// MonitorMailbox implements it for supervised actors that reuse their
// supervisor's.
type Mailbox interface {
	// Send routes a command to target on behalf of sender. The returned
	// future is nil when the command does not require an acknowledgement.
	Send(ctx context.Context, command, sender, target string, args []any, kwargs map[string]any) (future.Future, error)

	// Address returns the remote mailbox address this endpoint talks to.
	Address() string

	// Loop returns the event loop serving this endpoint.
	Loop() *eventloop.Loop

	// Close releases the endpoint.
	Close() error
}

// Client owns one actor's outbound channel to one remote mailbox address.
// The connection is established lazily by the first Send and strictly reused
// afterwards: a client never holds more than one connection.
type Client struct {
	addr       string
	registry   *Registry
	directory  *Directory
	logger     log.Logger
	dialer     net.Dialer
	maxPayload int
	retries    int

	loop     *eventloop.Loop
	ownsLoop bool

	mu       sync.Mutex
	consumer *Consumer
	closed   atomic.Bool
}

// Verify Client satisfies the Mailbox interface.
var _ Mailbox = (*Client)(nil)

// NewClient creates a mailbox client for the given remote address. The
// registry declares which commands require acknowledgements; the directory
// resolves inbound commands the remote side may send back over the same
// connection.
//
// By default the client creates its own event loop and drives it on an
// ordinary goroutine. Pass WithLoop to reuse the actor's existing loop, or
// WithDedicatedLoop to bridge a CPU-bound actor onto its own OS thread.
func NewClient(addr string, registry *Registry, directory *Directory, opts ...Option) *Client {
	config := defaultOptions()
	for _, opt := range opts {
		opt(config)
	}

	client := &Client{
		addr:       addr,
		registry:   registry,
		directory:  directory,
		logger:     config.logger,
		maxPayload: config.maxPayloadSize,
		retries:    config.dialRetries,
		dialer: net.Dialer{
			Timeout:   config.dialTimeout,
			KeepAlive: config.keepAlive,
		},
	}

	switch {
	case config.loop != nil:
		client.loop = config.loop
	case config.dedicatedLoop:
		// CPU-bound actor: a fresh loop on its own OS thread so the actor's
		// work does not starve mailbox I/O scheduling.
		client.loop = eventloop.New()
		client.ownsLoop = true
		client.loop.RunOnThread()
	default:
		client.loop = eventloop.New()
		client.ownsLoop = true
		go client.loop.Run()
	}

	return client
}

// Send builds a request for command and writes it on the client's single
// connection, dialing it first if this is the first call. When the command
// requires an acknowledgement the returned future resolves once the remote
// callback arrives; otherwise the future is nil and the call returns
// immediately.
func (c *Client) Send(ctx context.Context, command, sender, target string, args []any, kwargs map[string]any) (future.Future, error) {
	consumer, err := c.connection(ctx)
	if err != nil {
		return nil, err
	}
	return consumer.Send(command, sender, target, args, kwargs)
}

// Address returns the remote mailbox address.
func (c *Client) Address() string {
	return c.addr
}

// Loop returns the event loop serving this client.
func (c *Client) Loop() *eventloop.Loop {
	return c.loop
}

// Close tears down the connection, rejects the futures still pending on it
// and, when the client owns its loop, stops the loop through its control
// channel. Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	consumer := c.consumer
	c.consumer = nil
	c.mu.Unlock()

	var errs error
	if consumer != nil {
		errs = multierr.Append(errs, consumer.Close())
		<-consumer.Done()
	}
	if c.ownsLoop {
		// The loop may run on a different OS thread; Stop is a control
		// message, safe from here.
		c.loop.Stop()
	}
	return errs
}

// connection returns the client's consumer, dialing the single connection on
// first use.
func (c *Client) connection(ctx context.Context) (*Consumer, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumer != nil {
		return c.consumer, nil
	}

	var conn net.Conn
	retrier := retry.NewRetrier(c.retries, 100*time.Millisecond, time.Second)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var derr error
		conn, derr = c.dialer.DialContext(ctx, "tcp", c.addr)
		return derr
	})
	if err != nil {
		return nil, err
	}

	consumer := NewConsumer(conn, c.registry, c.directory,
		WithLogger(c.logger),
		WithMaxPayloadSize(c.maxPayload))
	go func() {
		if err := consumer.Run(); err != nil {
			c.logger.Errorf("mailbox client %s: connection failed: %v", c.addr, err)
		}
		c.mu.Lock()
		if c.consumer == consumer {
			c.consumer = nil
		}
		c.mu.Unlock()
	}()

	c.consumer = consumer
	return consumer, nil
}
