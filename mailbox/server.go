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
	"errors"
	"net"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/postbox/internal/syncmap"
	"github.com/tochemey/postbox/log"
)

// ErrNoListener is returned by Serve when Listen has not been called.
var ErrNoListener = errors.New("mailbox: server is not listening")

// Server accepts inbound mailbox connections and wires one Consumer per
// connection, all sharing the server's registry and actor directory.
//
// Create it with NewServer, call Listen, then Serve. Serve blocks until
// Shutdown is called from another goroutine.
type Server struct {
	addr       string
	registry   *Registry
	directory  *Directory
	logger     log.Logger
	maxPayload int

	listener  net.Listener
	group     errgroup.Group
	consumers *syncmap.SyncMap[*Consumer, struct{}]
	shutdown  atomic.Bool
}

// NewServer creates a mailbox server bound to addr (host:port). Port 0 picks
// a free port, resolvable after Listen via ListenAddr.
func NewServer(addr string, registry *Registry, directory *Directory, opts ...Option) *Server {
	config := defaultOptions()
	for _, opt := range opts {
		opt(config)
	}
	return &Server{
		addr:       addr,
		registry:   registry,
		directory:  directory,
		logger:     config.logger,
		maxPayload: config.maxPayloadSize,
		consumers:  syncmap.New[*Consumer, struct{}](),
	}
}

// Listen creates the TCP listener. Call Serve afterwards to start accepting
// connections.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// ListenAddr returns the address the server is listening on, or nil before
// Listen.
func (s *Server) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Shutdown closes the listener, then waits
// for the per-connection consumers to finish. A failure on one connection
// never stops the server.
func (s *Server) Serve() error {
	if s.listener == nil {
		return ErrNoListener
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				break
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Shut the consumers down before surfacing the accept error.
			_ = s.Shutdown()
			return errors.Join(err, s.group.Wait())
		}
		s.serveConn(conn)
	}

	return s.group.Wait()
}

// Shutdown stops accepting connections and closes every active one, which
// rejects their pending replies. It is idempotent.
func (s *Server) Shutdown() error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.consumers.Range(func(consumer *Consumer, _ struct{}) {
		// the consumer's read loop reports its own teardown
		_ = consumer.Close()
	})
	return err
}

// ActiveConnections returns the number of connections currently served.
func (s *Server) ActiveConnections() int {
	return s.consumers.Len()
}

func (s *Server) serveConn(conn net.Conn) {
	consumer := NewConsumer(conn, s.registry, s.directory,
		WithLogger(s.logger),
		WithMaxPayloadSize(s.maxPayload))
	s.consumers.Set(consumer, struct{}{})

	s.group.Go(func() error {
		defer s.consumers.Delete(consumer)
		if err := consumer.Run(); err != nil {
			s.logger.Errorf("mailbox server %s: connection %s failed: %v", s.addr, conn.RemoteAddr(), err)
		}
		// Connection-level failures stay on this connection.
		return nil
	})
}
