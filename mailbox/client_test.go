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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/postbox/eventloop"
	"github.com/tochemey/postbox/log"
)

// startEchoServer spins up a mailbox server with an echo command and a single
// registered actor, and returns its address plus the shared registry.
func startEchoServer(t *testing.T) (string, *Registry) {
	t.Helper()

	registry := NewRegistry()
	require.NoError(t, registry.Register(&Command{
		Name: "echo",
		Ack:  true,
		Handler: func(_ *CommandRequest, args []any, _ map[string]any) (any, error) {
			return args[0], nil
		},
	}))
	directory := NewDirectory()
	directory.Register(&testActor{id: "worker-1"})

	ports := dynaport.Get(1)
	addr := fmt.Sprintf("127.0.0.1:%d", ports[0])

	server := NewServer(addr, registry, directory, WithLogger(log.DiscardLogger))
	require.NoError(t, server.Listen())

	served := make(chan error, 1)
	go func() { served <- server.Serve() }()
	t.Cleanup(func() {
		require.NoError(t, server.Shutdown())
		require.NoError(t, <-served)
	})

	return server.ListenAddr().String(), registry
}

func TestClientRequestReply(t *testing.T) {
	addr, registry := startEchoServer(t)

	client := NewClient(addr, registry, NewDirectory(), WithLogger(log.DiscardLogger))
	t.Cleanup(func() { require.NoError(t, client.Close()) })
	require.Equal(t, addr, client.Address())

	fut, err := client.Send(awaitCtx(t), "echo", "client-1", "worker-1", []any{"ping"}, nil)
	require.NoError(t, err)

	value, err := fut.Await(awaitCtx(t))
	require.NoError(t, err)
	require.Equal(t, "ping", value)
}

func TestClientReusesItsSingleConnection(t *testing.T) {
	addr, registry := startEchoServer(t)

	client := NewClient(addr, registry, NewDirectory(), WithLogger(log.DiscardLogger))
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	for i := 0; i < 5; i++ {
		fut, err := client.Send(awaitCtx(t), "echo", "client-1", "worker-1", []any{fmt.Sprintf("ping-%d", i)}, nil)
		require.NoError(t, err)
		value, err := fut.Await(awaitCtx(t))
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("ping-%d", i), value)
	}
}

func TestClientClose(t *testing.T) {
	addr, registry := startEchoServer(t)

	client := NewClient(addr, registry, NewDirectory(), WithLogger(log.DiscardLogger))
	fut, err := client.Send(awaitCtx(t), "echo", "client-1", "worker-1", []any{"ping"}, nil)
	require.NoError(t, err)
	_, err = fut.Await(awaitCtx(t))
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err = client.Send(awaitCtx(t), "echo", "client-1", "worker-1", []any{"ping"}, nil)
	require.ErrorIs(t, err, ErrConnectionClosed)
	require.True(t, client.Loop().Stopped())
}

func TestClientWithExternalLoop(t *testing.T) {
	addr, registry := startEchoServer(t)

	loop := eventloop.New()
	go loop.Run()
	t.Cleanup(func() {
		loop.Stop()
		<-loop.Done()
	})

	client := NewClient(addr, registry, NewDirectory(),
		WithLogger(log.DiscardLogger),
		WithLoop(loop))
	require.Same(t, loop, client.Loop())

	// closing the client must not stop a loop it does not own
	require.NoError(t, client.Close())
	require.False(t, loop.Stopped())
}

func TestClientWithDedicatedLoop(t *testing.T) {
	addr, registry := startEchoServer(t)

	client := NewClient(addr, registry, NewDirectory(),
		WithLogger(log.DiscardLogger),
		WithDedicatedLoop())

	fut, err := client.Send(awaitCtx(t), "echo", "client-1", "worker-1", []any{"ping"}, nil)
	require.NoError(t, err)
	value, err := fut.Await(awaitCtx(t))
	require.NoError(t, err)
	require.Equal(t, "ping", value)

	require.NoError(t, client.Close())
	require.True(t, client.Loop().Stopped())
	select {
	case <-client.Loop().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("dedicated loop did not stop")
	}
}

func TestClientDialFailure(t *testing.T) {
	ports := dynaport.Get(1)
	addr := fmt.Sprintf("127.0.0.1:%d", ports[0])

	registry := NewRegistry()
	require.NoError(t, registry.Register(&Command{Name: "echo", Ack: true, Handler: noopHandler}))

	client := NewClient(addr, registry, NewDirectory(),
		WithLogger(log.DiscardLogger),
		WithDialRetries(1),
		WithDialTimeout(200*time.Millisecond))
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.Send(ctx, "echo", "client-1", "worker-1", nil, nil)
	require.Error(t, err)
}
