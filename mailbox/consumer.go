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
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/postbox/future"
	"github.com/tochemey/postbox/internal/codec"
	"github.com/tochemey/postbox/internal/frame"
	"github.com/tochemey/postbox/log"
)

// readBufferSize is the chunk size for socket reads.
const readBufferSize = 32 * 1024

// FailureKindSerialization marks a payload that could not be decoded.
const FailureKindSerialization = "serialization_error"

// Consumer is the protocol state machine bound to one established
// connection. It decodes inbound frames, dispatches commands in strict
// arrival order, tracks pending replies and encodes responses.
//
// Messages are dispatched on the connection's read goroutine: dispatch of
// message N+1 begins only after message N's synchronous dispatch step
// returns. A handler that returns a future defers its reply to that future's
// completion, so replies may complete out of order relative to arrival.
//
// A failure while handling one message never terminates the read loop; only
// framing errors and transport failures do, and those reject every future
// still pending on this connection.
type Consumer struct {
	conn       net.Conn
	codec      *frame.Codec
	serializer *codec.Codec
	pending    *Pending
	registry   *Registry
	directory  *Directory
	logger     log.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
}

// NewConsumer binds a consumer to an established connection. The registry
// and directory are shared across connections; the pending table and frame
// codec are exclusively this connection's.
func NewConsumer(conn net.Conn, registry *Registry, directory *Directory, opts ...Option) *Consumer {
	config := defaultOptions()
	for _, opt := range opts {
		opt(config)
	}
	return &Consumer{
		conn:       conn,
		codec:      frame.NewCodec(frame.WithMaxPayloadSize(config.maxPayloadSize)),
		serializer: codec.New(),
		pending:    NewPending(),
		registry:   registry,
		directory:  directory,
		logger:     config.logger,
		done:       make(chan struct{}),
	}
}

// Run drives the read loop until the connection closes or a fatal framing
// error occurs. On return every pending future has been rejected and the
// connection is closed. Run must be called at most once.
func (c *Consumer) Run() error {
	defer c.teardown()

	buffer := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buffer)
		if n > 0 {
			if ferr := c.feed(buffer[:n]); ferr != nil {
				c.logger.Errorf("mailbox %s: fatal framing error: %v", c.remoteAddr(), ferr)
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || c.closed.Load() {
				return nil
			}
			return err
		}
	}
}

// Send builds a request message for command and writes it out. When the
// command's declared contract requires a reply, a fresh correlation id is
// minted, the returned future is registered in this connection's pending
// table and resolves once the matching callback arrives. For fire-and-forget
// commands the returned future is nil and the call returns immediately.
func (c *Consumer) Send(command, sender, target string, args []any, kwargs map[string]any) (future.Future, error) {
	declared, ok := c.registry.Resolve(command)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, command)
	}

	message := &Message{
		Command: command,
		Sender:  sender,
		Target:  target,
		Args:    args,
		Kwargs:  kwargs,
	}

	var result future.Future
	if declared.Ack {
		completable := future.NewCompletable()
		// Re-mint on the off chance a short token collides with one still
		// pending: an ack id is never reused while in flight.
		for {
			message.AckID = newAckID()
			if c.pending.Register(message.AckID, completable) {
				break
			}
		}
		result = completable.Future()
	}

	if err := c.write(message); err != nil {
		if message.AckID != "" {
			if completable, ok := c.pending.Pop(message.AckID); ok {
				completable.Failure(err)
			}
		}
		return nil, err
	}
	return result, nil
}

// Close terminates the connection. Pending futures are rejected by the read
// loop's teardown.
func (c *Consumer) Close() error {
	c.shutdown()
	return nil
}

// Done returns a channel closed once the read loop has fully torn down.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

// Pending exposes this connection's pending-reply table.
func (c *Consumer) Pending() *Pending {
	return c.pending
}

// feed pushes a chunk through the frame codec and handles every message the
// chunk completed. The returned error is fatal for the connection.
func (c *Consumer) feed(chunk []byte) error {
	c.codec.Feed(chunk)
	for {
		decoded, err := c.codec.Next()
		if err != nil {
			return err
		}
		if decoded == nil {
			return nil
		}
		if decoded.Opcode != frame.OpcodeBinary {
			c.logger.Debugf("mailbox %s: ignoring control frame with opcode %#x", c.remoteAddr(), decoded.Opcode)
			continue
		}

		message := new(Message)
		if err := c.serializer.Deserialize(decoded.Payload, message); err != nil {
			c.rejectUndecodable(decoded.Payload, err)
			continue
		}
		if err := c.dispatch(message); err != nil {
			c.logger.Errorf("mailbox %s: %v", c.remoteAddr(), err)
		}
	}
}

// dispatch routes one decoded message: callbacks resolve a pending future,
// everything else is a command invocation whose outcome is replied when the
// message carries an ack id.
func (c *Consumer) dispatch(message *Message) error {
	if message.Command == CommandCallback {
		return c.handleCallback(message)
	}

	result, err := c.invoke(message)
	if pending, ok := result.(future.Future); ok && err == nil {
		// Asynchronous tail: the handler suspended. Reply on completion
		// while the read loop moves on to the next message.
		go func() {
			value, ferr := pending.Await(context.Background())
			if rerr := c.reply(message, value, ferr); rerr != nil {
				c.logger.Errorf("mailbox %s: failed to deliver callback for %s: %v", c.remoteAddr(), message.Command, rerr)
			}
		}()
		return nil
	}
	return c.reply(message, result, err)
}

// handleCallback resolves the future awaiting this callback's ack id.
// A callback without an id, or with an id that is not pending (already
// resolved, or abandoned by its caller), is a protocol error; the already
// resolved future is never altered.
func (c *Consumer) handleCallback(message *Message) error {
	if message.AckID == "" {
		return fmt.Errorf("%w: callback without an id", ErrProtocol)
	}
	completable, ok := c.pending.Pop(message.AckID)
	if !ok {
		return fmt.Errorf("%w: callback %s is not pending", ErrProtocol, message.AckID)
	}
	if message.Failure != nil {
		completable.Failure(message.Failure)
		return nil
	}
	completable.Success(message.Result)
	return nil
}

// invoke resolves the target actor and the named command, then runs the
// handler with a per-invocation request context.
func (c *Consumer) invoke(message *Message) (any, error) {
	resolved, ok := c.directory.Lookup(message.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, message.Target)
	}

	target, ok := resolved.(Actor)
	if !ok {
		// The target lives behind another mailbox. Fail loudly rather than
		// silently misroute.
		return nil, fmt.Errorf("%w: target %s", ErrRoutingNotSupported, message.Target)
	}

	command, ok := c.registry.Resolve(message.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, message.Command)
	}

	caller := NewProxy(message.Sender, message.Target, c.Send)
	request := &CommandRequest{
		target: target,
		caller: caller,
		conn:   c.conn,
	}
	return c.run(command, request, message)
}

// run executes the handler, converting a panic into a command failure.
func (c *Consumer) run(command *Command, request *CommandRequest, message *Message) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = fmt.Errorf("%w: command %s panicked: %v", ErrCommandFailed, command.Name, recovered)
		}
	}()
	return command.Handler(request, message.Args, message.Kwargs)
}

// reply ships the outcome of a dispatched message back as a callback when an
// ack id was present. Without one the result is discarded and a failure is
// surfaced to the log by the caller.
func (c *Consumer) reply(message *Message, result any, err error) error {
	if message.AckID == "" {
		if err != nil {
			return fmt.Errorf("command %s failed: %w", message.Command, err)
		}
		return nil
	}

	callback := &Message{Command: CommandCallback, AckID: message.AckID}
	if err != nil {
		callback.Failure = CaptureFailure(err)
	} else {
		callback.Result = result
	}
	return c.write(callback)
}

// rejectUndecodable reports a payload that failed deserialization. When the
// raw payload still reveals an ack id, the sender gets a protocol-level
// failure response; otherwise the message is logged and dropped.
func (c *Consumer) rejectUndecodable(payload []byte, cause error) {
	c.logger.Errorf("mailbox %s: dropping undecodable message: %v", c.remoteAddr(), cause)

	probe := make(map[string]any)
	if err := c.serializer.Deserialize(payload, &probe); err != nil {
		return
	}
	ack, ok := probe["ack"].(string)
	if !ok || ack == "" {
		return
	}

	callback := &Message{
		Command: CommandCallback,
		AckID:   ack,
		Failure: &RemoteFailure{
			Kind:    FailureKindSerialization,
			Message: cause.Error(),
		},
	}
	if err := c.write(callback); err != nil {
		c.logger.Errorf("mailbox %s: failed to report serialization failure: %v", c.remoteAddr(), err)
	}
}

// write serializes, frames and writes one message to the transport. The
// write path is a direct pass-through to the transport's buffering; no
// additional queueing is imposed.
func (c *Consumer) write(message *Message) error {
	payload, err := c.serializer.Serialize(message)
	if err != nil {
		return err
	}
	framed, err := c.codec.Encode(payload, frame.OpcodeBinary)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	_, err = c.conn.Write(framed)
	return err
}

func (c *Consumer) teardown() {
	c.shutdown()
	if rejected := c.pending.RejectAll(ErrConnectionClosed); rejected > 0 {
		c.logger.Warnf("mailbox %s: rejected %d pending replies", c.remoteAddr(), rejected)
	}
	close(c.done)
}

func (c *Consumer) shutdown() {
	if c.closed.CompareAndSwap(false, true) {
		// the connection is going away, nothing to do with the close error
		_ = c.conn.Close()
	}
}

func (c *Consumer) remoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
