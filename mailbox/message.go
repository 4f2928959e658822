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
	"encoding/hex"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
)

// CommandCallback is the reserved command name that signals "deliver this
// result to the pending request identified by this ack id".
const CommandCallback = "callback"

// ackTokenLength is the number of hex characters in a correlation id.
const ackTokenLength = 8

// Message is the unit exchanged between mailboxes. AckID is present iff the
// command is declared to require a reply; Result and Failure are only set on
// callback messages.
type Message struct {
	Command string         `cbor:"command"`
	Sender  string         `cbor:"sender,omitempty"`
	Target  string         `cbor:"target,omitempty"`
	Args    []any          `cbor:"args,omitempty"`
	Kwargs  map[string]any `cbor:"kwargs,omitempty"`
	AckID   string         `cbor:"ack,omitempty"`
	Result  any            `cbor:"result,omitempty"`
	Failure *RemoteFailure `cbor:"failure,omitempty"`
}

// newAckID mints a short random correlation token, fresh per in-flight
// request.
func newAckID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:ackTokenLength]
}

// RemoteFailure is the serializable representation of an error captured
// while executing a command on the remote side. Native error values do not
// survive serialization; a failure crosses the wire as a stable kind, a
// message and optional structured detail.
type RemoteFailure struct {
	Kind    string            `cbor:"kind"`
	Message string            `cbor:"message"`
	Detail  map[string]string `cbor:"detail,omitempty"`
}

// Error implements the error interface so a remote failure can fail the
// caller's future directly.
func (f *RemoteFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Failure kinds shipped on the wire.
const (
	FailureKindUnknownActor    = "unknown_actor"
	FailureKindCommandNotFound = "command_not_found"
	FailureKindRouting         = "routing_not_supported"
	FailureKindProtocol        = "protocol_error"
	FailureKindCommandFailed   = "command_failed"
)

// CaptureFailure converts an error raised during dispatch into its wire
// representation. Already-captured failures pass through unchanged.
func CaptureFailure(err error) *RemoteFailure {
	var remote *RemoteFailure
	if errors.As(err, &remote) {
		return remote
	}
	return &RemoteFailure{
		Kind:    failureKind(err),
		Message: err.Error(),
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownActor):
		return FailureKindUnknownActor
	case errors.Is(err, ErrCommandNotFound):
		return FailureKindCommandNotFound
	case errors.Is(err, ErrRoutingNotSupported):
		return FailureKindRouting
	case errors.Is(err, ErrProtocol):
		return FailureKindProtocol
	default:
		return FailureKindCommandFailed
	}
}

// CommandRequest carries the invocation context handed to a command handler.
// It is constructed per invocation, read-only, and discarded after the call
// completes.
type CommandRequest struct {
	target Actor
	caller *Proxy
	conn   net.Conn
}

// Target returns the actor the command was addressed to.
func (r *CommandRequest) Target() Actor {
	return r.target
}

// Caller returns a proxy usable for replying to the sending actor. The proxy
// never exposes the sender's internals.
func (r *CommandRequest) Caller() *Proxy {
	return r.caller
}

// Conn returns the connection the command arrived on.
func (r *CommandRequest) Conn() net.Conn {
	return r.conn
}
