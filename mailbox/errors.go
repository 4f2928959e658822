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

import "errors"

var (
	// ErrProtocol is returned when a structurally valid message violates the
	// protocol, e.g. a callback missing an id or a callback whose id is not
	// pending. The connection survives; the error is surfaced to the log.
	ErrProtocol = errors.New("mailbox: protocol violation")

	// ErrUnknownActor is returned when a message target cannot be resolved
	// to a locally known actor.
	ErrUnknownActor = errors.New("mailbox: unknown actor")

	// ErrCommandNotFound is returned when a command name is absent from the
	// registry.
	ErrCommandNotFound = errors.New("mailbox: command not found")

	// ErrCommandFailed wraps a failure raised while executing a command,
	// including recovered panics.
	ErrCommandFailed = errors.New("mailbox: command failed")

	// ErrRoutingNotSupported is returned when a message target resolves to a
	// remote proxy. Transitive routing through a mailbox-of-mailboxes is out
	// of scope; the message fails loudly rather than being silently
	// misrouted.
	ErrRoutingNotSupported = errors.New("mailbox: routing through a remote proxy target is not supported")

	// ErrConnectionClosed is returned when sending on a closed mailbox and
	// used to reject every future still pending when a connection fails.
	ErrConnectionClosed = errors.New("mailbox: connection closed")

	// ErrInvalidCommand is returned when registering a command with an empty
	// name or a nil handler.
	ErrInvalidCommand = errors.New("mailbox: invalid command")

	// ErrCommandAlreadyRegistered is returned when registering a command name twice.
	ErrCommandAlreadyRegistered = errors.New("mailbox: command already registered")
)
