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

	"github.com/tochemey/postbox/eventloop"
	"github.com/tochemey/postbox/future"
)

// MonitorMailbox lets a supervised actor reuse its supervisor's mailbox
// instead of opening its own connection. Every operation is explicitly
// delegated to the supervisor's mailbox; the wrapper owns nothing.
type MonitorMailbox struct {
	mailbox Mailbox
}

// Verify MonitorMailbox satisfies the Mailbox interface.
var _ Mailbox = (*MonitorMailbox)(nil)

// NewMonitorMailbox wraps the supervisor's mailbox. The handshake, when
// non-nil, is scheduled onto the supervisor's loop (not executed inline) so
// the supervisor performs its own connection handshake before first use.
func NewMonitorMailbox(mailbox Mailbox, handshake eventloop.Task) (*MonitorMailbox, error) {
	if handshake != nil {
		if err := mailbox.Loop().CallSoon(handshake); err != nil {
			return nil, err
		}
	}
	return &MonitorMailbox{mailbox: mailbox}, nil
}

// Send forwards to the supervisor's mailbox.
func (m *MonitorMailbox) Send(ctx context.Context, command, sender, target string, args []any, kwargs map[string]any) (future.Future, error) {
	return m.mailbox.Send(ctx, command, sender, target, args, kwargs)
}

// Address forwards to the supervisor's mailbox.
func (m *MonitorMailbox) Address() string {
	return m.mailbox.Address()
}

// Loop forwards to the supervisor's mailbox.
func (m *MonitorMailbox) Loop() *eventloop.Loop {
	return m.mailbox.Loop()
}

// Close is a no-op: the lifetime of the real connection is owned by the
// supervisor, not by this wrapper.
func (m *MonitorMailbox) Close() error {
	return nil
}
