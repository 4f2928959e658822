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

import "github.com/tochemey/postbox/future"

// SendFunc routes a command message to its target. Both Consumer (for
// replies over an established connection) and Client (for outbound requests)
// provide one.
type SendFunc func(command, sender, target string, args []any, kwargs map[string]any) (future.Future, error)

// Proxy is a lightweight remote handle to an actor: a capability for
// addressing and replying that never grants access to the actor's internals.
// A Proxy never owns the real actor.
type Proxy struct {
	id   string
	from string
	send SendFunc
}

// Verify Proxy satisfies the Addressable interface.
var _ Addressable = (*Proxy)(nil)

// NewProxy creates a proxy for the actor identified by id. Messages sent
// through the proxy carry from as their sender and are routed by send.
func NewProxy(id, from string, send SendFunc) *Proxy {
	return &Proxy{
		id:   id,
		from: from,
		send: send,
	}
}

// ID returns the proxied actor's identifier.
func (p *Proxy) ID() string {
	return p.id
}

// Send routes a command to the proxied actor. The returned future is nil for
// commands that do not require an acknowledgement.
func (p *Proxy) Send(command string, args []any, kwargs map[string]any) (future.Future, error) {
	return p.send(command, p.from, p.id, args, kwargs)
}
