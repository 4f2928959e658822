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
	"github.com/tochemey/postbox/eventloop"
	"github.com/tochemey/postbox/internal/syncmap"
)

// Addressable is anything reachable by actor id: a local Actor or a remote
// Proxy.
type Addressable interface {
	// ID returns the opaque actor identifier.
	ID() string
}

// Actor is a locally executing, isolated unit with its own event loop,
// reachable only via message passing.
type Actor interface {
	Addressable

	// Loop returns the actor's event loop.
	Loop() *eventloop.Loop
}

// Directory is the actor directory a consumer resolves message targets and
// senders against.
type Directory struct {
	actors *syncmap.SyncMap[string, Addressable]
}

// NewDirectory creates an empty actor directory.
func NewDirectory() *Directory {
	return &Directory{
		actors: syncmap.New[string, Addressable](),
	}
}

// Register adds an actor (or a remote proxy) under its id, replacing any
// previous entry.
func (d *Directory) Register(actor Addressable) {
	d.actors.Set(actor.ID(), actor)
}

// Lookup resolves an actor id.
func (d *Directory) Lookup(id string) (Addressable, bool) {
	return d.actors.Get(id)
}

// Deregister removes the entry registered under id.
func (d *Directory) Deregister(id string) {
	d.actors.Delete(id)
}

// Len returns the number of directory entries.
func (d *Directory) Len() int {
	return d.actors.Len()
}
