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
	"github.com/tochemey/postbox/future"
	"github.com/tochemey/postbox/internal/syncmap"
)

// Pending is the per-connection table mapping correlation ids to the
// completables awaiting their callback. Each entry is removed exactly once,
// either when the matching callback arrives or when the connection fails.
type Pending struct {
	table *syncmap.SyncMap[string, future.Completable]
}

// NewPending creates an empty pending-reply table.
func NewPending() *Pending {
	return &Pending{
		table: syncmap.New[string, future.Completable](),
	}
}

// Register binds an ack id to a completable. It reports false when the id is
// already pending, in which case the caller must mint a fresh one.
func (p *Pending) Register(ack string, completable future.Completable) bool {
	return p.table.SetIfAbsent(ack, completable)
}

// Pop removes and returns the completable registered under ack. At most one
// caller ever obtains a given entry; a second callback for the same id finds
// nothing.
func (p *Pending) Pop(ack string) (future.Completable, bool) {
	return p.table.Pop(ack)
}

// RejectAll fails every pending future with err and empties the table. It is
// called on connection failure so no caller is left hanging silently.
func (p *Pending) RejectAll(err error) int {
	rejected := p.table.Reset()
	for _, completable := range rejected {
		completable.Failure(err)
	}
	return len(rejected)
}

// Len returns the number of in-flight requests awaiting a callback.
func (p *Pending) Len() int {
	return p.table.Len()
}
