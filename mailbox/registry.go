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
	"fmt"
	"strings"

	"github.com/tochemey/postbox/internal/syncmap"
)

// Handler executes a command. It receives the per-invocation request context
// plus the positional and keyword arguments carried by the message.
//
// A handler may return a [future.Future] as its value: the consumer then
// replies once that future completes while the connection's read loop moves
// on to the next message. Any other value (or error) is replied immediately.
type Handler func(req *CommandRequest, args []any, kwargs map[string]any) (any, error)

// Command is an entry in the closed command registry: a name, whether the
// command requires an acknowledgement, and the handler contract to invoke.
type Command struct {
	// Name is the wire name of the command.
	Name string
	// Ack declares whether callers get a correlation id and a future.
	Ack bool
	// Handler is the callable contract invoked on dispatch.
	Handler Handler
}

// Registry maps command names to their executable contracts and
// reply-requirement metadata. Entries are validated at registration time; no
// runtime reflection over arbitrary callables takes place.
type Registry struct {
	commands *syncmap.SyncMap[string, *Command]
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: syncmap.New[string, *Command](),
	}
}

// Register adds a command to the registry. The name must be non-empty and
// not the reserved callback name, the handler must be non-nil, and the name
// must not already be taken.
func (r *Registry) Register(command *Command) error {
	name := strings.TrimSpace(command.Name)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidCommand)
	case name == CommandCallback:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidCommand, CommandCallback)
	case command.Handler == nil:
		return fmt.Errorf("%w: command %s has a nil handler", ErrInvalidCommand, name)
	}

	if !r.commands.SetIfAbsent(name, command) {
		return fmt.Errorf("%w: %s", ErrCommandAlreadyRegistered, name)
	}
	return nil
}

// Resolve returns the command registered under name.
func (r *Registry) Resolve(name string) (*Command, bool) {
	return r.commands.Get(name)
}

// Deregister removes the command registered under name.
func (r *Registry) Deregister(name string) {
	r.commands.Delete(name)
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return r.commands.Len()
}
