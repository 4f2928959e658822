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

// Package eventloop implements the cooperative task loop each actor drives.
//
// A Loop serializes the execution of tasks scheduled onto it: tasks run one
// at a time, in submission order, on whichever goroutine called Run. Stop is
// delivered through a control channel rather than a direct call, so it is
// safe from any goroutine and is observed only after every task scheduled
// before it has drained.
package eventloop

import (
	"errors"
	"runtime"

	"go.uber.org/atomic"
)

var (
	// ErrLoopStopped is returned when a task is scheduled onto a loop that
	// has been stopped.
	ErrLoopStopped = errors.New("event loop is stopped")

	// ErrLoopSaturated is returned when the loop's task buffer is full.
	ErrLoopSaturated = errors.New("event loop task buffer is full")
)

// Task is a unit of work scheduled onto a Loop.
type Task func()

// Option configures a Loop.
type Option func(*Loop)

// WithBufferSize sets the capacity of the task buffer. The default is 1024.
// Values less than 1 are clamped to 1.
func WithBufferSize(size int) Option {
	return func(l *Loop) {
		if size < 1 {
			size = 1
		}
		l.size = size
	}
}

// Loop is a single-consumer task loop. Create one with New, start it with
// Run (or RunOnThread for CPU-bound actors), schedule work with CallSoon and
// shut it down with Stop.
type Loop struct {
	size    int
	tasks   chan Task
	control chan struct{}
	done    chan struct{}
	stopped atomic.Bool
	running atomic.Bool
}

// New creates a Loop. The loop does not process tasks until Run is called.
func New(opts ...Option) *Loop {
	loop := &Loop{
		size:    1024,
		control: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(loop)
	}
	loop.tasks = make(chan Task, loop.size)
	return loop
}

// Run processes tasks until Stop is called. Tasks already scheduled when the
// stop signal arrives are drained before Run returns. Run must be called at
// most once.
func (l *Loop) Run() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	defer close(l.done)

	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.control:
			l.drain()
			return
		}
	}
}

// RunOnThread starts Run on a new goroutine pinned to its own OS thread.
// CPU-bound actors use this so their loop's work does not starve the
// scheduling of mailbox I/O on the caller's thread.
func (l *Loop) RunOnThread() {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		l.Run()
	}()
}

// CallSoon schedules a task onto the loop. It is safe to call from any
// goroutine, including one running on a different OS thread than the loop.
// Returns ErrLoopStopped once Stop has been called and ErrLoopSaturated when
// the task buffer is full.
func (l *Loop) CallSoon(task Task) error {
	if l.stopped.Load() {
		return ErrLoopStopped
	}
	select {
	case l.tasks <- task:
		return nil
	default:
		return ErrLoopSaturated
	}
}

// Stop signals the loop to shut down after draining already-scheduled tasks.
// It is safe to call from any goroutine and is idempotent.
func (l *Loop) Stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}
	close(l.control)
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	return l.stopped.Load()
}

// Done returns a channel closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// drain runs the tasks that were scheduled before the stop signal fired.
func (l *Loop) drain() {
	for {
		select {
		case task := <-l.tasks:
			task()
		default:
			return
		}
	}
}
