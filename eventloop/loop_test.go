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

package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTasksRunInSubmissionOrder(t *testing.T) {
	loop := New()
	go loop.Run()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, loop.CallSoon(func() {
			order = append(order, i)
		}))
	}

	loop.Stop()
	<-loop.Done()
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestStopDrainsScheduledTasks(t *testing.T) {
	loop := New()

	// schedule before the loop even starts so the stop signal and the
	// tasks race through the same select
	var ran int
	for i := 0; i < 5; i++ {
		require.NoError(t, loop.CallSoon(func() { ran++ }))
	}
	loop.Stop()

	go loop.Run()
	<-loop.Done()
	require.Equal(t, 5, ran)
}

func TestCallSoonAfterStop(t *testing.T) {
	loop := New()
	go loop.Run()

	loop.Stop()
	<-loop.Done()

	err := loop.CallSoon(func() {})
	require.ErrorIs(t, err, ErrLoopStopped)
	require.True(t, loop.Stopped())
}

func TestCallSoonOnSaturatedBuffer(t *testing.T) {
	loop := New(WithBufferSize(1))
	require.NoError(t, loop.CallSoon(func() {}))

	err := loop.CallSoon(func() {})
	require.ErrorIs(t, err, ErrLoopSaturated)

	go loop.Run()
	loop.Stop()
	<-loop.Done()
}

func TestStopIsIdempotent(t *testing.T) {
	loop := New()
	go loop.Run()

	loop.Stop()
	loop.Stop()
	<-loop.Done()
}

func TestStopFromAnotherGoroutine(t *testing.T) {
	loop := New()
	loop.RunOnThread()

	executed := make(chan struct{})
	require.NoError(t, loop.CallSoon(func() { close(executed) }))

	select {
	case <-executed:
	case <-time.After(time.Second):
		t.Fatal("task was not executed")
	}

	go loop.Stop()
	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRunIsSingleUse(t *testing.T) {
	loop := New()
	go loop.Run()

	// second Run returns immediately instead of consuming tasks
	loop.Run()

	loop.Stop()
	<-loop.Done()
}
