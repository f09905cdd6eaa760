// Package suspend provides the logical threads that bridge the PAC script's
// synchronous view of name resolution onto the asynchronous resolver.
//
// Each script invocation runs on its own logical thread: a goroutine that may
// park on a pending lookup via Await without blocking its spawner or any
// other thread. Resolution calls are the only suspension points; everything
// else runs to completion.
package suspend

import (
	"context"
	"fmt"

	"github.com/proxykit/paceval/internal/resolve"
)

// Thread is the handle a suspendable computation uses to park itself. A
// thread executes on a single goroutine, so at most one Await is outstanding
// at a time.
type Thread struct {
	ctx context.Context
}

// Context returns the context the thread was started with.
func (t *Thread) Context() context.Context { return t.ctx }

// Await parks the calling thread until the pending lookup settles or the
// thread's context is done. On success the resolved address comes back as an
// ordinary return value; on failure the lookup error is returned at the call
// site so the caller's normal error handling applies.
func (t *Thread) Await(pending <-chan resolve.Result) (string, error) {
	select {
	case r := <-pending:
		return r.Address, r.Err
	case <-t.ctx.Done():
		return "", t.ctx.Err()
	}
}

// Future is the eventual result of one logical thread. It settles exactly
// once, when the thread's function returns or panics.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Run spawns a logical thread executing fn and returns its future without
// blocking. There is no bound on the number of simultaneous threads and no
// queueing between them.
func Run[T any](ctx context.Context, fn func(*Thread) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("logical thread panicked: %v", r)
			}
			close(f.done)
		}()
		f.val, f.err = fn(&Thread{ctx: ctx})
	}()
	return f
}

// Wait blocks until the thread finishes and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Done returns a channel that is closed once the thread has finished.
func (f *Future[T]) Done() <-chan struct{} { return f.done }
