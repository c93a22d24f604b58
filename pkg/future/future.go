// Package future provides a single-assignment deferred value. A Future
// settles exactly once, with a value or an error, and notifies observers
// registered before or after settlement.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlreadySettled is returned when a promise is completed twice.
	ErrAlreadySettled = errors.New("future: already settled")
	// ErrNilFunc is returned by Go when fn is nil.
	ErrNilFunc = errors.New("future: nil function")
)

// PanicError carries a panic recovered from a function run by Go.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("future: function panicked: %v", e.Value)
}

// Future is a value that becomes available later.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	observers []func(T, error)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already settled with value.
func Completed[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.settle(value, nil)
	return f
}

// Failed returns a future already settled with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Go runs fn on a new goroutine and settles the returned future with its
// result. A panic in fn settles the future with a *PanicError.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	if fn == nil {
		return Failed[T](ErrNilFunc)
	}

	f := newFuture[T]()
	go func() {
		var (
			value T
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.settle(zero, &PanicError{Value: r})
				return
			}
			f.settle(value, err)
		}()
		value, err = fn(ctx)
	}()
	return f
}

// settle stores the result and runs observers outside the lock.
// It reports false if the future was already settled.
func (f *Future[T]) settle(value T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value = value
	f.err = err
	observers := f.observers
	f.observers = nil
	close(f.done)
	f.mu.Unlock()

	for _, observe := range observers {
		observe(value, err)
	}
	return true
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Settled reports whether the future has a result.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Err returns the settlement error, or nil while pending or on success.
func (f *Future[T]) Err() error {
	if !f.Settled() {
		return nil
	}
	return f.err
}

// OnSettled registers fn to run with the result. If the future has already
// settled, fn runs immediately on the calling goroutine; otherwise it runs
// on the goroutine that settles the future.
func (f *Future[T]) OnSettled(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.observers = append(f.observers, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn(f.value, f.err)
}

// WhenComplete returns a future that settles with the same result as f,
// after fn has observed it.
func (f *Future[T]) WhenComplete(fn func(T, error)) *Future[T] {
	next := newFuture[T]()
	f.OnSettled(func(value T, err error) {
		defer next.settle(value, err)
		fn(value, err)
	})
	return next
}
