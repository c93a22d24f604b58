package future

// Promise is the write side of a Future.
type Promise[T any] struct {
	future *Future[T]
}

// NewPromise creates a pending promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{future: newFuture[T]()}
}

// Future returns the read side.
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}

// Resolve settles the future with value.
func (p *Promise[T]) Resolve(value T) error {
	if !p.future.settle(value, nil) {
		return ErrAlreadySettled
	}
	return nil
}

// Reject settles the future with err.
func (p *Promise[T]) Reject(err error) error {
	var zero T
	if !p.future.settle(zero, err) {
		return ErrAlreadySettled
	}
	return nil
}
