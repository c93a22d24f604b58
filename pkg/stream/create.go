package stream

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

// Emitter pushes items from a producer into one subscription.
type Emitter[T any] interface {
	// Next buffers item for delivery. It reports false once the
	// subscriber has cancelled or the subscription has terminated.
	Next(item T) bool
}

// ProduceFunc generates the items of one subscription. Returning an error
// terminates the stream with OnError; returning nil completes it. ctx is
// cancelled when the subscriber cancels.
type ProduceFunc[T any] func(ctx context.Context, emit Emitter[T]) error

type createPublisher[T any] struct {
	produce ProduceFunc[T]
}

// Create returns a cold publisher that runs produce on its own goroutine
// for every subscriber. Items are buffered until requested.
func Create[T any](produce ProduceFunc[T]) Publisher[T] {
	return &createPublisher[T]{produce: produce}
}

// FromSlice emits items in order and completes.
func FromSlice[T any](items ...T) Publisher[T] {
	snapshot := append([]T(nil), items...)
	return Create(func(_ context.Context, emit Emitter[T]) error {
		for _, item := range snapshot {
			if !emit.Next(item) {
				return nil
			}
		}
		return nil
	})
}

// Empty completes without emitting.
func Empty[T any]() Publisher[T] {
	return Create(func(context.Context, Emitter[T]) error { return nil })
}

// Fail terminates every subscription with err.
func Fail[T any](err error) Publisher[T] {
	return Create(func(context.Context, Emitter[T]) error { return err })
}

func (p *createPublisher[T]) Subscribe(ctx context.Context, subscriber Subscriber[T]) {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription[T]{
		subscriber: subscriber,
		buffer:     queue.New(),
		cancel:     cancel,
	}

	subscriber.OnSubscribe(s)

	go func() {
		err := p.produce(ctx, s)
		s.finish(err)
	}()
}

// subscription serialises signals to the subscriber. Whoever sets
// draining delivers; concurrent callers leave their work to it.
type subscription[T any] struct {
	subscriber Subscriber[T]
	cancel     context.CancelFunc

	mu         sync.Mutex
	buffer     *queue.Queue
	demand     int64
	draining   bool
	finished   bool
	err        error
	cancelled  bool
	terminated bool
}

func (s *subscription[T]) Next(item T) bool {
	s.mu.Lock()
	if s.finished || s.cancelled {
		s.mu.Unlock()
		return false
	}
	s.buffer.Add(item)
	s.mu.Unlock()

	s.drain()
	return true
}

func (s *subscription[T]) Request(n int64) {
	s.mu.Lock()
	if s.cancelled || s.terminated {
		s.mu.Unlock()
		return
	}
	if n <= 0 {
		s.failLocked(ErrInvalidRequest)
		s.mu.Unlock()
		s.drain()
		return
	}
	if s.demand > Unbounded-n {
		s.demand = Unbounded
	} else {
		s.demand += n
	}
	s.mu.Unlock()

	s.drain()
}

func (s *subscription[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.buffer = queue.New()
	s.mu.Unlock()

	s.cancel()
}

func (s *subscription[T]) finish(err error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.err = err
	s.mu.Unlock()

	s.drain()
}

// failLocked discards buffered items and marks the stream as failed.
func (s *subscription[T]) failLocked(err error) {
	s.finished = true
	s.err = err
	s.buffer = queue.New()
}

func (s *subscription[T]) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for {
		if s.cancelled || s.terminated {
			break
		}

		if s.buffer.Length() > 0 && s.demand > 0 {
			item := s.buffer.Remove().(T)
			if s.demand != Unbounded {
				s.demand--
			}
			s.mu.Unlock()
			s.subscriber.OnNext(item)
			s.mu.Lock()
			continue
		}

		if s.finished && s.buffer.Length() == 0 {
			s.terminated = true
			s.draining = false
			err := s.err
			s.mu.Unlock()

			s.cancel()
			if err != nil {
				s.subscriber.OnError(err)
			} else {
				s.subscriber.OnComplete()
			}
			return
		}
		break
	}

	s.draining = false
	s.mu.Unlock()
}
