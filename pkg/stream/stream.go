// Package stream is a small push-based stream model with demand signalling.
// A Publisher emits to each Subscriber independently: every call to
// Subscribe starts a new run of the source.
package stream

import (
	"context"
	"errors"
)

// ErrInvalidRequest terminates a subscription that requested zero or fewer items.
var ErrInvalidRequest = errors.New("stream: request must be positive")

// Unbounded requests every remaining item.
const Unbounded int64 = 1<<63 - 1

// Publisher is a source of items delivered to subscribers on demand.
type Publisher[T any] interface {
	Subscribe(ctx context.Context, subscriber Subscriber[T])
}

// Subscriber receives signals from a Publisher. OnSubscribe is called
// first; OnError and OnComplete are terminal and mutually exclusive.
type Subscriber[T any] interface {
	OnSubscribe(subscription Subscription)
	OnNext(item T)
	OnError(err error)
	OnComplete()
}

// Subscription links one subscriber to one run of a publisher.
type Subscription interface {
	Request(n int64)
	Cancel()
}

// SubscriberFuncs adapts plain functions to Subscriber. Nil fields are no-ops.
type SubscriberFuncs[T any] struct {
	OnSubscribeFunc func(Subscription)
	OnNextFunc      func(T)
	OnErrorFunc     func(error)
	OnCompleteFunc  func()
}

func (f SubscriberFuncs[T]) OnSubscribe(s Subscription) {
	if f.OnSubscribeFunc != nil {
		f.OnSubscribeFunc(s)
	}
}

func (f SubscriberFuncs[T]) OnNext(item T) {
	if f.OnNextFunc != nil {
		f.OnNextFunc(item)
	}
}

func (f SubscriberFuncs[T]) OnError(err error) {
	if f.OnErrorFunc != nil {
		f.OnErrorFunc(err)
	}
}

func (f SubscriberFuncs[T]) OnComplete() {
	if f.OnCompleteFunc != nil {
		f.OnCompleteFunc()
	}
}
