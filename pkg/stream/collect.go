package stream

import (
	"context"
	"sync"
)

// Collect subscribes with unbounded demand and gathers every item. If ctx
// ends first the subscription is cancelled and ctx.Err() is returned with
// the items received so far.
func Collect[T any](ctx context.Context, publisher Publisher[T]) ([]T, error) {
	var (
		mu    sync.Mutex
		items []T
		sub   Subscription
		err   error
		done  = make(chan struct{})
		once  sync.Once
	)
	finish := func(e error) {
		once.Do(func() {
			mu.Lock()
			err = e
			mu.Unlock()
			close(done)
		})
	}

	publisher.Subscribe(ctx, SubscriberFuncs[T]{
		OnSubscribeFunc: func(s Subscription) {
			mu.Lock()
			sub = s
			mu.Unlock()
			s.Request(Unbounded)
		},
		OnNextFunc: func(item T) {
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
		},
		OnErrorFunc:    finish,
		OnCompleteFunc: func() { finish(nil) },
	})

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		s := sub
		mu.Unlock()
		if s != nil {
			s.Cancel()
		}
		finish(ctx.Err())
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]T(nil), items...), err
}
