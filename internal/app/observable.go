package app

import "sync"

// Observable holds a single value and notifies subscribers when it changes.
// Subscribers run synchronously on the goroutine calling Set, in
// subscription order. The zero value is ready to use.
type Observable[T comparable] struct {
	mu    sync.Mutex
	value T
	subs  []subscriber[T]
	next  int
}

type subscriber[T comparable] struct {
	id int
	fn func(T)
}

// NewObservable returns an Observable holding initial.
func NewObservable[T comparable](initial T) *Observable[T] {
	return &Observable[T]{value: initial}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores v and notifies subscribers if it differs from the current value.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	if o.value == v {
		o.mu.Unlock()
		return
	}
	o.value = v
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Subscribe registers fn for future changes and returns a func that
// removes it. Calling the returned func more than once is harmless.
func (o *Observable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}
