// Package variable provides a shared value holder that notifies listeners
// when the value changes.
//
// A Var is the bridge between control code (UI, network, timers) and the
// audio graph: control goroutines call Set, units read Get once per block.
package variable

import "sync"

// Var holds a value of type T. The zero Var holds the zero T.
// It is safe for concurrent use.
type Var[T comparable] struct {
	mu        sync.RWMutex
	value     T
	nextID    int
	listeners map[int]func(T)
}

// New returns a Var holding v.
func New[T comparable](v T) *Var[T] {
	return &Var[T]{value: v}
}

// Get returns the current value.
func (v *Var[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores value. Listeners run synchronously on the calling goroutine,
// outside the lock, and only when the value actually changes.
func (v *Var[T]) Set(value T) {
	v.store(value)
}

// Swap stores value and returns the previous one. Listeners are notified as
// for Set.
func (v *Var[T]) Swap(value T) T {
	return v.store(value)
}

// store replaces the value under the lock and notifies listeners outside
// it. It returns the previous value.
func (v *Var[T]) store(value T) T {
	v.mu.Lock()
	old := v.value
	if old == value {
		v.mu.Unlock()
		return old
	}
	v.value = value
	fns := make([]func(T), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
	return old
}

// Subscribe registers fn to run after every change. The returned function
// removes the listener; calling it more than once is harmless.
func (v *Var[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.listeners == nil {
		v.listeners = make(map[int]func(T))
	}
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}
