// Package pubsub holds replay-latest broadcast values observed by many
// readers and written by one producer.
package pubsub

import (
	"sync"
	"sync/atomic"
)

// Latch stores the latest published value and offers it to subscribers.
// Each subscriber channel buffers one value; a slow subscriber only ever
// sees the newest value it has not consumed yet.
type Latch[T any] struct {
	mutex       sync.RWMutex
	value       T
	subscribers map[uint64]chan T
	counter     uint64
}

func NewLatch[T any](initial T) *Latch[T] {
	return &Latch[T]{
		value:       initial,
		subscribers: make(map[uint64]chan T),
	}
}

// Value returns the latest published value.
func (l *Latch[T]) Value() T {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.value
}

func (l *Latch[T]) Publish(v T) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.value = v
	for _, ch := range l.subscribers {
		offer(ch, v)
	}
}

// Update applies fn to the current value and publishes the result under a
// single lock.
func (l *Latch[T]) Update(fn func(T) T) T {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.value = fn(l.value)
	for _, ch := range l.subscribers {
		offer(ch, l.value)
	}
	return l.value
}

// Subscribe returns a channel primed with the current value and a function
// that removes the subscription and closes the channel.
func (l *Latch[T]) Subscribe() (<-chan T, func()) {
	id := atomic.AddUint64(&l.counter, 1)
	ch := make(chan T, 1)

	l.mutex.Lock()
	ch <- l.value
	l.subscribers[id] = ch
	l.mutex.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mutex.Lock()
			delete(l.subscribers, id)
			close(ch)
			l.mutex.Unlock()
		})
	}
}

// offer replaces any unconsumed value in ch with v. Callers hold the write
// lock, so no other sender races on ch.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
