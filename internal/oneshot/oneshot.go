// Package oneshot provides a single-value signaling channel.
//
// A Chan carries at most one value from a sender that may run on any
// goroutine (typically a native callback thread) to a waiter. The first Send
// or Close wins; later calls are no-ops, so a sender never blocks and never
// panics on a channel that was already resolved.
package oneshot

import "sync"

// Chan is a one-shot channel. The zero value is not usable; use New.
type Chan[T any] struct {
	ch   chan T
	once sync.Once
}

// New returns an unresolved one-shot channel.
func New[T any]() *Chan[T] {
	return &Chan[T]{ch: make(chan T, 1)}
}

// Send resolves the channel with v. Reports whether this call resolved it.
func (c *Chan[T]) Send(v T) bool {
	sent := false
	c.once.Do(func() {
		c.ch <- v
		close(c.ch)
		sent = true
	})
	return sent
}

// Close resolves the channel without a value. Recv then reports ok=false.
func (c *Chan[T]) Close() bool {
	closed := false
	c.once.Do(func() {
		close(c.ch)
		closed = true
	})
	return closed
}

// Recv blocks until the channel is resolved. ok is false when it was
// resolved by Close, or when the value has already been received.
func (c *Chan[T]) Recv() (v T, ok bool) {
	v, ok = <-c.ch
	return v, ok
}

// C exposes the underlying channel for use in select statements.
func (c *Chan[T]) C() <-chan T {
	return c.ch
}
