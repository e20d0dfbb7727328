// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Notifier broadcasts values to all subscribed listeners.
// Listeners that fall behind miss values rather than block the sender; for
// ping-style use (T = struct{}) a listener only needs to know something changed
// and re-reads its source.
type Notifier[T any] struct {
	mu        sync.RWMutex
	listeners map[chan T]struct{}
	buffer    int
}

// New creates a Notifier whose listener channels hold one pending value.
func New[T any]() *Notifier[T] {
	return NewBuffered[T](1)
}

// NewBuffered creates a Notifier whose listener channels hold size pending values.
func NewBuffered[T any](size int) *Notifier[T] {
	if size < 1 {
		size = 1
	}
	return &Notifier[T]{
		listeners: make(map[chan T]struct{}),
		buffer:    size,
	}
}

// Subscribe returns a channel that receives broadcast values.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier[T]) Subscribe() chan T {
	ch := make(chan T, n.buffer)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier[T]) Unsubscribe(ch chan T) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Broadcast sends v to all listeners.
// Non-blocking: if a listener's channel is full, the value is skipped for it.
func (n *Notifier[T]) Broadcast(v T) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- v:
		default:
			// Channel full, skip (listener will catch up on next broadcast)
		}
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
