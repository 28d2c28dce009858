package core

import "sync"

// Notifier is a single-slot event channel: at most one subscriber is active
// per stream, subscribing replaces (and closes) any previous subscription,
// and delivery is best effort. Publishing never blocks the caller; a slow
// subscriber misses intermediate values but always observes the most recent
// one. There is no buffering beyond the latest value and no error channel.
type Notifier[T any] struct {
	mu sync.Mutex
	ch chan T
}

// NewNotifier constructs a Notifier with no subscriber.
func NewNotifier[T any]() *Notifier[T] {
	return &Notifier[T]{}
}

// Subscribe returns a channel delivering subsequent published values. Any
// previous subscription channel is closed; its holder stops receiving.
func (n *Notifier[T]) Subscribe() <-chan T {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch != nil {
		close(n.ch)
	}
	n.ch = make(chan T, 1)
	return n.ch
}

// Publish delivers v to the current subscriber without blocking. If the
// subscriber has not drained the previous value it is replaced by v. Without
// a subscriber the value is dropped.
func (n *Notifier[T]) Publish(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch == nil {
		return
	}
	select {
	case n.ch <- v:
	default:
		// Slot occupied: evict the stale value, keep the latest.
		select {
		case <-n.ch:
		default:
		}
		select {
		case n.ch <- v:
		default:
		}
	}
}
