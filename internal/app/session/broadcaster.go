package session

import "sync"

// broadcaster fans session transitions out to registered listeners.
// Listener registrations are keyed by a monotonically increasing id so that
// unsubscribing one listener never disturbs another.
type broadcaster struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func(*Session)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		listeners: make(map[uint64]func(*Session)),
	}
}

// subscribe registers fn and returns its unsubscribe function. Unsubscribing
// twice is harmless.
func (b *broadcaster) subscribe(fn func(*Session)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// notify invokes every registered listener with the new session state.
// Listeners are snapshotted under the lock and called outside it, so a
// listener may subscribe or unsubscribe from within its callback.
func (b *broadcaster) notify(s *Session) {
	b.mu.Lock()
	snapshot := make([]func(*Session), 0, len(b.listeners))
	for _, fn := range b.listeners {
		snapshot = append(snapshot, fn)
	}
	b.mu.Unlock()

	for _, fn := range snapshot {
		fn(s)
	}
}
