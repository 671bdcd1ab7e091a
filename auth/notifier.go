package auth

import "sync"

// Broadcaster fans out a session-expired signal to every subscriber. The
// client fires it after a failed refresh clears the saved session, so the
// command layer can tell the user to log in again.
type Broadcaster struct {
	mu   sync.Mutex
	subs []chan struct{}
}

// NewBroadcaster creates an empty Broadcaster ready for subscriptions.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a new listener and returns its channel. The channel
// has a one-slot buffer and signals are sent without blocking, so a listener
// that has not drained yet coalesces repeated signals instead of stalling
// the caller.
func (b *Broadcaster) Subscribe() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, 1)
	b.subs = append(b.subs, ch)
	return ch
}

// NotifySessionExpired signals every subscriber that the session was cleared.
func (b *Broadcaster) NotifySessionExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
