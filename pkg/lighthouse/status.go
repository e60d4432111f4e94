package lighthouse

import (
	"sync"
	"time"
)

// statusTracker holds the in-memory, per-session power status of devices and
// fans status changes out to subscribers. Statuses are never persisted.
type statusTracker struct {
	mu     sync.RWMutex
	status map[string]Status

	subsMu sync.Mutex
	subs   []chan StatusEvent
}

func newStatusTracker() *statusTracker {
	return &statusTracker{
		status: make(map[string]Status),
	}
}

// set records a new status for address and publishes an event. Publishing is
// non-blocking; a subscriber that cannot keep up misses events rather than
// stalling a transition.
func (t *statusTracker) set(address string, s Status) {
	t.mu.Lock()
	prev, had := t.status[address]
	t.status[address] = s
	t.mu.Unlock()

	if had && prev == s {
		return
	}

	ev := StatusEvent{Address: address, Status: s, Timestamp: time.Now()}

	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// get returns the status for address and whether one has been recorded.
func (t *statusTracker) get(address string) (Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.status[address]
	return s, ok
}

// snapshot returns a copy of the full status map.
func (t *statusTracker) snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.status))
	for k, v := range t.status {
		out[k] = v
	}
	return out
}

func (t *statusTracker) subscribe() chan StatusEvent {
	ch := make(chan StatusEvent, 16)
	t.subsMu.Lock()
	t.subs = append(t.subs, ch)
	t.subsMu.Unlock()
	return ch
}

func (t *statusTracker) unsubscribe(ch chan StatusEvent) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	for i, sub := range t.subs {
		if sub == ch {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			close(ch)
			return
		}
	}
}
