// Package statuslog is a process-wide observable status sink. The worker
// records its most recent activity here and live viewers (a status endpoint,
// a test) read it back or subscribe for updates. It is injected where
// needed rather than accessed as a global so it stays testable.
package statuslog

import (
	"sync"
)

// Ticker holds the most recent status line and fans new lines out to
// subscribers. Slow subscribers miss updates instead of blocking the
// producer.
type Ticker struct {
	mu   sync.RWMutex
	last string
	subs []chan string
}

func New() *Ticker {
	return &Ticker{}
}

// Record stores msg as the latest status and notifies subscribers.
func (t *Ticker) Record(msg string) {
	t.mu.Lock()
	t.last = msg
	subs := make([]chan string, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Last returns the most recently recorded status line.
func (t *Ticker) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Subscribe returns a channel receiving future status lines. Updates are
// dropped for subscribers that are not keeping up.
func (t *Ticker) Subscribe() <-chan string {
	ch := make(chan string, 16)
	t.mu.Lock()
	t.subs = append(t.subs, ch)
	t.mu.Unlock()
	return ch
}
