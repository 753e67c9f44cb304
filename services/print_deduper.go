package services

import (
	"sync"
	"time"
)

// DefaultPrintDedupeWindow suppresses repeated print pushes for the same request.
const DefaultPrintDedupeWindow = 30 * time.Second

// PrintDeduper remembers recently printed (order, request) pairs. The print agent has
// no idempotency of its own, so a duplicate push means a duplicate paper receipt.
type PrintDeduper struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

func NewPrintDeduper(window time.Duration) *PrintDeduper {
	if window <= 0 {
		window = DefaultPrintDedupeWindow
	}
	return &PrintDeduper{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether the request should be printed and records it if so.
func (d *PrintDeduper) Allow(orderID, requestID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for key, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, key)
		}
	}

	key := orderID + "|" + requestID
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = now
	return true
}

// Forget drops a key so a failed print can be retried by the next push.
func (d *PrintDeduper) Forget(orderID, requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, orderID+"|"+requestID)
}

func (d *PrintDeduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
