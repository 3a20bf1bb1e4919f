package sub

import (
	"sync"
	"time"

	"github.com/relaybroker/broker-client-go/core/msg"
)

// unackedTracker partitions tracked ids into time buckets of width
// tickTime, rotating the oldest bucket into a redelivery request once
// it's aged past timeout. add/remove/removeUntil/clear/close are all
// idempotent.
type unackedTracker struct {
	mu      sync.Mutex
	buckets []map[msg.MessageID]bool
	timeout time.Duration
	tick    time.Duration

	onTimeout func(ids []msg.MessageID)

	closed bool
	stopc  chan struct{}
}

func newUnackedTracker(timeout, tick time.Duration, onTimeout func(ids []msg.MessageID)) *unackedTracker {
	if tick <= 0 {
		tick = timeout
	}
	numBuckets := 3
	if timeout > 0 && tick > 0 {
		if n := int(timeout / tick); n > numBuckets {
			numBuckets = n
		}
	}

	t := &unackedTracker{
		buckets:   make([]map[msg.MessageID]bool, numBuckets),
		timeout:   timeout,
		tick:      tick,
		onTimeout: onTimeout,
		stopc:     make(chan struct{}),
	}
	for i := range t.buckets {
		t.buckets[i] = make(map[msg.MessageID]bool)
	}

	if timeout > 0 {
		go t.loop()
	}
	return t
}

func (t *unackedTracker) loop() {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.rotate()
		case <-t.stopc:
			return
		}
	}
}

// add starts tracking id in the newest (rightmost) bucket.
func (t *unackedTracker) add(id msg.MessageID) {
	if t.timeout <= 0 {
		return
	}
	t.mu.Lock()
	t.buckets[len(t.buckets)-1][id] = true
	t.mu.Unlock()
}

// remove stops tracking id, wherever it currently lives.
func (t *unackedTracker) remove(id msg.MessageID) {
	t.mu.Lock()
	for _, b := range t.buckets {
		delete(b, id)
	}
	t.mu.Unlock()
}

// removeUntil stops tracking every id less-or-equal to id, modeling a
// cumulative ack.
func (t *unackedTracker) removeUntil(id msg.MessageID) {
	t.mu.Lock()
	for _, b := range t.buckets {
		for tracked := range b {
			if tracked.LessEqual(id) {
				delete(b, tracked)
			}
		}
	}
	t.mu.Unlock()
}

// clear drops every tracked id without reporting a timeout for them.
func (t *unackedTracker) clear() {
	t.mu.Lock()
	for i := range t.buckets {
		t.buckets[i] = make(map[msg.MessageID]bool)
	}
	t.mu.Unlock()
}

// rotate expires the oldest bucket, reporting its ids via onTimeout,
// and opens a fresh bucket at the newest end.
func (t *unackedTracker) rotate() {
	t.mu.Lock()
	expired := t.buckets[0]
	t.buckets = append(t.buckets[1:], make(map[msg.MessageID]bool))
	t.mu.Unlock()

	if len(expired) == 0 {
		return
	}
	ids := make([]msg.MessageID, 0, len(expired))
	for id := range expired {
		ids = append(ids, id)
	}
	t.onTimeout(ids)
}

// close stops the rotation loop. Safe to call more than once.
func (t *unackedTracker) close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()
	close(t.stopc)
}
