package sub

import (
	"sync"
	"time"

	"github.com/relaybroker/broker-client-go/core/msg"
)

// ackEntry is a buffered (id, cumulative) pair awaiting flush.
type ackEntry struct {
	id         msg.MessageID
	cumulative bool
}

// ackGroupingTracker coalesces individual acks into periodic batched
// ack frames, flushing on a timer, on seek, or on close. is_duplicate
// is consulted by MessageReceived to drop redeliveries of messages
// already pending ack.
type ackGroupingTracker struct {
	mu       sync.Mutex
	pending  map[msg.MessageID]bool // id -> cumulative
	order    []msg.MessageID
	recent   map[msg.MessageID]bool // flushed within the last tick, still dedup-worthy

	groupTime time.Duration
	send      func(entries []ackEntry)

	closed bool
	timer  *time.Timer
	stopc  chan struct{}
}

func newAckGroupingTracker(groupTime time.Duration, send func(entries []ackEntry)) *ackGroupingTracker {
	t := &ackGroupingTracker{
		pending:   make(map[msg.MessageID]bool),
		recent:    make(map[msg.MessageID]bool),
		groupTime: groupTime,
		send:      send,
		stopc:     make(chan struct{}),
	}
	if groupTime > 0 {
		go t.loop()
	}
	return t
}

func (t *ackGroupingTracker) loop() {
	ticker := time.NewTicker(t.groupTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Flush()
		case <-t.stopc:
			return
		}
	}
}

// Add buffers an ack. When groupTime is 0, grouping is a no-op
// passthrough: the ack is sent immediately.
func (t *ackGroupingTracker) Add(id msg.MessageID, cumulative bool) {
	if t.groupTime <= 0 {
		t.send([]ackEntry{{id: id, cumulative: cumulative}})
		return
	}

	t.mu.Lock()
	if _, ok := t.pending[id]; !ok {
		t.order = append(t.order, id)
	}
	t.pending[id] = cumulative
	t.mu.Unlock()
}

// IsDuplicate reports whether id is currently buffered or was flushed
// recently enough to still be considered a pending ack from the
// broker's point of view.
func (t *ackGroupingTracker) IsDuplicate(id msg.MessageID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; ok {
		return true
	}
	return t.recent[id]
}

// Flush sends every buffered ack and clears the buffer.
func (t *ackGroupingTracker) Flush() {
	t.mu.Lock()
	if len(t.order) == 0 {
		t.recent = make(map[msg.MessageID]bool)
		t.mu.Unlock()
		return
	}
	entries := make([]ackEntry, 0, len(t.order))
	recent := make(map[msg.MessageID]bool, len(t.order))
	for _, id := range t.order {
		entries = append(entries, ackEntry{id: id, cumulative: t.pending[id]})
		recent[id] = true
	}
	t.pending = make(map[msg.MessageID]bool)
	t.order = nil
	t.recent = recent
	t.mu.Unlock()

	t.send(entries)
}

// Close flushes any pending acks and stops the flush timer. Safe to
// call more than once.
func (t *ackGroupingTracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.Flush()
	close(t.stopc)
}
