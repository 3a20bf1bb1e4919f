package sub

import (
	"sync"
	"time"

	"github.com/relaybroker/broker-client-go/core/msg"
)

// negAckTracker maps a nack'd id to a due time and drains due ids into
// a single redelivery request. Adding an id that's already tracked
// keeps the earlier due time -- repeated nacks don't push the
// redelivery further out.
type negAckTracker struct {
	mu    sync.Mutex
	due   map[msg.MessageID]time.Time
	delay time.Duration

	onDue func(ids []msg.MessageID)

	closed bool
	stopc  chan struct{}
}

func newNegAckTracker(delay time.Duration, onDue func(ids []msg.MessageID)) *negAckTracker {
	t := &negAckTracker{
		due:   make(map[msg.MessageID]time.Time),
		delay: delay,
		onDue: onDue,
		stopc: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *negAckTracker) loop() {
	tick := t.delay / 3
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.drainDue()
		case <-t.stopc:
			return
		}
	}
}

// add schedules id for redelivery at now+delay, unless it's already
// tracked with an earlier due time.
func (t *negAckTracker) add(id msg.MessageID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.due[id]; ok {
		return
	}
	t.due[id] = time.Now().Add(t.delay)
}

// remove cancels a pending nack redelivery for id, called once the
// message is acked so a later nack delay doesn't fire for it.
func (t *negAckTracker) remove(id msg.MessageID) {
	t.mu.Lock()
	delete(t.due, id)
	t.mu.Unlock()
}

func (t *negAckTracker) drainDue() {
	now := time.Now()

	t.mu.Lock()
	var ids []msg.MessageID
	for id, when := range t.due {
		if !now.Before(when) {
			ids = append(ids, id)
			delete(t.due, id)
		}
	}
	t.mu.Unlock()

	if len(ids) > 0 {
		t.onDue(ids)
	}
}

// close stops the drain loop. Safe to call more than once.
func (t *negAckTracker) close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()
	close(t.stopc)
}
