package frame

import (
	"fmt"
	"sync"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// Dispatcher correlates broker responses with the request that triggered
// them. Requests are registered under either a request id (most commands),
// a (producerId, sequenceId) pair (SEND_RECEIPT/SEND_ERROR, which carry no
// request id), or the single "global" slot used for CONNECTED (which has
// no correlating id at all).
//
// It does not own a connection or a read loop; callers feed it frames via
// Dispatch as they're read off the wire, and register before sending the
// triggering request so there's no race between send and reply.
type Dispatcher struct {
	mu       sync.Mutex
	byReqID  map[uint64]chan Frame
	byProdSeq map[prodSeqKey]chan Frame
	global   chan Frame
}

type prodSeqKey struct {
	producerID uint64
	sequenceID uint64
}

// NewFrameDispatcher returns a ready-to-use Dispatcher.
func NewFrameDispatcher() *Dispatcher {
	return &Dispatcher{
		byReqID:   make(map[uint64]chan Frame),
		byProdSeq: make(map[prodSeqKey]chan Frame),
	}
}

// RegisterReqID reserves a reply slot for the given request id. The
// returned cancel func must be called once the caller is done waiting,
// whether or not a reply arrived, to release the slot.
func (d *Dispatcher) RegisterReqID(id uint64) (<-chan Frame, func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byReqID[id]; ok {
		return nil, nil, fmt.Errorf("request id %d already registered", id)
	}

	ch := make(chan Frame, 1)
	d.byReqID[id] = ch

	cancel := func() {
		d.mu.Lock()
		delete(d.byReqID, id)
		d.mu.Unlock()
	}
	return ch, cancel, nil
}

// RegisterProdSeqIDs reserves a reply slot for a (producerId, sequenceId)
// pair, used for SEND responses which carry no request id.
func (d *Dispatcher) RegisterProdSeqIDs(producerID, sequenceID uint64) (<-chan Frame, func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := prodSeqKey{producerID, sequenceID}
	if _, ok := d.byProdSeq[key]; ok {
		return nil, nil, fmt.Errorf("producer %d sequence %d already registered", producerID, sequenceID)
	}

	ch := make(chan Frame, 1)
	d.byProdSeq[key] = ch

	cancel := func() {
		d.mu.Lock()
		delete(d.byProdSeq, key)
		d.mu.Unlock()
	}
	return ch, cancel, nil
}

// RegisterGlobal reserves the single slot used for replies with no
// correlating id at all (CONNECTED).
func (d *Dispatcher) RegisterGlobal() (<-chan Frame, func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.global != nil {
		return nil, nil, fmt.Errorf("global slot already registered")
	}

	ch := make(chan Frame, 1)
	d.global = ch

	cancel := func() {
		d.mu.Lock()
		if d.global == ch {
			d.global = nil
		}
		d.mu.Unlock()
	}
	return ch, cancel, nil
}

// NotifyReqID delivers f to the waiter registered under id, if any.
func (d *Dispatcher) NotifyReqID(id uint64, f Frame) error {
	d.mu.Lock()
	ch, ok := d.byReqID[id]
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending request for id %d", id)
	}

	select {
	case ch <- f:
	default:
	}
	return nil
}

// NotifyProdSeqIDs delivers f to the waiter registered for (producerId,
// sequenceId), if any.
func (d *Dispatcher) NotifyProdSeqIDs(producerID, sequenceID uint64, f Frame) error {
	d.mu.Lock()
	key := prodSeqKey{producerID, sequenceID}
	ch, ok := d.byProdSeq[key]
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending request for producer %d sequence %d", producerID, sequenceID)
	}

	select {
	case ch <- f:
	default:
	}
	return nil
}

// NotifyGlobal delivers f to the global waiter, if registered.
func (d *Dispatcher) NotifyGlobal(f Frame) error {
	d.mu.Lock()
	ch := d.global
	d.mu.Unlock()

	if ch == nil {
		return fmt.Errorf("no pending global request")
	}

	select {
	case ch <- f:
	default:
	}
	return nil
}

// Dispatch routes an incoming frame to whichever waiter its command type
// correlates to. Frames that aren't request/response replies (MESSAGE,
// PING, ACTIVE_CONSUMER_CHANGE, REACHED_END_OF_TOPIC, ...) are the caller's
// responsibility to route elsewhere; Dispatch only handles the req-id /
// prod-seq / global correlated commands.
func (d *Dispatcher) Dispatch(f Frame) {
	cmd := f.BaseCmd
	switch cmd.GetType() {
	case api.BaseCommand_CONNECTED:
		_ = d.NotifyGlobal(f)
	case api.BaseCommand_SUCCESS:
		_ = d.NotifyReqID(cmd.GetSuccess().GetRequestId(), f)
	case api.BaseCommand_ERROR:
		_ = d.NotifyReqID(cmd.GetError().GetRequestId(), f)
	case api.BaseCommand_SEND_RECEIPT:
		sr := cmd.SendReceipt
		_ = d.NotifyProdSeqIDs(sr.GetProducerId(), sr.GetSequenceId(), f)
	case api.BaseCommand_SEND_ERROR:
		se := cmd.SendError
		_ = d.NotifyProdSeqIDs(se.GetProducerId(), se.GetSequenceId(), f)
	case api.BaseCommand_GET_LAST_MESSAGE_ID_RESPONSE:
		_ = d.NotifyReqID(cmd.GetLastMessageIdResponse.GetRequestId(), f)
	}
}
