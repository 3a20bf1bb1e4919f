package conn

import (
	"sync"

	"github.com/relaybroker/broker-client-go/core/frame"
	"github.com/relaybroker/broker-client-go/pkg/api"
)

// ConsumerRegistry routes unsolicited broker pushes (MESSAGE,
// ACTIVE_CONSUMER_CHANGE, REACHED_END_OF_TOPIC, CLOSE_CONSUMER) to the
// session actor that owns the consumer id they name. Request/response
// traffic (CONNECTED, SUCCESS, ERROR, SEND_RECEIPT, SEND_ERROR,
// GET_LAST_MESSAGE_ID_RESPONSE) doesn't go through here -- it's
// correlated by frame.Dispatcher instead.
type ConsumerRegistry struct {
	mu   sync.RWMutex
	ops  map[uint64]func(frame.Frame)
}

// NewConsumerRegistry returns an empty registry.
func NewConsumerRegistry() *ConsumerRegistry {
	return &ConsumerRegistry{ops: make(map[uint64]func(frame.Frame))}
}

// Register installs handler as the recipient of pushes addressed to
// consumerID, replacing any previous registration.
func (r *ConsumerRegistry) Register(consumerID uint64, handler func(frame.Frame)) {
	r.mu.Lock()
	r.ops[consumerID] = handler
	r.mu.Unlock()
}

// Unregister removes consumerID's handler.
func (r *ConsumerRegistry) Unregister(consumerID uint64) {
	r.mu.Lock()
	delete(r.ops, consumerID)
	r.mu.Unlock()
}

// consumerID extracts the owning consumer id from a pushed frame, if
// the command type carries one.
func consumerID(f frame.Frame) (uint64, bool) {
	cmd := f.BaseCmd
	switch cmd.GetType() {
	case api.BaseCommand_MESSAGE:
		return cmd.Message.GetConsumerId(), true
	case api.BaseCommand_ACTIVE_CONSUMER_CHANGE:
		return cmd.ActiveConsumerChange.GetConsumerId(), true
	case api.BaseCommand_REACHED_END_OF_TOPIC:
		return cmd.ReachedEndOfTopic.GetConsumerId(), true
	case api.BaseCommand_CLOSE_CONSUMER:
		return cmd.CloseConsumer.GetConsumerId(), true
	default:
		return 0, false
	}
}

// Route delivers f to the handler registered for its consumer id, if
// the frame names one and a handler is registered for it. It reports
// whether delivery happened so callers can fall back to
// frame.Dispatcher for everything else.
func (r *ConsumerRegistry) Route(f frame.Frame) bool {
	id, ok := consumerID(f)
	if !ok {
		return false
	}

	r.mu.RLock()
	handler, ok := r.ops[id]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	handler(f)
	return true
}
