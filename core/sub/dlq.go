package sub

import (
	"context"
	"sync"

	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/api"
	"github.com/relaybroker/broker-client-go/pkg/log"
)

// dlqProducer is the narrow surface the dead-letter processor needs
// from a producer -- core/pub.Producer satisfies it.
type dlqProducer interface {
	Send(ctx context.Context, payload []byte) (*api.CommandSendReceipt, error)
}

// deadLetterProcessor buffers messages whose redelivery count has
// crossed the configured threshold and forwards them to a DLQ
// producer, then acks the source message. Constructed disabled
// (MaxRedeliveryCount == 0) when no policy is configured.
type deadLetterProcessor struct {
	mu       sync.Mutex
	buffered map[msg.MessageID]*msg.Message

	policy   DeadLetterPolicy
	producer dlqProducer
	topic    string
	subscription string
}

func newDeadLetterProcessor(policy DeadLetterPolicy, producer dlqProducer, topic, subscription string) *deadLetterProcessor {
	return &deadLetterProcessor{
		buffered:     make(map[msg.MessageID]*msg.Message),
		policy:       policy,
		producer:     producer,
		topic:        topic,
		subscription: subscription,
	}
}

func (d *deadLetterProcessor) enabled() bool {
	return d.policy.MaxRedeliveryCount > 0 && d.producer != nil
}

// shouldDeadLetter reports whether m has exceeded the redelivery
// threshold and should be buffered for forwarding.
func (d *deadLetterProcessor) shouldDeadLetter(m *msg.Message) bool {
	return d.enabled() && m.RedeliveryCount >= d.policy.MaxRedeliveryCount
}

// buffer records m as a dead-letter candidate.
func (d *deadLetterProcessor) buffer(m *msg.Message) {
	if !d.enabled() {
		return
	}
	d.mu.Lock()
	d.buffered[m.ID] = m
	d.mu.Unlock()
}

// processMessages forwards id to the DLQ if buffered and acks the
// source via ackFn, reporting whether id was handled this way.
func (d *deadLetterProcessor) processMessages(ctx context.Context, id msg.MessageID, ackFn func(msg.MessageID) error) bool {
	if !d.enabled() {
		return false
	}

	d.mu.Lock()
	m, ok := d.buffered[id]
	if ok {
		delete(d.buffered, id)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}

	if _, err := d.producer.Send(ctx, m.Payload); err != nil {
		log.Errorf("dlq: failed to forward message %s to %s: %v", id, d.policy.DeadLetterTopic, err)
		return false
	}
	if err := ackFn(id); err != nil {
		log.Errorf("dlq: failed to ack source message %s after dlq forward: %v", id, err)
	}
	log.AuditDeadLettered(d.topic, d.subscription, d.policy.DeadLetterTopic, uint64(id.LedgerID), uint64(id.EntryID), 0)
	return true
}

// clear drops every buffered candidate, used on RedeliverAllUnacknowledged.
func (d *deadLetterProcessor) clear() {
	d.mu.Lock()
	d.buffered = make(map[msg.MessageID]*msg.Message)
	d.mu.Unlock()
}
