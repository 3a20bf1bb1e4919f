package sub

import (
	"context"
	"errors"
	"testing"

	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/api"
)

type fakeDLQProducer struct {
	sent [][]byte
	err  error
}

func (f *fakeDLQProducer) Send(ctx context.Context, payload []byte) (*api.CommandSendReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, payload)
	return &api.CommandSendReceipt{}, nil
}

func TestDeadLetterProcessorDisabledWithoutPolicy(t *testing.T) {
	d := newDeadLetterProcessor(DeadLetterPolicy{}, &fakeDLQProducer{}, "t", "s")
	if d.enabled() {
		t.Error("enabled() should be false with MaxRedeliveryCount 0")
	}
	m := &msg.Message{ID: msg.MessageID{EntryID: 1}, RedeliveryCount: 100}
	if d.shouldDeadLetter(m) {
		t.Error("shouldDeadLetter() should be false when disabled")
	}
}

func TestDeadLetterProcessorDisabledWithNilProducer(t *testing.T) {
	// A nil producer (the literal untyped nil, not a typed-nil pointer
	// boxed into the interface) must keep enabled() false even with a
	// configured policy.
	d := newDeadLetterProcessor(DeadLetterPolicy{MaxRedeliveryCount: 1, DeadLetterTopic: "dlq"}, nil, "t", "s")
	if d.enabled() {
		t.Error("enabled() should be false with a nil producer")
	}
}

func TestDeadLetterProcessorShouldDeadLetterThreshold(t *testing.T) {
	d := newDeadLetterProcessor(DeadLetterPolicy{MaxRedeliveryCount: 3, DeadLetterTopic: "dlq"}, &fakeDLQProducer{}, "t", "s")

	below := &msg.Message{RedeliveryCount: 2}
	at := &msg.Message{RedeliveryCount: 3}
	above := &msg.Message{RedeliveryCount: 4}

	if d.shouldDeadLetter(below) {
		t.Error("shouldDeadLetter() should be false below threshold")
	}
	if !d.shouldDeadLetter(at) {
		t.Error("shouldDeadLetter() should be true at threshold")
	}
	if !d.shouldDeadLetter(above) {
		t.Error("shouldDeadLetter() should be true above threshold")
	}
}

func TestDeadLetterProcessorProcessMessagesForwardsAndAcks(t *testing.T) {
	prod := &fakeDLQProducer{}
	d := newDeadLetterProcessor(DeadLetterPolicy{MaxRedeliveryCount: 1, DeadLetterTopic: "dlq"}, prod, "t", "s")

	id := msg.MessageID{LedgerID: 1, EntryID: 1}
	m := &msg.Message{ID: id, Payload: []byte("payload")}
	d.buffer(m)

	var acked msg.MessageID
	ackCalled := false
	handled := d.processMessages(context.Background(), id, func(i msg.MessageID) error {
		ackCalled = true
		acked = i
		return nil
	})

	if !handled {
		t.Fatal("processMessages() should report handled for a buffered id")
	}
	if len(prod.sent) != 1 || string(prod.sent[0]) != "payload" {
		t.Errorf("sent = %v, want one payload %q", prod.sent, "payload")
	}
	if !ackCalled || acked != id {
		t.Errorf("ackFn called with %v (called=%v), want %v", acked, ackCalled, id)
	}
}

func TestDeadLetterProcessorProcessMessagesUnknownID(t *testing.T) {
	d := newDeadLetterProcessor(DeadLetterPolicy{MaxRedeliveryCount: 1, DeadLetterTopic: "dlq"}, &fakeDLQProducer{}, "t", "s")
	handled := d.processMessages(context.Background(), msg.MessageID{EntryID: 99}, func(msg.MessageID) error { return nil })
	if handled {
		t.Error("processMessages() should report false for an id never buffered")
	}
}

func TestDeadLetterProcessorProcessMessagesSendFailureDoesNotAck(t *testing.T) {
	prod := &fakeDLQProducer{err: errors.New("broker unavailable")}
	d := newDeadLetterProcessor(DeadLetterPolicy{MaxRedeliveryCount: 1, DeadLetterTopic: "dlq"}, prod, "t", "s")

	id := msg.MessageID{LedgerID: 1, EntryID: 2}
	d.buffer(&msg.Message{ID: id, Payload: []byte("x")})

	ackCalled := false
	handled := d.processMessages(context.Background(), id, func(msg.MessageID) error {
		ackCalled = true
		return nil
	})

	if handled {
		t.Error("processMessages() should report false when the DLQ send fails")
	}
	if ackCalled {
		t.Error("ackFn should not be called when the DLQ send fails")
	}
}

func TestDeadLetterProcessorClearDropsBuffered(t *testing.T) {
	d := newDeadLetterProcessor(DeadLetterPolicy{MaxRedeliveryCount: 1, DeadLetterTopic: "dlq"}, &fakeDLQProducer{}, "t", "s")
	id := msg.MessageID{LedgerID: 1, EntryID: 1}
	d.buffer(&msg.Message{ID: id})
	d.clear()

	handled := d.processMessages(context.Background(), id, func(msg.MessageID) error { return nil })
	if handled {
		t.Error("processMessages() should find nothing after clear()")
	}
}
