package sub

import (
	"context"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/core/conn"
	"github.com/relaybroker/broker-client-go/core/frame"
	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/api"
)

// subscribeHarness dials exactly one ConnHandle and hands back the pieces
// a test needs to drive the subscribe handshake and push traffic by hand.
type subscribeHarness struct {
	ms  *frame.MockSender
	dsp *frame.Dispatcher
	reg *conn.ConsumerRegistry
}

func newSubscribeHarness() *subscribeHarness {
	return &subscribeHarness{
		ms:  &frame.MockSender{},
		dsp: frame.NewFrameDispatcher(),
		reg: conn.NewConsumerRegistry(),
	}
}

func (h *subscribeHarness) dial(ctx context.Context) (ConnHandle, error) {
	return ConnHandle{Cnx: h.ms, Dispatcher: h.dsp, Registry: h.reg}, nil
}

// waitForSubscribe blocks until the consumer has sent a SUBSCRIBE frame and
// returns it, failing the test if none arrives in time.
func waitForSubscribe(t *testing.T, ms *frame.MockSender) (frame.Frame, int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for i, f := range ms.Frames {
			if f.BaseCmd.GetType() == api.BaseCommand_SUBSCRIBE {
				return f, i
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("SUBSCRIBE frame was never sent")
	return frame.Frame{}, -1
}

func testConfig(topic, sub string) Config {
	return Config{
		Topic:             topic,
		Subscription:      sub,
		ConsumerName:      "test-consumer",
		SubType:           Exclusive,
		InitialPosition:   Earliest,
		Durable:           true,
		ReceiverQueueSize: 10,
		SubscribeTimeout:  2 * time.Second,
		OperationTimeout:  2 * time.Second,
	}
}

// acceptSubscribe completes the handshake begun by onConnectionOpened by
// replying SUCCESS to the request id the SUBSCRIBE frame carried.
func acceptSubscribe(t *testing.T, dsp *frame.Dispatcher, sub *api.CommandSubscribe) {
	t.Helper()
	reqID := *sub.RequestId
	f := frame.Frame{BaseCmd: &api.BaseCommand{
		Type:    api.BaseCommand_SUCCESS.Enum(),
		Success: &api.CommandSuccess{RequestId: proto.Uint64(reqID)},
	}}
	if err := dsp.NotifyReqID(reqID, f); err != nil {
		t.Fatalf("NotifyReqID(%d) error = %v", reqID, err)
	}
}

func TestConsumerSubscribeHandshakeSendsSubscribeAndBecomesReady(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)

	c, err := NewConsumer(1, testConfig("persistent://public/default/t", "sub-a"), 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	sub := subFrame.BaseCmd.GetSubscribe()
	if *sub.Topic != "persistent://public/default/t" {
		t.Errorf("Subscribe.Topic = %q, want the configured topic", *sub.Topic)
	}
	if *sub.ConsumerId != 1 {
		t.Errorf("Subscribe.ConsumerId = %d, want 1", *sub.ConsumerId)
	}
	if *sub.SubType != api.CommandSubscribe_Exclusive {
		t.Errorf("Subscribe.SubType = %v, want Exclusive", *sub.SubType)
	}

	acceptSubscribe(t, h.dsp, sub)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var ready bool
		_ = c.do(func() error { ready = c.state == StateReady; return nil })
		if ready {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("consumer never reached StateReady after SUCCESS")
}

func TestConsumerDeliversPushedMessageAndAcks(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)

	c, err := NewConsumer(2, testConfig("persistent://public/default/t", "sub-b"), 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	wantID := msg.MessageID{LedgerID: 5, EntryID: 7, Partition: 0, BatchIndex: -1}
	push := frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type: api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{
				ConsumerId: proto.Uint64(2),
				MessageId:  wantID.ToWire(),
			},
		},
		Metadata: &api.MessageMetadata{
			ProducerName: proto.String("p"),
			SequenceId:   proto.Uint64(0),
			PublishTime:  proto.Uint64(0),
		},
		Payload: []byte("hello"),
	}
	if !h.reg.Route(push) {
		t.Fatal("registry did not route the MESSAGE frame to the consumer")
	}

	select {
	case m := <-appQueue:
		if string(m.Payload) != "hello" {
			t.Errorf("delivered payload = %q, want %q", m.Payload, "hello")
		}
		if m.ID != wantID {
			t.Errorf("delivered id = %v, want %v", m.ID, wantID)
		}
		if err := c.Ack(m); err != nil {
			t.Fatalf("Ack() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message was never delivered to appQueue")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, f := range h.ms.Frames {
			if f.BaseCmd.GetType() == api.BaseCommand_ACK {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("ACK frame was never sent after Ack()")
}

func TestConsumerNackSchedulesRedelivery(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	cfg := testConfig("persistent://public/default/t", "sub-c")
	cfg.NegativeAckRedeliveryDelay = 20 * time.Millisecond

	c, err := NewConsumer(3, cfg, 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	id := msg.MessageID{LedgerID: 1, EntryID: 1, Partition: 0, BatchIndex: -1}
	push := frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type:    api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{ConsumerId: proto.Uint64(3), MessageId: id.ToWire()},
		},
		Metadata: &api.MessageMetadata{ProducerName: proto.String("p"), SequenceId: proto.Uint64(0)},
		Payload:  []byte("x"),
	}
	h.reg.Route(push)

	var m msg.Message
	select {
	case m = <-appQueue:
	case <-time.After(2 * time.Second):
		t.Fatal("message was never delivered to appQueue")
	}

	if err := c.Nack(m); err != nil {
		t.Fatalf("Nack() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, f := range h.ms.Frames {
			if f.BaseCmd.GetType() == api.BaseCommand_REDELIVER_UNACKNOWLEDGED_MESSAGES {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("redeliver_unacknowledged_messages was never sent after the nack delay elapsed")
}

func TestConsumerRejectsNonDurableWithoutStartPoint(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 1)
	cfg := testConfig("t", "s")
	cfg.Durable = false
	cfg.InitialPosition = Latest

	if _, err := NewConsumer(4, cfg, 0, appQueue, h.dial, nil, nil, nil, nil); err == nil {
		t.Fatal("NewConsumer() should reject a non-durable subscription with no start point")
	}
}
