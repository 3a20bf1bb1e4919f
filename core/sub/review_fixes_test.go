package sub

import (
	"context"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/core/frame"
	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/api"
)

// acceptReqID replies SUCCESS to whatever request id a previously sent
// frame carried -- the same shape acceptSubscribe uses, generalized so
// Seek (and anything else keyed off RegisterReqID) can be driven the
// same way.
func acceptReqID(t *testing.T, ms *frame.MockSender, dsp *frame.Dispatcher, cmdType api.BaseCommand_Type, reqIDOf func(frame.Frame) uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, f := range ms.Frames {
			if f.BaseCmd.GetType() == cmdType {
				reqID := reqIDOf(f)
				dsp.NotifyReqID(reqID, frame.Frame{BaseCmd: &api.BaseCommand{
					Type:    api.BaseCommand_SUCCESS.Enum(),
					Success: &api.CommandSuccess{RequestId: proto.Uint64(reqID)},
				}})
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("frame of type %v was never sent", cmdType)
}

func findFlowPermits(ms *frame.MockSender, permits uint32) bool {
	for _, f := range ms.Frames {
		if f.BaseCmd.GetType() == api.BaseCommand_FLOW && f.BaseCmd.Flow != nil {
			if f.BaseCmd.Flow.MessagePermits != nil && *f.BaseCmd.Flow.MessagePermits == permits {
				return true
			}
		}
	}
	return false
}

// TestHandleMessageReceivedSkipsBatchPriorToStart pins down the
// tail-prefix skip: sub-indices at or before the live start index are
// already-consumed and must not reach the application, but the
// permits they'd otherwise have occupied are still credited back.
func TestHandleMessageReceivedSkipsBatchPriorToStart(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	cfg := testConfig("persistent://public/default/t", "sub-skip")
	cfg.ReceiverQueueSize = 4

	c, err := NewConsumer(10, cfg, 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	start := msg.MessageID{LedgerID: 1, EntryID: 7, Partition: 0, BatchIndex: 2}
	if err := c.do(func() error { c.currentStartMessageID = &start; return nil }); err != nil {
		t.Fatalf("do() error = %v", err)
	}

	entryID := msg.MessageID{LedgerID: 1, EntryID: 7, Partition: 0, BatchIndex: -1}
	payload := append(append(append(
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(2)}, []byte("m0")),
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(2)}, []byte("m1"))...),
		append(encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(2)}, []byte("m2")),
			encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(2)}, []byte("m3"))...)...)

	push := frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type: api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{
				ConsumerId: proto.Uint64(10),
				MessageId:  entryID.ToWire(),
			},
		},
		Metadata: &api.MessageMetadata{
			ProducerName:       proto.String("p"),
			SequenceId:         proto.Uint64(0),
			NumMessagesInBatch: i32(4),
		},
		Payload: payload,
	}
	if !h.reg.Route(push) {
		t.Fatal("registry did not route the MESSAGE frame to the consumer")
	}

	select {
	case m := <-appQueue:
		if m.ID.BatchIndex != 3 {
			t.Fatalf("delivered sub-index = %d, want 3 (only one past the start index)", m.ID.BatchIndex)
		}
		if string(m.Payload) != "m3" {
			t.Errorf("delivered payload = %q, want %q", m.Payload, "m3")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("the one sub-message past the start index was never delivered")
	}

	select {
	case m := <-appQueue:
		t.Fatalf("unexpected extra delivery: %v", m.ID)
	case <-time.After(100 * time.Millisecond):
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if findFlowPermits(h.ms, 3) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no FLOW frame credited the 3 permits for the skipped sub-messages")
}

// TestSeekDuringSeekWinsOverQueuedMessages pins down rule 2 of
// resumePoint's priority order: a pending seek outranks whatever
// happens to already be sitting in the receiver queue.
func TestSeekDuringSeekWinsOverQueuedMessages(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	c, err := NewConsumer(11, testConfig("persistent://public/default/t", "sub-seek"), 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	target := msg.MessageID{LedgerID: 9, EntryID: 9, Partition: 0, BatchIndex: -1}

	seekDone := make(chan error, 1)
	go func() { seekDone <- c.Seek(context.Background(), target) }()
	acceptReqID(t, h.ms, h.dsp, api.BaseCommand_SEEK, func(f frame.Frame) uint64 { return *f.BaseCmd.Seek.RequestId })
	if err := <-seekDone; err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	var duringSeek *msg.MessageID
	var hasDequeued bool
	_ = c.do(func() error {
		duringSeek = c.duringSeek
		hasDequeued = c.hasDequeued
		return nil
	})
	if duringSeek == nil || *duringSeek != target {
		t.Fatalf("c.duringSeek = %v, want %v", duringSeek, target)
	}
	if hasDequeued {
		t.Fatal("c.hasDequeued should be false right after a seek")
	}

	otherHead := &msg.Message{ID: msg.MessageID{LedgerID: 1, EntryID: 1, Partition: 0, BatchIndex: -1}, Payload: []byte("stale")}
	_ = c.do(func() error { c.queue.Push(otherHead); return nil })

	var resume msg.MessageID
	var ok bool
	var queueLenAfter int
	_ = c.do(func() error {
		resume, ok = c.resumePoint()
		queueLenAfter = c.queue.Len()
		return nil
	})
	if !ok || resume != target {
		t.Fatalf("resumePoint() = (%v, %v), want (%v, true)", resume, ok, target)
	}
	if queueLenAfter != 0 {
		t.Errorf("queue.Len() after resumePoint = %d, want 0", queueLenAfter)
	}

	_ = c.do(func() error {
		if c.duringSeek != nil {
			t.Error("duringSeek should be cleared once resumePoint has consumed it")
		}
		return nil
	})
}

// TestReceiveFastPathDeliversWaitingCaller exercises the Receive
// waiter discipline: a call already parked waits for the next message
// instead of going through the receiver queue / appQueue at all.
func TestReceiveFastPathDeliversWaitingCaller(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	c, err := NewConsumer(12, testConfig("persistent://public/default/t", "sub-recv"), 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	type result struct {
		m   msg.Message
		err error
	}
	resultc := make(chan result, 1)
	go func() {
		m, err := c.Receive(context.Background())
		resultc <- result{m, err}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var n int
		_ = c.do(func() error { n = len(c.waiters); return nil })
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	id := msg.MessageID{LedgerID: 2, EntryID: 2, Partition: 0, BatchIndex: -1}
	push := frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type:    api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{ConsumerId: proto.Uint64(12), MessageId: id.ToWire()},
		},
		Metadata: &api.MessageMetadata{ProducerName: proto.String("p"), SequenceId: proto.Uint64(0)},
		Payload:  []byte("direct"),
	}
	h.reg.Route(push)

	select {
	case r := <-resultc:
		if r.err != nil {
			t.Fatalf("Receive() error = %v", r.err)
		}
		if string(r.m.Payload) != "direct" {
			t.Errorf("Receive() payload = %q, want %q", r.m.Payload, "direct")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive() never returned the fast-pathed message")
	}

	select {
	case m := <-appQueue:
		t.Fatalf("message should have bypassed appQueue, got %v", m.ID)
	default:
	}
}

// TestBatchReceiveCompletesOnThreshold and the timeout variant below
// cover both ways a pending BatchReceive can resolve.
func TestBatchReceiveCompletesOnThreshold(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	cfg := testConfig("persistent://public/default/t", "sub-batch")
	cfg.BatchReceivePolicy = BatchReceivePolicy{MaxNumMessages: 2}

	c, err := NewConsumer(13, cfg, 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	resultc := make(chan []msg.Message, 1)
	go func() {
		m, err := c.BatchReceive(context.Background())
		if err != nil {
			t.Errorf("BatchReceive() error = %v", err)
		}
		resultc <- m
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var n int
		_ = c.do(func() error { n = len(c.batchWaiters); return nil })
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	for i, payload := range []string{"one", "two"} {
		id := msg.MessageID{LedgerID: 3, EntryID: int64(i), Partition: 0, BatchIndex: -1}
		h.reg.Route(frame.Frame{
			BaseCmd: &api.BaseCommand{
				Type:    api.BaseCommand_MESSAGE.Enum(),
				Message: &api.CommandMessage{ConsumerId: proto.Uint64(13), MessageId: id.ToWire()},
			},
			Metadata: &api.MessageMetadata{ProducerName: proto.String("p"), SequenceId: proto.Uint64(uint64(i))},
			Payload:  []byte(payload),
		})
	}

	select {
	case batch := <-resultc:
		if len(batch) != 2 {
			t.Fatalf("BatchReceive() returned %d messages, want 2", len(batch))
		}
		if string(batch[0].Payload) != "one" || string(batch[1].Payload) != "two" {
			t.Errorf("BatchReceive() payloads = %q, %q, want %q, %q", batch[0].Payload, batch[1].Payload, "one", "two")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("BatchReceive() never completed once its threshold was met")
	}
}

func TestBatchReceiveCompletesOnTimeout(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	cfg := testConfig("persistent://public/default/t", "sub-batch-timeout")
	cfg.BatchReceivePolicy = BatchReceivePolicy{MaxNumMessages: 100, Timeout: 30 * time.Millisecond}

	c, err := NewConsumer(14, cfg, 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	resultc := make(chan []msg.Message, 1)
	go func() {
		m, err := c.BatchReceive(context.Background())
		if err != nil {
			t.Errorf("BatchReceive() error = %v", err)
		}
		resultc <- m
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var n int
		_ = c.do(func() error { n = len(c.batchWaiters); return nil })
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	id := msg.MessageID{LedgerID: 4, EntryID: 1, Partition: 0, BatchIndex: -1}
	h.reg.Route(frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type:    api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{ConsumerId: proto.Uint64(14), MessageId: id.ToWire()},
		},
		Metadata: &api.MessageMetadata{ProducerName: proto.String("p"), SequenceId: proto.Uint64(0)},
		Payload:  []byte("lonely"),
	})

	select {
	case batch := <-resultc:
		if len(batch) != 1 || string(batch[0].Payload) != "lonely" {
			t.Fatalf("BatchReceive() = %v, want a single lonely message once the timeout fired", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("BatchReceive() never returned once its timeout elapsed")
	}
}

// TestRedeliverIDsPurgesQueueAndDefersToDLQ covers both halves of the
// redeliverIDs fix: ids still sitting in the receiver queue are purged
// (and their permits credited) and still asked for redelivery, and ids
// already buffered for dead-lettering are forwarded and acked
// instead of being asked for redelivery at all.
func TestRedeliverIDsPurgesQueueAndDefersToDLQ(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	cfg := testConfig("persistent://public/default/t", "sub-redeliver")
	cfg.ReceiverQueueSize = 4
	cfg.DeadLetter = DeadLetterPolicy{MaxRedeliveryCount: 1, DeadLetterTopic: "t-dlq"}
	dlqProd := &fakeDLQProducer{}

	c, err := NewConsumer(15, cfg, 0, appQueue, h.dial, nil, dlqProd, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	queuedID := msg.MessageID{LedgerID: 1, EntryID: 1, Partition: 0, BatchIndex: -1}
	dlqID := msg.MessageID{LedgerID: 1, EntryID: 2, Partition: 0, BatchIndex: -1}
	plainID := msg.MessageID{LedgerID: 1, EntryID: 3, Partition: 0, BatchIndex: -1}

	_ = c.do(func() error {
		c.queue.Push(&msg.Message{ID: queuedID, Payload: []byte("queued")})
		c.dlq.buffer(&msg.Message{ID: dlqID, Payload: []byte("dlq-me")})
		return nil
	})

	redeliverErr := c.do(func() error {
		return c.redeliverIDs([]msg.MessageID{queuedID, dlqID, plainID})
	})
	if redeliverErr != nil {
		t.Fatalf("redeliverIDs() error = %v", redeliverErr)
	}

	if len(dlqProd.sent) != 1 || string(dlqProd.sent[0]) != "dlq-me" {
		t.Fatalf("dlq producer got %v, want exactly one forward of %q", dlqProd.sent, "dlq-me")
	}

	var queueLen int
	_ = c.do(func() error { queueLen = c.queue.Len(); return nil })
	if queueLen != 0 {
		t.Errorf("queue.Len() after redeliverIDs = %d, want 0 (queuedID should have been purged)", queueLen)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, f := range h.ms.Frames {
			if f.BaseCmd.GetType() == api.BaseCommand_REDELIVER_UNACKNOWLEDGED_MESSAGES {
				ids := f.BaseCmd.RedeliverUnacknowledgedMessages.MessageIds
				// queuedID is purged from the local queue (so the stale
				// buffered copy never reaches the application) but the
				// broker is still asked to redeliver it; only dlqID,
				// handled entirely by the DLQ forward, drops off the wire.
				if len(ids) != 2 {
					t.Fatalf("redeliver frame carried %d ids, want exactly 2 (queuedID and plainID)", len(ids))
				}
				got := map[msg.MessageID]bool{}
				for _, wire := range ids {
					got[msg.FromWire(wire, 0)] = true
				}
				if !got[queuedID] || !got[plainID] || got[dlqID] {
					t.Errorf("redelivered ids = %v, want {%v, %v} without %v", got, queuedID, plainID, dlqID)
				}
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("redeliver_unacknowledged_messages frame was never sent")
}

// TestAckCumulativeAcksPreviousBatchEntry covers the §4.6 fallthrough:
// a cumulative ack partway through one batched entry must also
// cumulatively ack everything through the previous entry's last
// sub-message, exactly once.
func TestAckCumulativeAcksPreviousBatchEntry(t *testing.T) {
	h := newSubscribeHarness()
	appQueue := make(chan msg.Message, 10)
	c, err := NewConsumer(16, testConfig("persistent://public/default/t", "sub-prevbatch"), 0, appQueue, h.dial, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	defer c.Close(context.Background())

	subFrame, _ := waitForSubscribe(t, h.ms)
	acceptSubscribe(t, h.dsp, subFrame.BaseCmd.GetSubscribe())

	firstEntry := msg.MessageID{LedgerID: 1, EntryID: 5, Partition: 0, BatchIndex: -1}
	firstPayload := append(
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(1)}, []byte("a")),
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(1)}, []byte("b"))...)
	h.reg.Route(frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type:    api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{ConsumerId: proto.Uint64(16), MessageId: firstEntry.ToWire()},
		},
		Metadata: &api.MessageMetadata{ProducerName: proto.String("p"), SequenceId: proto.Uint64(0), NumMessagesInBatch: i32(2)},
		Payload:  firstPayload,
	})

	secondEntry := msg.MessageID{LedgerID: 1, EntryID: 6, Partition: 0, BatchIndex: -1}
	secondPayload := append(append(
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(1)}, []byte("c")),
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(1)}, []byte("d"))...),
		encodeSingleMessage(t, &api.SingleMessageMetadata{PayloadSize: i32(1)}, []byte("e"))...)
	h.reg.Route(frame.Frame{
		BaseCmd: &api.BaseCommand{
			Type:    api.BaseCommand_MESSAGE.Enum(),
			Message: &api.CommandMessage{ConsumerId: proto.Uint64(16), MessageId: secondEntry.ToWire()},
		},
		Metadata: &api.MessageMetadata{ProducerName: proto.String("p"), SequenceId: proto.Uint64(1), NumMessagesInBatch: i32(3)},
		Payload:  secondPayload,
	})

	var drained []msg.Message
	for len(drained) < 5 {
		select {
		case m := <-appQueue:
			drained = append(drained, m)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 5 sub-messages were delivered", len(drained))
		}
	}

	var target msg.Message
	for _, m := range drained {
		if m.ID == (msg.MessageID{LedgerID: 1, EntryID: 6, Partition: 0, BatchIndex: 1}) {
			target = m
		}
	}
	if target.Acker == nil {
		t.Fatal("second entry's sub-index 1 was never found among delivered messages")
	}

	if err := c.AckCumulative(target); err != nil {
		t.Fatalf("AckCumulative() error = %v", err)
	}

	wantPrev := msg.MessageID{LedgerID: 1, EntryID: 5, Partition: 0, BatchIndex: 1}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, f := range h.ms.Frames {
			if f.BaseCmd.GetType() == api.BaseCommand_ACK && f.BaseCmd.Ack.AckType != nil && *f.BaseCmd.Ack.AckType == api.CommandAck_Cumulative {
				for _, wire := range f.BaseCmd.Ack.MessageId {
					got := msg.FromWire(wire, 0)
					if got == wantPrev {
						return
					}
				}
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no cumulative ACK for the first entry's last sub-message (%v) was ever sent", wantPrev)
}
