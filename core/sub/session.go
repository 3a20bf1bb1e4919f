package sub

import (
	"context"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/core/conn"
	"github.com/relaybroker/broker-client-go/core/frame"
	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/internal/compression"
	"github.com/relaybroker/broker-client-go/pkg/api"
	"github.com/relaybroker/broker-client-go/pkg/log"
)

// ConnectionState is the session actor's top-level state.
type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateReady
	StateReconnecting
	StateClosing
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateReady:
		return "Ready"
	case StateReconnecting:
		return "Reconnecting"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// ConnHandle bundles what the session needs from one live connection: a
// place to push frames, the request/response correlator, and the push
// router to register this consumer's id on. core/manage builds a fresh
// one every time Dialer reconnects.
type ConnHandle struct {
	Cnx        frame.CmdSender
	Dispatcher *frame.Dispatcher
	Registry   *conn.ConsumerRegistry
}

// Dialer establishes (or re-establishes) the connection a session rides
// on -- dial, CONNECT handshake, topic lookup, all of it. core/manage
// owns what this actually does; the session only calls it.
type Dialer func(ctx context.Context) (ConnHandle, error)

// run is the single-writer command loop: every exported method and every
// asynchronous callback (tracker timeouts, pushed frames) funnels through
// c.cmds so state -- c.cnx, c.state, c.queue, and friends -- is only ever
// touched from this goroutine.
func (c *Consumer) run() {
	go c.reconnectLoop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case fn := <-c.cmds:
			fn()
		case <-ticker.C:
		case <-c.closedc:
			return
		}
		c.drainToApp()
	}
}

// reconnectLoop dials, subscribes, and waits for the connection to die,
// over and over, applying c.backoff between attempts. It gives up --
// closing connClosedc -- once c.backoff's mandatory-stop triggers,
// handing control back to whatever owns this Consumer (core/manage's
// ManagedConsumer, which will build a brand new Consumer from scratch via
// a fresh topic lookup).
func (c *Consumer) reconnectLoop() {
	for {
		select {
		case <-c.closedc:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SubscribeTimeout)
		handle, err := c.dial(ctx)
		cancel()
		if err != nil {
			c.asyncErrs.Send(err)
			if !c.waitBackoff() {
				return
			}
			continue
		}

		done := make(chan error, 1)
		select {
		case c.cmds <- func() { done <- c.onConnectionOpened(handle) }:
		case <-c.closedc:
			return
		}

		if err := <-done; err != nil {
			c.asyncErrs.Send(err)
			if !c.waitBackoff() {
				return
			}
			continue
		}
		c.backoff.Reset()

		select {
		case <-handle.Cnx.Closed():
			closedDone := make(chan struct{})
			select {
			case c.cmds <- func() { c.onConnectionClosed(); close(closedDone) }:
				<-closedDone
			case <-c.closedc:
				return
			}
			continue
		case <-c.closedc:
			return
		}
	}
}

func (c *Consumer) waitBackoff() bool {
	delay, ok := c.backoff.Next()
	if !ok {
		c.giveUp()
		return false
	}
	select {
	case <-time.After(delay):
		return true
	case <-c.closedc:
		return false
	}
}

func (c *Consumer) giveUp() {
	c.connClosedOnce.Do(func() { close(c.connClosedc) })
}

// onConnectionOpened runs the subscribe handshake on a freshly dialed
// connection. It's only ever invoked from the actor goroutine.
func (c *Consumer) onConnectionOpened(handle ConnHandle) error {
	c.cnx = handle
	c.state = StateConnecting
	handle.Registry.Register(c.ConsumerID, c.handlePush)

	reqID := c.reqID.Next()
	sub := &api.CommandSubscribe{
		Topic:                      proto.String(c.cfg.Topic),
		Subscription:               proto.String(c.cfg.Subscription),
		SubType:                    c.cfg.SubType.wire().Enum(),
		ConsumerId:                 proto.Uint64(c.ConsumerID),
		RequestId:                  reqID,
		ConsumerName:               proto.String(c.cfg.ConsumerName),
		PriorityLevel:              proto.Int32(c.cfg.PriorityLevel),
		Durable:                    proto.Bool(c.cfg.Durable),
		ReadCompacted:              proto.Bool(c.cfg.ReadCompacted),
		InitialPosition:            c.cfg.InitialPosition.wire().Enum(),
		ReplicateSubscriptionState: proto.Bool(c.cfg.ReplicateSubscriptionState),
	}
	if resume, ok := c.resumePoint(); ok {
		sub.StartMessageId = resume.ToWire()
		c.currentStartMessageID = &resume
	}

	resp, cancel, err := handle.Dispatcher.RegisterReqID(*reqID)
	if err != nil {
		return err
	}
	defer cancel()

	if err := handle.Cnx.SendSimpleCmd(api.BaseCommand{
		Type:      api.BaseCommand_SUBSCRIBE.Enum(),
		Subscribe: sub,
	}); err != nil {
		return err
	}

	select {
	case f := <-resp:
		if f.BaseCmd.GetType() == api.BaseCommand_ERROR {
			e := f.BaseCmd.GetError()
			return NewBrokerError(e.GetError().String(), e.GetMessage())
		}
	case <-time.After(c.cfg.SubscribeTimeout):
		return ErrSubscribeTimeout
	}

	c.state = StateReady
	c.flow.resetFull()

	if !c.everConnected && c.cfg.InitialPosition == Latest && c.cfg.StartMessageIDInclusive {
		c.bootstrapLatest(handle)
	}
	c.everConnected = true

	log.Infof("consumer %d subscribed to %s (%s)", c.ConsumerID, c.cfg.Topic, c.cfg.Subscription)
	return nil
}

// bootstrapLatest fetches the topic's current last message id and
// records it as the last dequeued id, so a later non-durable resume
// starts just after it. It sends no Seek: the live subscription keeps
// the position the broker gave it. Best-effort: failures are logged,
// not fatal to the subscribe that already succeeded.
func (c *Consumer) bootstrapLatest(handle ConnHandle) {
	reqID := c.reqID.Next()
	resp, cancel, err := handle.Dispatcher.RegisterReqID(*reqID)
	if err != nil {
		return
	}
	defer cancel()

	if err := handle.Cnx.SendSimpleCmd(api.BaseCommand{
		Type: api.BaseCommand_GET_LAST_MESSAGE_ID.Enum(),
		GetLastMessageId: &api.CommandGetLastMessageId{
			ConsumerId: proto.Uint64(c.ConsumerID),
			RequestId:  reqID,
		},
	}); err != nil {
		log.Warnf("consumer %d: latest bootstrap GetLastMessageId failed: %v", c.ConsumerID, err)
		return
	}

	select {
	case f := <-resp:
		last := msg.FromWire(f.BaseCmd.GetLastMessageIdResponse.GetLastMessageId(), c.partition)
		c.lastDequeued = last
		c.hasDequeued = true
	case <-time.After(c.cfg.OperationTimeout):
		log.Warnf("consumer %d: latest bootstrap GetLastMessageId timed out", c.ConsumerID)
	}
}

// onConnectionClosed reacts to the current connection dying. It doesn't
// itself reconnect -- reconnectLoop does that -- it just resets the
// state that must not survive a torn-down connection.
func (c *Consumer) onConnectionClosed() {
	if c.state == StateClosing || c.state == StateClosed {
		return
	}
	c.state = StateReconnecting
	log.Warnf("consumer %d: connection lost, reconnecting", c.ConsumerID)
}

// resumePoint computes the message id Subscribe should start from after a
// (re)connect, per the clear_receiver_queue algorithm, in order:
//
//  1. Whatever's sitting in the receiver queue hasn't been handed to the
//     application; its head's predecessor is remembered and the queue is
//     always discarded, regardless of which rule below ends up winning.
//  2. A pending seek wins over everything else -- it's the most recent
//     expression of where the application wants to read from.
//  3. A durable subscription lets the broker own the cursor: no explicit
//     start id is sent unless one was configured.
//  4. Otherwise (non-durable), the remembered head predecessor from (1).
//  5. Otherwise, the last id actually delivered to the application --
//     Subscribe's start id is exclusive, so the broker resumes just after
//     it.
//  6. Otherwise, the subscription's start id as configured.
func (c *Consumer) resumePoint() (msg.MessageID, bool) {
	var headPredecessor msg.MessageID
	hasHeadPredecessor := false
	if head, ok := c.queue.Peek(); ok {
		headPredecessor = msg.PreviousMessageID(head.ID, head.IsBatched(), -1)
		hasHeadPredecessor = true
	}
	c.queue.Clear()

	if c.duringSeek != nil {
		resume := *c.duringSeek
		c.duringSeek = nil
		return resume, true
	}

	if c.cfg.Durable {
		return c.configuredStartMessageID()
	}

	if hasHeadPredecessor {
		return headPredecessor, true
	}
	if c.hasDequeued {
		return c.lastDequeued, true
	}
	return c.configuredStartMessageID()
}

// configuredStartMessageID returns the subscription's live start
// position, falling back to the frozen config value the first time a
// session ever connects.
func (c *Consumer) configuredStartMessageID() (msg.MessageID, bool) {
	if c.currentStartMessageID != nil {
		return *c.currentStartMessageID, true
	}
	if c.cfg.StartMessageID != nil {
		return *c.cfg.StartMessageID, true
	}
	return msg.MessageID{}, false
}

// drainToApp forwards as much of the receiver queue as the application's
// channel has room for, without blocking the actor loop. What doesn't fit
// stays buffered in c.queue -- this is the split between the broker-facing
// receiver queue and the application-facing delivery channel the
// reference actor keeps between queueCh and messageCh.
func (c *Consumer) drainToApp() {
	for {
		m, ok := c.queue.Peek()
		if !ok {
			break
		}
		select {
		case c.appQueue <- *m:
			c.queue.Pop()
			c.lastDequeued = m.ID
			c.lastDequeuedIsBatch = m.IsBatched()
			c.hasDequeued = true
		default:
			c.stats.setPrefetched(c.queue.Len())
			return
		}
	}
	c.stats.setPrefetched(c.queue.Len())
}

// handlePush is registered with the connection's ConsumerRegistry and
// called from the Conn's read goroutine. It only ever hands the frame off
// to the actor loop -- it never touches session state directly.
func (c *Consumer) handlePush(f frame.Frame) {
	select {
	case c.cmds <- func() { c.onPush(f) }:
	case <-c.closedc:
	}
}

func (c *Consumer) onPush(f frame.Frame) {
	switch f.BaseCmd.GetType() {
	case api.BaseCommand_MESSAGE:
		c.handleMessageReceived(f)
	case api.BaseCommand_ACTIVE_CONSUMER_CHANGE:
		c.Unactive = !f.BaseCmd.GetActiveConsumerChange().GetIsActive()
	case api.BaseCommand_REACHED_END_OF_TOPIC:
		c.reachedEndOnce.Do(func() { close(c.reachedEndc) })
	case api.BaseCommand_CLOSE_CONSUMER:
		log.Warnf("consumer %d: broker requested close_consumer", c.ConsumerID)
	}
}

// handleMessageReceived decodes one MESSAGE frame -- single-entry or
// batched -- filters duplicates and the tail-prefix of whatever entry
// the subscription just resumed from (crediting a permit for each
// dropped sub-message), and delivers whatever's left.
func (c *Consumer) handleMessageReceived(f frame.Frame) {
	cmd := f.BaseCmd.GetMessage()
	md := f.Metadata
	id := msg.FromWire(cmd.GetMessageId(), c.partition)
	redeliveryCount := cmd.GetRedeliveryCount()

	if c.ackTrack.IsDuplicate(id) {
		return
	}

	payload, err := c.compressor.Decompress(md.GetCompression(), f.Payload, int(md.GetUncompressedSize()))
	if err != nil {
		log.Errorf("consumer %d: dropping corrupt message %s: %v", c.ConsumerID, id, err)
		c.stats.receiveFailed()
		return
	}

	numMessages := md.GetNumMessagesInBatch()
	if numMessages <= 1 {
		if start := c.currentStartMessageID; start != nil && isPriorToStart(id, *start, c.cfg.ResetIncludeHead) {
			c.flow.increase(1)
			return
		}
		m := &msg.Message{
			Topic:           c.cfg.Topic,
			ID:              id,
			Payload:         payload,
			Key:             md.GetPartitionKey(),
			Properties:      kvToMap(md.GetProperties()),
			SchemaVersion:   md.SchemaVersion,
			SequenceID:      md.GetSequenceId(),
			PublishTime:     millisToTime(md.GetPublishTime()),
			EventTime:       millisToTime(md.GetEventTime()),
			RedeliveryCount: redeliveryCount,
		}
		m.SetDecoder(c.decodeFn)
		c.deliverOrDeadLetter(m)
		return
	}

	entries, err := decodeBatch(payload, numMessages)
	if err != nil {
		log.Errorf("consumer %d: dropping corrupt batch %s: %v", c.ConsumerID, id, err)
		c.stats.receiveFailed()
		return
	}

	acker := msg.NewBatchAcker(numMessages)
	start := c.currentStartMessageID
	var skipped int32
	for i, e := range entries {
		subID := msg.MessageID{LedgerID: id.LedgerID, EntryID: id.EntryID, Partition: id.Partition, BatchIndex: int32(i)}
		if c.ackTrack.IsDuplicate(subID) {
			acker.AckIndividual(int32(i))
			continue
		}
		if start != nil && isPriorToStart(subID, *start, c.cfg.ResetIncludeHead) {
			acker.AckIndividual(int32(i))
			skipped++
			continue
		}
		m := &msg.Message{
			Topic:           c.cfg.Topic,
			ID:              subID,
			Acker:           acker,
			Payload:         e.Payload,
			Key:             e.Key,
			Properties:      e.Properties,
			SchemaVersion:   md.SchemaVersion,
			SequenceID:      md.GetSequenceId(),
			PublishTime:     millisToTime(md.GetPublishTime()),
			EventTime:       millisToTime(e.EventTime),
			RedeliveryCount: redeliveryCount,
		}
		m.SetDecoder(c.decodeFn)
		c.deliverOrDeadLetter(m)
	}
	if skipped > 0 {
		c.flow.increase(skipped)
	}
	c.batchLastIndex[id.EntryID] = numMessages - 1
}

// isPriorToStart reports whether id is a tail-prefix of the entry the
// subscription is resuming from -- a sub-message the application has
// already consumed (or, with ResetIncludeHead, already consumed save
// for the start index itself) that shouldn't be redelivered.
//
// By default the start index is already consumed and dropped too
// (<=); ResetIncludeHead asks for the start index to be delivered
// again (<).
func isPriorToStart(id, start msg.MessageID, includeHead bool) bool {
	if id.LedgerID != start.LedgerID || id.EntryID != start.EntryID {
		return false
	}
	if includeHead {
		return id.BatchIndex < start.BatchIndex
	}
	return id.BatchIndex <= start.BatchIndex
}

// deliverOrDeadLetter delivers m, unless its redelivery count has
// crossed the dead-letter threshold, in which case it's forwarded to
// the DLQ topic on a background goroutine (so a slow DLQ producer
// never stalls the actor loop) and acked once that lands.
//
// A waiting Receive call is fast-pathed straight to m, crediting one
// permit immediately, bypassing the receiver queue entirely. Otherwise
// m joins the queue, and a waiting BatchReceive whose threshold is now
// met is completed.
func (c *Consumer) deliverOrDeadLetter(m *msg.Message) {
	if c.dlq.shouldDeadLetter(m) {
		c.dlq.buffer(m)
		go c.forwardDeadLetter(m)
		return
	}

	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters = c.waiters[1:]
		c.lastDequeued = m.ID
		c.lastDequeuedIsBatch = m.IsBatched()
		c.hasDequeued = true
		c.unacked.add(m.ID)
		c.stats.messageReceived(len(m.Payload))
		c.flow.increase(1)
		w <- *m
		return
	}

	c.queue.Push(m)
	c.unacked.add(m.ID)
	c.stats.messageReceived(len(m.Payload))

	if len(c.batchWaiters) > 0 && c.batchThresholdMet() {
		c.completeBatchWaiter()
	}
}

func (c *Consumer) forwardDeadLetter(m *msg.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OperationTimeout)
	defer cancel()

	c.dlq.processMessages(ctx, m.ID, func(id msg.MessageID) error {
		done := make(chan error, 1)
		select {
		case c.cmds <- func() { done <- c.ackMessage(*m, false) }:
		case <-c.closedc:
			return ErrAlreadyClosed
		}
		select {
		case err := <-done:
			return err
		case <-c.closedc:
			return ErrAlreadyClosed
		}
	})
}

// ackMessage applies one acknowledgement, resolving through the shared
// BatchAcker when m came from a batch. It's shared by the public Ack /
// AckCumulative paths and the dead-letter forwarder (always individual).
func (c *Consumer) ackMessage(m msg.Message, cumulative bool) error {
	if c.state != StateReady {
		return ErrNotConnected
	}

	if m.Acker != nil {
		if cumulative && !m.Acker.PrevBatchCumulativelyAcked() {
			c.ackPrevBatchEntry(m.ID)
			m.Acker.SetPrevBatchCumulativelyAcked()
		}

		var done bool
		if cumulative {
			done = m.Acker.AckGroup(m.ID.BatchIndex)
		} else {
			done = m.Acker.AckIndividual(m.ID.BatchIndex)
		}
		c.unacked.remove(m.ID)
		c.nack.remove(m.ID)
		c.stats.ack()
		if !done {
			return nil
		}
		entryID := msg.MessageID{LedgerID: m.ID.LedgerID, EntryID: m.ID.EntryID, Partition: m.ID.Partition, BatchIndex: -1}
		c.ackTrack.Add(entryID, cumulative)
		return nil
	}

	if cumulative {
		c.unacked.removeUntil(m.ID)
	} else {
		c.unacked.remove(m.ID)
	}
	c.nack.remove(m.ID)
	c.stats.ack()
	c.ackTrack.Add(m.ID, cumulative)
	return nil
}

// ackPrevBatchEntry issues the cumulative-ack fallthrough a partial
// batch cumulative ack implies: id's entry is only partially acked, so
// everything up to and including the previous entry's last sub-message
// must be acked too. batchLastIndex supplies that entry's batch size
// when it was itself a batch; -1 (non-batched) otherwise.
func (c *Consumer) ackPrevBatchEntry(id msg.MessageID) {
	prevLastIndex := int32(-1)
	if li, ok := c.batchLastIndex[id.EntryID-1]; ok {
		prevLastIndex = li
		delete(c.batchLastIndex, id.EntryID-1)
	}
	entryHead := msg.MessageID{LedgerID: id.LedgerID, EntryID: id.EntryID, Partition: id.Partition, BatchIndex: 0}
	prev := msg.PreviousMessageID(entryHead, true, prevLastIndex)
	c.ackTrack.Add(prev, true)
}

// sendAckEntries is the ackGroupingTracker's flush callback, invoked
// either inline (groupTime == 0) or via a posted closure from the
// tracker's own timer goroutine. Individual acks batch into a single
// CommandAck; each cumulative ack is sent on its own, since a CommandAck
// only carries one ack_type.
func (c *Consumer) sendAckEntries(entries []ackEntry) {
	if c.state != StateReady {
		return
	}
	var individual []*api.MessageIdData
	for _, e := range entries {
		if e.cumulative {
			c.sendAck(api.CommandAck_Cumulative, []*api.MessageIdData{e.id.ToWire()})
			continue
		}
		individual = append(individual, e.id.ToWire())
	}
	if len(individual) > 0 {
		c.sendAck(api.CommandAck_Individual, individual)
	}
}

func (c *Consumer) sendAck(ackType api.CommandAck_AckType, ids []*api.MessageIdData) {
	if c.cnx.Cnx == nil {
		return
	}
	if err := c.cnx.Cnx.SendSimpleCmd(api.BaseCommand{
		Type: api.BaseCommand_ACK.Enum(),
		Ack: &api.CommandAck{
			ConsumerId: proto.Uint64(c.ConsumerID),
			AckType:    ackType.Enum(),
			MessageId:  ids,
		},
	}); err != nil {
		log.Errorf("consumer %d: failed to send ack: %v", c.ConsumerID, err)
	}
}

// sendFlow grants the broker permits more credit. It's the
// flowController's emit callback, and is also reachable directly via
// the public Flow method for callers that manage their own accounting.
func (c *Consumer) sendFlow(permits uint32) error {
	if c.cnx.Cnx == nil {
		return ErrNotConnected
	}
	return c.cnx.Cnx.SendSimpleCmd(api.BaseCommand{
		Type: api.BaseCommand_FLOW.Enum(),
		Flow: &api.CommandFlow{
			ConsumerId:     proto.Uint64(c.ConsumerID),
			MessagePermits: proto.Uint32(permits),
		},
	})
}

// redeliverIDs asks the broker to redeliver ids, chunked so no single
// frame tries to carry an unbounded id list. Before that: any
// contiguous prefix of the receiver queue already sitting on one of
// ids is purged and its permits credited back (those messages were
// never handed to the application, so asking the broker to redeliver
// them too would just duplicate what's already queued), and each id
// still present in the dead-letter processor's buffer -- meaning it
// already crossed the redelivery limit -- is forwarded and acked
// instead of redelivered.
const maxRedeliverIDsPerFrame = 1000

func (c *Consumer) redeliverIDs(ids []msg.MessageID) error {
	if c.state != StateReady {
		return ErrNotConnected
	}

	pending := make(map[msg.MessageID]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}
	var purged int32
	for {
		head, ok := c.queue.Peek()
		if !ok || !pending[head.ID] {
			break
		}
		c.queue.Pop()
		purged++
	}
	if purged > 0 {
		c.flow.increase(purged)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OperationTimeout)
	defer cancel()

	toRedeliver := ids[:0:0]
	for _, id := range ids {
		handled := c.dlq.processMessages(ctx, id, func(target msg.MessageID) error {
			return c.ackMessage(msg.Message{ID: target}, false)
		})
		if !handled {
			toRedeliver = append(toRedeliver, id)
		}
	}
	ids = toRedeliver

	for start := 0; start < len(ids); start += maxRedeliverIDsPerFrame {
		end := start + maxRedeliverIDsPerFrame
		if end > len(ids) {
			end = len(ids)
		}
		wire := make([]*api.MessageIdData, end-start)
		for i, id := range ids[start:end] {
			wire[i] = id.ToWire()
		}
		if err := c.cnx.Cnx.SendSimpleCmd(api.BaseCommand{
			Type: api.BaseCommand_REDELIVER_UNACKNOWLEDGED_MESSAGES.Enum(),
			RedeliverUnacknowledgedMessages: &api.CommandRedeliverUnacknowledgedMessages{
				ConsumerId: proto.Uint64(c.ConsumerID),
				MessageIds: wire,
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) redeliverAll() error {
	if c.state != StateReady {
		return ErrNotConnected
	}
	if err := c.cnx.Cnx.SendSimpleCmd(api.BaseCommand{
		Type: api.BaseCommand_REDELIVER_UNACKNOWLEDGED_MESSAGES.Enum(),
		RedeliverUnacknowledgedMessages: &api.CommandRedeliverUnacknowledgedMessages{
			ConsumerId: proto.Uint64(c.ConsumerID),
		},
	}); err != nil {
		return err
	}
	c.unacked.clear()
	c.dlq.clear()
	return nil
}

func (c *Consumer) closeSession(ctx context.Context, unsubscribe bool) error {
	if c.state == StateClosing || c.state == StateClosed {
		return nil
	}
	c.state = StateClosing

	if c.cnx.Cnx != nil {
		reqID := c.reqID.Next()
		var cmd api.BaseCommand
		if unsubscribe {
			cmd = api.BaseCommand{
				Type:        api.BaseCommand_UNSUBSCRIBE.Enum(),
				Unsubscribe: &api.CommandUnsubscribe{ConsumerId: proto.Uint64(c.ConsumerID), RequestId: reqID},
			}
		} else {
			cmd = api.BaseCommand{
				Type:          api.BaseCommand_CLOSE_CONSUMER.Enum(),
				CloseConsumer: &api.CommandCloseConsumer{ConsumerId: proto.Uint64(c.ConsumerID), RequestId: reqID},
			}
		}

		if resp, cancel, err := c.cnx.Dispatcher.RegisterReqID(*reqID); err == nil {
			if sendErr := c.cnx.Cnx.SendSimpleCmd(cmd); sendErr == nil {
				select {
				case <-resp:
				case <-ctx.Done():
				case <-time.After(c.cfg.OperationTimeout):
				}
			}
			cancel()
		}

		c.cnx.Registry.Unregister(c.ConsumerID)
	}

	c.ackTrack.Close()
	c.unacked.close()
	c.nack.close()
	c.queue.Clear()
	for _, bw := range c.batchWaiters {
		bw.stop()
	}
	c.batchWaiters = nil
	c.waiters = nil
	c.state = StateClosed
	return nil
}

func millisToTime(ms uint64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}
