// Copyright 2018 Comcast Cable Communications Management, LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sub implements a single partition's consumer session: the
// subscribe handshake, flow control, message delivery, acknowledgement,
// redelivery, and reconnection for one (topic, subscription, partition).
package sub

import (
	"context"
	"errors"
	"sync"

	"github.com/golang/protobuf/proto"

	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/internal/compression"
	"github.com/relaybroker/broker-client-go/pkg/api"
	"github.com/relaybroker/broker-client-go/utils"
)

// ErrOverflowed is returned by RedeliverOverflow when there was nothing
// buffered in Overflow to redeliver.
var ErrOverflowed = errors.New("sub: no overflowed messages to redeliver")

// Consumer is one partition's consumer session. Every exported method
// posts a closure onto the session actor's command channel and waits for
// its result, so callers never need to reason about the actor's
// internal locking.
type Consumer struct {
	// Unactive reports whether this consumer currently holds the active
	// role in a Failover subscription. Read directly by callers (e.g.
	// manage.ManagedConsumer.Unactive) without going through the actor,
	// matching the teacher's lock-free read of a best-effort field.
	Unactive bool

	// ConsumerID is this session's broker-assigned consumer id, stable
	// across reconnects.
	ConsumerID uint64

	// OverflowSignal fires whenever drainToApp couldn't forward a
	// message because the application's queue was full, and the message
	// was appended to Overflow instead. Guarded by Omu.
	OverflowSignal chan struct{}
	Omu            sync.Mutex
	Overflow       []msg.Message

	cfg       Config
	partition int32
	reqID     *msg.MonotonicID

	appQueue chan msg.Message
	dial     Dialer
	decodeFn func([]byte) (interface{}, error)
	dlqProd  dlqProducer

	cmds      chan func()
	closedc   chan struct{}
	closeOnce sync.Once

	connClosedc    chan struct{}
	connClosedOnce sync.Once

	reachedEndc    chan struct{}
	reachedEndOnce sync.Once

	cnx          ConnHandle
	state        ConnectionState
	queue        *msg.Queue
	lastDequeued msg.MessageID
	hasDequeued  bool
	lastDequeuedIsBatch bool

	// duringSeek holds the target of the most recent successful Seek
	// until the next resumePoint call consumes it. It outranks every
	// other resume rule: a seek's target is what the next reconnect
	// must start from, however much has queued up locally since.
	duringSeek *msg.MessageID

	// currentStartMessageID is the subscription's live start position --
	// cfg.StartMessageID seeds it, but Seek and resumePoint advance it
	// across reconnects. handleMessageReceived compares against this,
	// not the frozen config value.
	currentStartMessageID *msg.MessageID

	// batchLastIndex remembers, per entry id, the last sub-message index
	// of a delivered batch, so ackMessage can address "the previous
	// entry's last sub-message" for the prev-batch cumulative-ack rule.
	// Entries are pruned once consulted.
	batchLastIndex map[int64]int32

	// waiters are pending Receive calls, in FIFO order, fast-pathed a
	// message as soon as one arrives instead of going through c.queue.
	waiters []receiveWaiter

	// batchWaiters are pending BatchReceive calls, each armed with its
	// own timeout timer.
	batchWaiters []*batchWaiter

	flow       *flowController
	ackTrack   *ackGroupingTracker
	unacked    *unackedTracker
	nack       *negAckTracker
	dlq        *deadLetterProcessor
	backoff    Backoff
	stats      *statsCollector
	compressor compression.Provider

	asyncErrs     utils.AsyncErrors
	everConnected bool
}

// NewConsumer constructs and starts a Consumer's session actor.
// consumerID is assigned by the caller (core/manage.Client owns the
// per-connection id counter); dial establishes each (re)connection;
// appQueue is the application-facing delivery channel the caller drains
// via the returned Consumer's Closed/ConnClosed/ReachedEndOfTopic
// channels alongside appQueue itself.
func NewConsumer(consumerID uint64, cfg Config, partition int32, appQueue chan msg.Message, dial Dialer, decodeFn func([]byte) (interface{}, error), dlqProd dlqProducer, compressor compression.Provider, asyncErrs utils.AsyncErrors) (*Consumer, error) {
	cfg = cfg.SetDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if compressor == nil {
		compressor = compression.NoopProvider{}
	}

	c := &Consumer{
		ConsumerID:     consumerID,
		OverflowSignal: make(chan struct{}, 1),
		cfg:            cfg,
		partition:      partition,
		reqID:          &msg.MonotonicID{},
		appQueue:       appQueue,
		dial:           dial,
		decodeFn:       decodeFn,
		dlqProd:        dlqProd,
		cmds:           make(chan func()),
		closedc:        make(chan struct{}),
		connClosedc:    make(chan struct{}),
		reachedEndc:    make(chan struct{}),
		queue:          msg.NewQueue(),
		batchLastIndex: make(map[int64]int32),
		compressor:     compressor,
		asyncErrs:      asyncErrs,
		backoff: Backoff{
			Initial:    cfg.OperationTimeout / 10,
			Max:        cfg.OperationTimeout * 10,
			MaxRetries: 0,
		},
		stats: newStatsCollector(cfg.Topic, cfg.Subscription),
	}
	c.flow = newFlowController(int32(cfg.ReceiverQueueSize), func(permits int32) {
		_ = c.sendFlow(uint32(permits))
	})
	c.ackTrack = newAckGroupingTracker(cfg.AcknowledgementsGroupTime, c.sendAckEntries)
	c.unacked = newUnackedTracker(cfg.AckTimeout, cfg.AckTimeoutTickTime, c.onUnackedTimeout)
	c.nack = newNegAckTracker(cfg.NegativeAckRedeliveryDelay, c.onNackDue)
	c.dlq = newDeadLetterProcessor(cfg.DeadLetter, dlqProd, cfg.Topic, cfg.Subscription)

	go c.run()

	return c, nil
}

// onUnackedTimeout is the unackedTracker's bucket-rotation callback. It
// fires from the tracker's own timer goroutine, so it posts through cmds
// to stay serialized with the actor.
func (c *Consumer) onUnackedTimeout(ids []msg.MessageID) {
	select {
	case c.cmds <- func() { _ = c.redeliverIDs(ids) }:
	case <-c.closedc:
	}
}

// onNackDue is the negAckTracker's due-draining callback.
func (c *Consumer) onNackDue(ids []msg.MessageID) {
	select {
	case c.cmds <- func() { _ = c.redeliverIDs(ids) }:
	case <-c.closedc:
	}
}

// do posts fn to the actor and waits for it to run, returning its error.
func (c *Consumer) do(fn func() error) error {
	return c.doCtx(context.Background(), fn)
}

// doCtx is do, bounded by ctx.
func (c *Consumer) doCtx(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case c.cmds <- func() { done <- fn() }:
	case <-c.closedc:
		return ErrAlreadyClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closedc:
		return ErrAlreadyClosed
	}
}

// Ack acknowledges m individually. For a sub-message of a batch, the
// wire ack is only emitted once every sub-message of that batch has been
// acknowledged.
func (c *Consumer) Ack(m msg.Message) error {
	return c.do(func() error { return c.ackMessage(m, false) })
}

// AckCumulative acknowledges m and every message that precedes it in
// delivery order.
func (c *Consumer) AckCumulative(m msg.Message) error {
	return c.do(func() error { return c.ackMessage(m, true) })
}

// Nack schedules m for redelivery after the configured
// NegativeAckRedeliveryDelay, without waiting for its ack timeout to
// expire. Used when the application knows immediately that it failed to
// process m.
func (c *Consumer) Nack(m msg.Message) error {
	return c.do(func() error {
		c.nack.add(m.ID)
		c.stats.nack()
		return nil
	})
}

// Flow requests permits additional messages from the broker. Callers
// that manage their own flow control (as manage.ManagedConsumer does)
// call this directly; it performs no bookkeeping of its own.
func (c *Consumer) Flow(permits uint32) error {
	return c.do(func() error { return c.sendFlow(permits) })
}

// Closed fires once Close or Unsubscribe has completed.
func (c *Consumer) Closed() <-chan struct{} { return c.closedc }

// ConnClosed fires when the session's internal reconnect loop gives up
// after exhausting its backoff's MaxRetries. NewConsumer sets MaxRetries
// to 0 (unbounded), so disconnections are retried and never close it.
func (c *Consumer) ConnClosed() <-chan struct{} { return c.connClosedc }

// ReachedEndOfTopic fires when the broker reports no more messages
// remain on a non-durable subscription's topic.
func (c *Consumer) ReachedEndOfTopic() <-chan struct{} { return c.reachedEndc }

// GetStats returns a snapshot of this session's counters.
func (c *Consumer) GetStats() Stats {
	var s Stats
	_ = c.do(func() error { s = c.stats.snapshot(); return nil })
	return s
}

// HasMessageAvailable reports whether a message is ready to deliver,
// either already buffered locally or, failing that, by asking the
// broker for its last published message id.
func (c *Consumer) HasMessageAvailable(ctx context.Context) (bool, error) {
	var available bool
	err := c.doCtx(ctx, func() error {
		if c.queue.Len() > 0 || len(c.appQueue) > 0 {
			available = true
			return nil
		}
		if c.state != StateReady {
			return ErrNotConnected
		}

		reqID := c.reqID.Next()
		resp, cancel, err := c.cnx.Dispatcher.RegisterReqID(*reqID)
		if err != nil {
			return err
		}
		defer cancel()

		if err := c.cnx.Cnx.SendSimpleCmd(api.BaseCommand{
			Type: api.BaseCommand_GET_LAST_MESSAGE_ID.Enum(),
			GetLastMessageId: &api.CommandGetLastMessageId{
				ConsumerId: proto.Uint64(c.ConsumerID),
				RequestId:  reqID,
			},
		}); err != nil {
			return err
		}

		select {
		case f := <-resp:
			last := msg.FromWire(f.BaseCmd.GetLastMessageIdResponse.GetLastMessageId(), c.partition)
			available = c.hasDequeued && c.lastDequeued.Less(last)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return available, err
}

// Seek repositions the subscription's read cursor to id, discarding
// whatever is currently buffered and pending redelivery. It doesn't
// itself force a reconnect: the new position is recorded as
// duringSeek and picked up lazily the next time the session reconnects.
func (c *Consumer) Seek(ctx context.Context, id msg.MessageID) error {
	return c.doCtx(ctx, func() error {
		if c.state != StateReady {
			return ErrNotConnected
		}

		reqID := c.reqID.Next()
		resp, cancel, err := c.cnx.Dispatcher.RegisterReqID(*reqID)
		if err != nil {
			return err
		}
		defer cancel()

		if err := c.cnx.Cnx.SendSimpleCmd(api.BaseCommand{
			Type: api.BaseCommand_SEEK.Enum(),
			Seek: &api.CommandSeek{
				ConsumerId: proto.Uint64(c.ConsumerID),
				RequestId:  reqID,
				MessageId:  id.ToWire(),
			},
		}); err != nil {
			return err
		}

		select {
		case f := <-resp:
			if f.BaseCmd.GetType() == api.BaseCommand_ERROR {
				e := f.BaseCmd.GetError()
				return NewBrokerError(e.GetError().String(), e.GetMessage())
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		c.ackTrack.Flush()
		c.queue.Clear()
		c.unacked.clear()
		c.dlq.clear()

		target := id
		c.duringSeek = &target
		c.hasDequeued = false
		return nil
	})
}

// RedeliverUnacknowledged requests redelivery of every currently
// unacknowledged message.
func (c *Consumer) RedeliverUnacknowledged(ctx context.Context) error {
	return c.doCtx(ctx, c.redeliverAll)
}

// RedeliverOverflow requests redelivery of whatever was buffered in
// Overflow because the application's delivery channel was full,
// returning how many messages were requested.
func (c *Consumer) RedeliverOverflow(ctx context.Context) (int, error) {
	var n int
	err := c.doCtx(ctx, func() error {
		c.Omu.Lock()
		ids := make([]msg.MessageID, len(c.Overflow))
		for i, m := range c.Overflow {
			ids[i] = m.ID
		}
		c.Overflow = nil
		c.Omu.Unlock()

		if len(ids) == 0 {
			return ErrOverflowed
		}
		n = len(ids)
		return c.redeliverIDs(ids)
	})
	return n, err
}

// Unsubscribe tears down the subscription entirely -- the broker drops
// its cursor, so a later re-subscribe starts fresh.
func (c *Consumer) Unsubscribe(ctx context.Context) error {
	err := c.doCtx(ctx, func() error { return c.closeSession(ctx, true) })
	c.closeOnce.Do(func() { close(c.closedc) })
	return err
}

// Close ends the session without removing the subscription; a later
// reconnect (by a new Consumer) resumes from where this one left off.
func (c *Consumer) Close(ctx context.Context) error {
	err := c.doCtx(ctx, func() error { return c.closeSession(ctx, false) })
	c.closeOnce.Do(func() { close(c.closedc) })
	return err
}

