package sub

import (
	"context"
	"time"

	"github.com/relaybroker/broker-client-go/core/msg"
)

// receiveWaiter is a pending Receive call's reply channel, buffered so
// the actor loop's send never blocks on a caller that's about to give
// up anyway (ctx cancellation races with delivery).
type receiveWaiter chan msg.Message

// batchWaiter is a pending BatchReceive call. timer is armed with the
// configured BatchReceivePolicy.Timeout and, on firing, posts
// SendBatchByTimeout back through the actor loop; nil when the policy
// has no timeout.
type batchWaiter struct {
	reply chan []msg.Message
	timer *time.Timer
}

func (w *batchWaiter) stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Receive waits for the next message, fast-pathed from the receiver
// queue's head if one is already buffered, or queued as a waiter until
// one arrives.
func (c *Consumer) Receive(ctx context.Context) (msg.Message, error) {
	reply := make(receiveWaiter, 1)
	if err := c.doCtx(ctx, func() error {
		if m, ok := c.queue.Pop(); ok {
			c.lastDequeued = m.ID
			c.lastDequeuedIsBatch = m.IsBatched()
			c.hasDequeued = true
			c.flow.increase(1)
			reply <- *m
			return nil
		}
		c.waiters = append(c.waiters, reply)
		return nil
	}); err != nil {
		return msg.Message{}, err
	}

	select {
	case m := <-reply:
		return m, nil
	case <-ctx.Done():
		c.removeWaiter(reply)
		return msg.Message{}, ctx.Err()
	case <-c.closedc:
		return msg.Message{}, ErrAlreadyClosed
	}
}

func (c *Consumer) removeWaiter(reply receiveWaiter) {
	select {
	case c.cmds <- func() {
		for i, w := range c.waiters {
			if w == reply {
				c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
				return
			}
		}
	}:
	case <-c.closedc:
	}
}

// BatchReceive waits for a bundle of messages bounded by
// Config.BatchReceivePolicy: it returns as soon as MaxNumMessages or
// MaxNumBytes is met, or when Timeout elapses with whatever has
// accumulated by then, including nothing.
func (c *Consumer) BatchReceive(ctx context.Context) ([]msg.Message, error) {
	reply := make(chan []msg.Message, 1)
	if err := c.doCtx(ctx, func() error {
		if len(c.batchWaiters) == 0 && c.batchThresholdMet() {
			reply <- c.drainBatch()
			return nil
		}

		bw := &batchWaiter{reply: reply}
		if timeout := c.cfg.BatchReceivePolicy.Timeout; timeout > 0 {
			bw.timer = time.AfterFunc(timeout, func() {
				select {
				case c.cmds <- func() { c.sendBatchByTimeout(bw) }:
				case <-c.closedc:
				}
			})
		}
		c.batchWaiters = append(c.batchWaiters, bw)
		return nil
	}); err != nil {
		return nil, err
	}

	select {
	case m := <-reply:
		return m, nil
	case <-ctx.Done():
		c.removeBatchWaiter(reply)
		return nil, ctx.Err()
	case <-c.closedc:
		return nil, ErrAlreadyClosed
	}
}

func (c *Consumer) removeBatchWaiter(reply chan []msg.Message) {
	select {
	case c.cmds <- func() {
		for i, w := range c.batchWaiters {
			if w.reply == reply {
				w.stop()
				c.batchWaiters = append(c.batchWaiters[:i], c.batchWaiters[i+1:]...)
				return
			}
		}
	}:
	case <-c.closedc:
	}
}

// sendBatchByTimeout is bw's timer callback, posted through the actor
// loop. bw may already have been completed or cancelled by the time it
// runs, in which case it's no longer in batchWaiters and this is a
// no-op.
func (c *Consumer) sendBatchByTimeout(bw *batchWaiter) {
	for i, w := range c.batchWaiters {
		if w == bw {
			c.batchWaiters = append(c.batchWaiters[:i], c.batchWaiters[i+1:]...)
			bw.reply <- c.drainBatch()
			return
		}
	}
}

// completeBatchWaiter satisfies the oldest pending BatchReceive once
// its threshold has been met by a freshly delivered message.
func (c *Consumer) completeBatchWaiter() {
	bw := c.batchWaiters[0]
	c.batchWaiters = c.batchWaiters[1:]
	bw.stop()
	bw.reply <- c.drainBatch()
}

// batchThresholdMet reports whether the receiver queue already
// satisfies BatchReceivePolicy's MaxNumMessages/MaxNumBytes bound.
func (c *Consumer) batchThresholdMet() bool {
	p := c.cfg.BatchReceivePolicy
	if p.MaxNumMessages > 0 && c.queue.Len() >= p.MaxNumMessages {
		return true
	}
	if p.MaxNumBytes > 0 && c.queue.Bytes() >= p.MaxNumBytes {
		return true
	}
	return false
}

// drainBatch pops messages off the receiver queue in order, stopping
// before the next one would push the bundle past MaxNumMessages or
// MaxNumBytes, and credits a permit for each message drained.
func (c *Consumer) drainBatch() []msg.Message {
	p := c.cfg.BatchReceivePolicy
	var out []msg.Message
	bytes := 0
	for {
		head, ok := c.queue.Peek()
		if !ok {
			break
		}
		if p.MaxNumMessages > 0 && len(out) >= p.MaxNumMessages {
			break
		}
		if p.MaxNumBytes > 0 && len(out) > 0 && bytes+len(head.Payload) > p.MaxNumBytes {
			break
		}
		m, _ := c.queue.Pop()
		out = append(out, *m)
		bytes += len(m.Payload)
		c.lastDequeued = m.ID
		c.lastDequeuedIsBatch = m.IsBatched()
		c.hasDequeued = true
	}
	if len(out) > 0 {
		c.flow.increase(int32(len(out)))
	}
	return out
}
