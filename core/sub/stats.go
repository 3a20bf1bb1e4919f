package sub

import (
	"time"

	"github.com/relaybroker/broker-client-go/pkg/metrics"
)

// Stats is the snapshot returned by GetStats, read once under the
// session actor's loop so no locking is needed.
type Stats struct {
	MessagesReceived  uint64
	BytesReceived     uint64
	Acks              uint64
	Nacks             uint64
	DeadLettered      uint64
	NumReceiveFailed  uint64
	PrefetchedMessages int
	LastReceivedAt    time.Time
}

// statsCollector accumulates local counters for GetStats while also
// mirroring every increment onto the shared Prometheus collectors.
type statsCollector struct {
	s   Stats
	top *metrics.TopicMetrics
}

func newStatsCollector(topic, subscription string) *statsCollector {
	return &statsCollector{top: metrics.ForTopic(topic, subscription)}
}

func (c *statsCollector) messageReceived(n int) {
	c.s.MessagesReceived++
	c.s.BytesReceived += uint64(n)
	c.s.LastReceivedAt = time.Now()
	c.top.MessagesReceived.Inc()
	c.top.BytesReceived.Add(float64(n))
}

func (c *statsCollector) ack() {
	c.s.Acks++
	c.top.AcksCounter.Inc()
}

func (c *statsCollector) nack() {
	c.s.Nacks++
	c.top.NacksCounter.Inc()
}

func (c *statsCollector) deadLettered() {
	c.s.DeadLettered++
	c.top.DlqCounter.Inc()
}

func (c *statsCollector) receiveFailed() {
	c.s.NumReceiveFailed++
}

func (c *statsCollector) setPrefetched(n int) {
	c.s.PrefetchedMessages = n
	c.top.PrefetchedMessages.Set(float64(n))
}

func (c *statsCollector) snapshot() Stats {
	return c.s
}
