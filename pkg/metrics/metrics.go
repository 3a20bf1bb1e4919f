// Package metrics exposes Prometheus collectors for per-topic consumer
// activity, mirroring the field set the upstream actor keeps on
// internal.TopicMetrics: messages/bytes received, acks, nacks,
// dead-lettered messages, and delivery processing time.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// TopicMetrics is the set of collectors registered for one topic +
// subscription pair.
type TopicMetrics struct {
	MessagesReceived   prometheus.Counter
	BytesReceived       prometheus.Counter
	AcksCounter         prometheus.Counter
	NacksCounter        prometheus.Counter
	DlqCounter          prometheus.Counter
	PrefetchedMessages  prometheus.Gauge
	ProcessingTime      prometheus.Histogram
}

var commonLabels = []string{"topic", "subscription"}

var (
	messagesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "messages_received_total",
		Help:      "Number of messages delivered to the application.",
	}, commonLabels)

	bytesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "bytes_received_total",
		Help:      "Total payload bytes delivered to the application.",
	}, commonLabels)

	acksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "acks_total",
		Help:      "Number of acknowledgements sent.",
	}, commonLabels)

	nacksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "nacks_total",
		Help:      "Number of negative acknowledgements requested.",
	}, commonLabels)

	dlqCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "dead_lettered_total",
		Help:      "Number of messages forwarded to a dead letter topic.",
	}, commonLabels)

	prefetchedMessages = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "prefetched_messages",
		Help:      "Messages currently buffered in the receiver queue.",
	}, commonLabels)

	processingTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "broker_client",
		Subsystem: "consumer",
		Name:      "processing_time_seconds",
		Help:      "Time spent decoding and delivering a message.",
		Buckets:   prometheus.DefBuckets,
	}, commonLabels)
)

func init() {
	prometheus.MustRegister(
		messagesReceived,
		bytesReceived,
		acksCounter,
		nacksCounter,
		dlqCounter,
		prefetchedMessages,
		processingTime,
	)
}

// ForTopic returns the collector set for a (topic, subscription) pair,
// registering the label combination on first use.
func ForTopic(topic, subscription string) *TopicMetrics {
	return &TopicMetrics{
		MessagesReceived:   messagesReceived.WithLabelValues(topic, subscription),
		BytesReceived:      bytesReceived.WithLabelValues(topic, subscription),
		AcksCounter:        acksCounter.WithLabelValues(topic, subscription),
		NacksCounter:       nacksCounter.WithLabelValues(topic, subscription),
		DlqCounter:         dlqCounter.WithLabelValues(topic, subscription),
		PrefetchedMessages: prefetchedMessages.WithLabelValues(topic, subscription),
		ProcessingTime:     processingTime.WithLabelValues(topic, subscription),
	}
}
