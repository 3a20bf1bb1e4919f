package sub

import (
	"time"

	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/api"
)

// SubType mirrors the broker's subscription types.
type SubType int

const (
	Exclusive SubType = iota
	Shared
	Failover
	KeyShared
)

func (t SubType) wire() api.CommandSubscribe_SubType {
	switch t {
	case Shared:
		return api.CommandSubscribe_Shared
	case Failover:
		return api.CommandSubscribe_Failover
	case KeyShared:
		return api.CommandSubscribe_KeyShared
	default:
		return api.CommandSubscribe_Exclusive
	}
}

// InitialPosition controls where a brand-new (non-durable or never
// before subscribed) subscription starts reading from.
type InitialPosition int

const (
	Latest InitialPosition = iota
	Earliest
)

func (p InitialPosition) wire() api.CommandSubscribe_InitialPosition {
	if p == Earliest {
		return api.CommandSubscribe_Earliest
	}
	return api.CommandSubscribe_Latest
}

// BatchReceivePolicy bounds how BatchReceive accumulates messages
// before returning.
type BatchReceivePolicy struct {
	MaxNumMessages int
	MaxNumBytes    int
	Timeout        time.Duration
}

// DefaultBatchReceivePolicy caps a BatchReceive at 100 messages or
// 10 MiB, waiting at most 100ms for that threshold.
var DefaultBatchReceivePolicy = BatchReceivePolicy{
	MaxNumMessages: 100,
	MaxNumBytes:    10 * 1024 * 1024,
	Timeout:        100 * time.Millisecond,
}

// DeadLetterPolicy configures the dead-letter processor. A zero
// MaxRedeliveryCount disables it.
type DeadLetterPolicy struct {
	MaxRedeliveryCount uint32
	DeadLetterTopic    string
}

// Config configures a single partition's session actor. It's the
// per-partition analogue of manage.ConsumerConfig, which the façade
// layer owns one level up.
type Config struct {
	Topic         string
	Subscription  string
	ConsumerName  string
	SubType       SubType
	InitialPosition InitialPosition

	ReceiverQueueSize int

	AckTimeout             time.Duration
	AckTimeoutTickTime     time.Duration
	AcknowledgementsGroupTime time.Duration
	NegativeAckRedeliveryDelay time.Duration

	ReadCompacted      bool
	ResetIncludeHead   bool
	ReplicateSubscriptionState bool
	Durable            bool

	StartMessageID          *msg.MessageID
	StartMessageIDInclusive bool

	BatchReceivePolicy BatchReceivePolicy
	DeadLetter         DeadLetterPolicy

	SubscribeTimeout  time.Duration
	OperationTimeout  time.Duration

	PriorityLevel int32
}

// SetDefaults returns a copy of cfg with zero-valued fields replaced by
// sane defaults, matching manage.ConsumerConfig.SetDefaults' pattern.
func (c Config) SetDefaults() Config {
	if c.ReceiverQueueSize <= 0 {
		c.ReceiverQueueSize = 1000
	}
	if c.AckTimeoutTickTime <= 0 {
		c.AckTimeoutTickTime = 1 * time.Second
	}
	if c.NegativeAckRedeliveryDelay <= 0 {
		c.NegativeAckRedeliveryDelay = 1 * time.Minute
	}
	if c.AcknowledgementsGroupTime <= 0 {
		c.AcknowledgementsGroupTime = 100 * time.Millisecond
	}
	if c.SubscribeTimeout <= 0 {
		c.SubscribeTimeout = 30 * time.Second
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 30 * time.Second
	}
	if c.BatchReceivePolicy.MaxNumMessages <= 0 {
		c.BatchReceivePolicy = DefaultBatchReceivePolicy
	}
	if !c.Durable {
		// non-durable defaults to Durable=false explicitly set by caller;
		// nothing to default here, validated in validate().
	}
	return c
}

// validate enforces the Open Question #3 decision: a non-durable
// subscription with no start point is a configuration error, not an
// implicit "start from whatever the broker feels like" behavior.
func (c Config) validate() error {
	if !c.Durable && c.StartMessageID == nil && c.InitialPosition != Earliest {
		return ErrMissingStartMessageID
	}
	if c.SubType < Exclusive || c.SubType > KeyShared {
		return ErrInvalidSubType
	}
	return nil
}
