package sub

import (
	"testing"
	"time"

	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/api"
)

func TestConfigSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{}.SetDefaults()

	if cfg.ReceiverQueueSize != 1000 {
		t.Errorf("ReceiverQueueSize = %d, want 1000", cfg.ReceiverQueueSize)
	}
	if cfg.AckTimeoutTickTime != time.Second {
		t.Errorf("AckTimeoutTickTime = %v, want 1s", cfg.AckTimeoutTickTime)
	}
	if cfg.NegativeAckRedeliveryDelay != time.Minute {
		t.Errorf("NegativeAckRedeliveryDelay = %v, want 1m", cfg.NegativeAckRedeliveryDelay)
	}
	if cfg.AcknowledgementsGroupTime != 100*time.Millisecond {
		t.Errorf("AcknowledgementsGroupTime = %v, want 100ms", cfg.AcknowledgementsGroupTime)
	}
	if cfg.SubscribeTimeout != 30*time.Second {
		t.Errorf("SubscribeTimeout = %v, want 30s", cfg.SubscribeTimeout)
	}
	if cfg.OperationTimeout != 30*time.Second {
		t.Errorf("OperationTimeout = %v, want 30s", cfg.OperationTimeout)
	}
	if cfg.BatchReceivePolicy != DefaultBatchReceivePolicy {
		t.Errorf("BatchReceivePolicy = %+v, want default", cfg.BatchReceivePolicy)
	}
}

func TestConfigSetDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{ReceiverQueueSize: 50, AckTimeoutTickTime: 5 * time.Second}.SetDefaults()
	if cfg.ReceiverQueueSize != 50 {
		t.Errorf("ReceiverQueueSize = %d, want 50 (explicit value preserved)", cfg.ReceiverQueueSize)
	}
	if cfg.AckTimeoutTickTime != 5*time.Second {
		t.Errorf("AckTimeoutTickTime = %v, want 5s (explicit value preserved)", cfg.AckTimeoutTickTime)
	}
}

func TestConfigValidateRejectsNonDurableWithoutStartPoint(t *testing.T) {
	cfg := Config{Durable: false, InitialPosition: Latest}
	if err := cfg.validate(); err != ErrMissingStartMessageID {
		t.Errorf("validate() = %v, want ErrMissingStartMessageID", err)
	}
}

func TestConfigValidateAllowsNonDurableWithEarliest(t *testing.T) {
	cfg := Config{Durable: false, InitialPosition: Earliest}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() = %v, want nil (Earliest is a valid start point)", err)
	}
}

func TestConfigValidateAllowsNonDurableWithExplicitStartID(t *testing.T) {
	id := msg.MessageID{LedgerID: 1, EntryID: 1}
	cfg := Config{Durable: false, InitialPosition: Latest, StartMessageID: &id}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() = %v, want nil (explicit StartMessageID supplied)", err)
	}
}

func TestConfigValidateAllowsDurableWithoutStartPoint(t *testing.T) {
	cfg := Config{Durable: true, InitialPosition: Latest}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() = %v, want nil (durable subscriptions resume from the broker cursor)", err)
	}
}

func TestConfigValidateRejectsUnknownSubType(t *testing.T) {
	cfg := Config{Durable: true, SubType: SubType(99)}
	if err := cfg.validate(); err != ErrInvalidSubType {
		t.Errorf("validate() = %v, want ErrInvalidSubType", err)
	}
}

func TestSubTypeWireMapping(t *testing.T) {
	cases := []struct {
		t    SubType
		want api.CommandSubscribe_SubType
	}{
		{Exclusive, api.CommandSubscribe_Exclusive},
		{Shared, api.CommandSubscribe_Shared},
		{Failover, api.CommandSubscribe_Failover},
		{KeyShared, api.CommandSubscribe_KeyShared},
	}
	for _, c := range cases {
		if got := c.t.wire(); got != c.want {
			t.Errorf("%v.wire() = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestInitialPositionWireMapping(t *testing.T) {
	if Earliest.wire() != api.CommandSubscribe_Earliest {
		t.Errorf("Earliest.wire() = %v, want CommandSubscribe_Earliest", Earliest.wire())
	}
	if Latest.wire() != api.CommandSubscribe_Latest {
		t.Errorf("Latest.wire() = %v, want CommandSubscribe_Latest", Latest.wire())
	}
}
