package sub

import "testing"

func TestStatsCollectorAccumulatesCounters(t *testing.T) {
	c := newStatsCollector("stats-test-topic", "stats-test-sub")

	c.messageReceived(10)
	c.messageReceived(5)
	c.ack()
	c.nack()
	c.deadLettered()
	c.receiveFailed()
	c.setPrefetched(7)

	s := c.snapshot()
	if s.MessagesReceived != 2 {
		t.Errorf("MessagesReceived = %d, want 2", s.MessagesReceived)
	}
	if s.BytesReceived != 15 {
		t.Errorf("BytesReceived = %d, want 15", s.BytesReceived)
	}
	if s.Acks != 1 {
		t.Errorf("Acks = %d, want 1", s.Acks)
	}
	if s.Nacks != 1 {
		t.Errorf("Nacks = %d, want 1", s.Nacks)
	}
	if s.DeadLettered != 1 {
		t.Errorf("DeadLettered = %d, want 1", s.DeadLettered)
	}
	if s.NumReceiveFailed != 1 {
		t.Errorf("NumReceiveFailed = %d, want 1", s.NumReceiveFailed)
	}
	if s.PrefetchedMessages != 7 {
		t.Errorf("PrefetchedMessages = %d, want 7", s.PrefetchedMessages)
	}
	if s.LastReceivedAt.IsZero() {
		t.Error("LastReceivedAt should be set after messageReceived")
	}
}

func TestStatsCollectorSnapshotIsACopy(t *testing.T) {
	c := newStatsCollector("stats-test-topic-2", "stats-test-sub-2")
	c.ack()
	s1 := c.snapshot()
	c.ack()
	s2 := c.snapshot()

	if s1.Acks != 1 {
		t.Errorf("first snapshot Acks = %d, want 1 (must not mutate after snapshot taken)", s1.Acks)
	}
	if s2.Acks != 2 {
		t.Errorf("second snapshot Acks = %d, want 2", s2.Acks)
	}
}
