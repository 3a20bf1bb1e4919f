package msg

import "testing"

func TestBatchAckerIndividualAcksAllReportsDone(t *testing.T) {
	b := NewBatchAcker(3)
	if b.AckIndividual(0) {
		t.Error("AckIndividual(0) of 3 should not report done")
	}
	if b.AckIndividual(1) {
		t.Error("AckIndividual(1) of 3 should not report done")
	}
	if !b.AckIndividual(2) {
		t.Error("AckIndividual(2) of 3 should report done")
	}
	if b.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d, want 0", b.Outstanding())
	}
}

func TestBatchAckerIndividualIsIdempotent(t *testing.T) {
	b := NewBatchAcker(2)
	b.AckIndividual(0)
	if b.Outstanding() != 1 {
		t.Fatalf("Outstanding() = %d, want 1", b.Outstanding())
	}
	b.AckIndividual(0) // repeated ack of the same index must not double-decrement
	if b.Outstanding() != 1 {
		t.Errorf("Outstanding() after repeated ack = %d, want 1", b.Outstanding())
	}
}

func TestBatchAckerAckGroupCoversPrefix(t *testing.T) {
	b := NewBatchAcker(5)
	done := b.AckGroup(2) // acks indices 0,1,2
	if done {
		t.Error("AckGroup(2) of 5 should not report done")
	}
	if b.Outstanding() != 2 {
		t.Errorf("Outstanding() = %d, want 2", b.Outstanding())
	}
}

func TestBatchAckerAckGroupClampsUpperBound(t *testing.T) {
	b := NewBatchAcker(3)
	if !b.AckGroup(100) { // out-of-range index clamps to len-1
		t.Error("AckGroup(100) on a 3-entry batch should clamp and report done")
	}
	if b.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d, want 0", b.Outstanding())
	}
}

func TestBatchAckerIndividualOutOfRangeReportsCurrentState(t *testing.T) {
	b := NewBatchAcker(1)
	if b.AckIndividual(5) {
		t.Error("out-of-range AckIndividual should not claim done while outstanding remain")
	}
	b.AckIndividual(0)
	if !b.AckIndividual(5) {
		t.Error("out-of-range AckIndividual should report done once everything else is acked")
	}
}

func TestBatchAckerPrevBatchCumulativelyAckedFlag(t *testing.T) {
	b := NewBatchAcker(2)
	if b.PrevBatchCumulativelyAcked() {
		t.Error("PrevBatchCumulativelyAcked() should start false")
	}
	b.SetPrevBatchCumulativelyAcked()
	if !b.PrevBatchCumulativelyAcked() {
		t.Error("PrevBatchCumulativelyAcked() should be true after Set")
	}
}
