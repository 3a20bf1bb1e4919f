package sub

import "testing"

func TestFlowControllerEmitsAtHalfQueue(t *testing.T) {
	var emitted []int32
	fc := newFlowController(100, func(permits int32) { emitted = append(emitted, permits) })

	fc.increase(30)
	if len(emitted) != 0 {
		t.Fatalf("emitted = %v after 30/100, want none yet", emitted)
	}

	fc.increase(20) // available now 50, half of 100
	if len(emitted) != 1 || emitted[0] != 50 {
		t.Fatalf("emitted = %v, want [50]", emitted)
	}

	if fc.available != 0 {
		t.Errorf("available = %d after emit, want reset to 0", fc.available)
	}
}

func TestFlowControllerIgnoresNonPositiveDelta(t *testing.T) {
	var emitted []int32
	fc := newFlowController(10, func(permits int32) { emitted = append(emitted, permits) })

	fc.increase(0)
	fc.increase(-5)
	if len(emitted) != 0 {
		t.Errorf("emitted = %v, want none for non-positive deltas", emitted)
	}
}

func TestFlowControllerResetFullRequestsWholeQueue(t *testing.T) {
	var emitted []int32
	fc := newFlowController(64, func(permits int32) { emitted = append(emitted, permits) })

	fc.increase(10)
	fc.resetFull()

	if len(emitted) != 1 || emitted[0] != 64 {
		t.Fatalf("emitted = %v, want [64]", emitted)
	}
	if fc.available != 0 {
		t.Errorf("available after resetFull = %d, want 0", fc.available)
	}
}

func TestFlowControllerResetFullNoopWhenQueueSizeZero(t *testing.T) {
	var emitted []int32
	fc := newFlowController(0, func(permits int32) { emitted = append(emitted, permits) })
	fc.resetFull()
	if len(emitted) != 0 {
		t.Errorf("emitted = %v, want none when receiverQueueSize is 0", emitted)
	}
}
