package msg

import "sync"

// BatchAcker tracks which sub-messages of a single broker entry remain
// unacknowledged. One instance is shared by every Message carved out of
// the same batch; it's dropped once the last sub-message is accounted
// for.
type BatchAcker struct {
	mu                     sync.Mutex
	bits                   []bool // true == still outstanding
	outstanding            int
	prevCumulativelyAcked  bool
}

// NewBatchAcker allocates a tracker for a batch of n sub-messages.
func NewBatchAcker(n int32) *BatchAcker {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = true
	}
	return &BatchAcker{bits: bits, outstanding: int(n)}
}

// AckIndividual marks sub-message i acked and reports whether every
// sub-message of the batch has now been accounted for.
func (b *BatchAcker) AckIndividual(i int32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || int(i) >= len(b.bits) {
		return b.outstanding == 0
	}
	if b.bits[i] {
		b.bits[i] = false
		b.outstanding--
	}
	return b.outstanding == 0
}

// AckGroup marks every sub-message in [0, i] acked, as happens on a
// cumulative ack of sub-index i.
func (b *BatchAcker) AckGroup(i int32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	upper := int(i)
	if upper >= len(b.bits) {
		upper = len(b.bits) - 1
	}
	for idx := 0; idx <= upper; idx++ {
		if b.bits[idx] {
			b.bits[idx] = false
			b.outstanding--
		}
	}
	return b.outstanding == 0
}

// PrevBatchCumulativelyAcked reports whether the cumulative-ack
// fallthrough to the previous entry has already happened for this
// batch.
func (b *BatchAcker) PrevBatchCumulativelyAcked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prevCumulativelyAcked
}

// SetPrevBatchCumulativelyAcked records that the fallthrough cumulative
// ack for the previous entry has been issued, so it's only sent once
// per batch.
func (b *BatchAcker) SetPrevBatchCumulativelyAcked() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prevCumulativelyAcked = true
}

// Outstanding returns the number of sub-messages not yet acked.
func (b *BatchAcker) Outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding
}
