package msg

import (
	"fmt"
	"math"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// MessageID totally orders messages within a partition. Comparison is
// lexicographic on (LedgerID, EntryID, BatchIndex) -- Partition only
// distinguishes which partition produced the id, it doesn't participate
// in ordering within one partition's consumer.
//
// BatchIndex of -1 denotes a non-batched entry.
type MessageID struct {
	LedgerID   int64
	EntryID    int64
	Partition  int32
	BatchIndex int32
}

// Earliest is the sentinel meaning "before any real message".
var Earliest = MessageID{LedgerID: -1, EntryID: -1, Partition: -1, BatchIndex: -1}

// Latest is the sentinel meaning "after any real message", used to
// request delivery starting from whatever is published next.
var Latest = MessageID{LedgerID: math.MaxInt64, EntryID: math.MaxInt64, Partition: -1, BatchIndex: math.MaxInt32}

// Compare returns -1, 0, or 1 as id is less than, equal to, or greater
// than other.
func (id MessageID) Compare(other MessageID) int {
	if id.LedgerID != other.LedgerID {
		if id.LedgerID < other.LedgerID {
			return -1
		}
		return 1
	}
	if id.EntryID != other.EntryID {
		if id.EntryID < other.EntryID {
			return -1
		}
		return 1
	}
	if id.BatchIndex != other.BatchIndex {
		if id.BatchIndex < other.BatchIndex {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether id sorts before other.
func (id MessageID) Less(other MessageID) bool { return id.Compare(other) < 0 }

// LessEqual reports whether id sorts before or equal to other.
func (id MessageID) LessEqual(other MessageID) bool { return id.Compare(other) <= 0 }

func (id MessageID) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", id.LedgerID, id.EntryID, id.Partition, id.BatchIndex)
}

// FromWire converts the wire representation of a message id into a
// MessageID. partition comes from the consumer, not the wire struct.
func FromWire(d *api.MessageIdData, partition int32) MessageID {
	batchIndex := d.GetBatchIndex()
	return MessageID{
		LedgerID:   int64(d.GetLedgerId()),
		EntryID:    int64(d.GetEntryId()),
		Partition:  partition,
		BatchIndex: batchIndex,
	}
}

// ToWire converts id to its wire representation.
func (id MessageID) ToWire() *api.MessageIdData {
	d := &api.MessageIdData{
		LedgerId: proto64(uint64(id.LedgerID)),
		EntryId:  proto64(uint64(id.EntryID)),
	}
	if id.Partition >= 0 {
		p := id.Partition
		d.Partition = &p
	}
	if id.BatchIndex >= 0 {
		bi := id.BatchIndex
		d.BatchIndex = &bi
	}
	return d
}

func proto64(v uint64) *uint64 { return &v }

// PreviousMessageID computes the id immediately preceding id in
// delivery order, for use as a resume point on reconnect.
//
// When id is a sub-message of a batch (cumulative is true) at index 0,
// the predecessor is the last sub-message of the previous entry -- not
// index -1 of the same entry, which would be nonsensical. Callers that
// don't know the previous entry's last batch index pass it as
// prevEntryLastIndex; -1 there means "treat the previous entry as
// non-batched".
func PreviousMessageID(id MessageID, cumulative bool, prevEntryLastIndex int32) MessageID {
	if cumulative && id.BatchIndex > 0 {
		return MessageID{
			LedgerID:   id.LedgerID,
			EntryID:    id.EntryID,
			Partition:  id.Partition,
			BatchIndex: id.BatchIndex - 1,
		}
	}
	return MessageID{
		LedgerID:   id.LedgerID,
		EntryID:    id.EntryID - 1,
		Partition:  id.Partition,
		BatchIndex: prevEntryLastIndex,
	}
}
