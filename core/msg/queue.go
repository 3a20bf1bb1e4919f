package msg

import "sync"

// Queue is an insertion-ordered FIFO of Messages with a running byte
// count, bounded by the session's receiver_queue_size. It's only ever
// touched from the session actor's goroutine, but keeps a mutex so the
// façade's Unactive-style peeks from other goroutines stay honest.
type Queue struct {
	mu    sync.Mutex
	items []*Message
	bytes int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends m to the tail of the queue.
func (q *Queue) Push(m *Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.bytes += len(m.Payload)
	q.mu.Unlock()
}

// Pop removes and returns the head of the queue, if any.
func (q *Queue) Pop() (*Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	q.bytes -= len(m.Payload)
	return m, true
}

// Peek returns the head of the queue without removing it.
func (q *Queue) Peek() (*Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len reports the number of messages currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Bytes reports the total payload size of queued messages.
func (q *Queue) Bytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bytes
}

// Clear empties the queue and resets the byte count, returning how many
// messages were discarded.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	q.bytes = 0
	return n
}

// RawMetadata carries the wire codec's metadata for a delivered entry.
type RawMetadata struct {
	NumMessages      int32
	HasBatch         bool
	UncompressedSize uint32
	SchemaVersion    []byte
}

// RawMessage is a delivery from the wire codec, already decompressed
// and checksum-verified (or flagged as not).
type RawMessage struct {
	ID              MessageID
	Payload         []byte
	Metadata        RawMetadata
	ChecksumValid   bool
	RedeliveryCount uint32
	Key             string
	KeyIsBase64     bool
	Properties      map[string]string
}
