package msg

import (
	"fmt"
	"sync"
	"time"
)

// Message is a single application-visible delivery: either a whole
// non-batched entry or one sub-message carved out of a batch. Decoding
// the payload into an application type is deferred until Value is
// called, and memoized, so a batch's sub-messages only pay to decode
// the ones the application actually reads.
type Message struct {
	Topic string
	ID    MessageID

	// Acker is non-nil when this Message is a sub-message of a batch;
	// acks against it resolve through the shared BatchAcker instead of
	// being final on their own.
	Acker *BatchAcker

	Payload         []byte
	Key             string
	KeyIsBase64     bool
	Properties      map[string]string
	SchemaVersion   []byte
	SequenceID      uint64
	PublishTime     time.Time
	EventTime       time.Time
	RedeliveryCount uint32

	decodeOnce sync.Once
	decodeFn   func([]byte) (interface{}, error)
	value      interface{}
	decodeErr  error
}

// SetDecoder installs the thunk used to lazily decode Payload. It must
// be called before the first Value call; later calls are ignored.
func (m *Message) SetDecoder(fn func([]byte) (interface{}, error)) {
	if m.decodeFn == nil {
		m.decodeFn = fn
	}
}

// Value decodes the payload on first access and returns the cached
// result on every subsequent call.
func (m *Message) Value() (interface{}, error) {
	m.decodeOnce.Do(func() {
		if m.decodeFn == nil {
			m.value = m.Payload
			return
		}
		m.value, m.decodeErr = m.decodeFn(m.Payload)
	})
	return m.value, m.decodeErr
}

// Decode decodes m's payload and asserts it to T, for callers that know
// the schema's concrete decoded type.
func Decode[T any](m *Message) (T, error) {
	var zero T
	v, err := m.Value()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("msg: decoded value is %T, not %T", v, zero)
	}
	return t, nil
}

// IsBatched reports whether this Message came from a multi-message
// batch entry.
func (m *Message) IsBatched() bool { return m.Acker != nil }
