package sub

import "errors"

var (
	// ErrAlreadyClosed is returned by every public method once the
	// session has reached Closed or Failed.
	ErrAlreadyClosed = errors.New("sub: consumer already closed")

	// ErrNotConnected is returned when an operation requires a live
	// connection and none is currently held.
	ErrNotConnected = errors.New("sub: not connected")

	// ErrSubscribeTimeout is returned when the initial subscribe
	// handshake doesn't complete before subscribe_timeout elapses.
	ErrSubscribeTimeout = errors.New("sub: subscribe timed out")

	// ErrMissingStartMessageID is returned at construction when the
	// subscription is non-durable and no start message id or earliest
	// flag was supplied -- the broker has no cursor to fall back to,
	// so leaving it unspecified is a configuration error rather than a
	// silently implicit behavior.
	ErrMissingStartMessageID = errors.New("sub: non-durable subscription requires a start message id")

	// ErrInvalidSubType is returned for an unrecognized SubType.
	ErrInvalidSubType = errors.New("sub: invalid subscription type")
)

// BrokerError wraps a broker-returned ERROR response, associating its
// server error code with a message. Retriable reports whether the
// subscribe/reconnect path should keep retrying rather than fail
// permanently.
type BrokerError struct {
	Code      string
	Message   string
	Retriable bool
}

func (e *BrokerError) Error() string {
	return e.Code + ": " + e.Message
}

var retriableBrokerErrors = map[string]bool{
	"ServiceNotReady":         true,
	"TooManyRequests":         true,
	"PersistenceError":        true,
	"ConsumerBusy":            true,
}

// NewBrokerError builds a BrokerError, consulting the static
// retriable/fatal table.
func NewBrokerError(code, message string) *BrokerError {
	return &BrokerError{Code: code, Message: message, Retriable: retriableBrokerErrors[code]}
}
