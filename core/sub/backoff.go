package sub

import (
	"math/rand"
	"time"
)

// Backoff computes an exponentially increasing reconnect delay with
// jitter, matching the doubling schedule manage.ManagedConsumer.reconnect
// uses but adding jitter and an optional bound on attempt count.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	// MaxRetries caps the number of attempts Backoff will hand out a
	// delay for; 0 means unbounded. Next returns (0, false) once
	// exceeded, the mandatory-stop signal callers must honor.
	MaxRetries int

	attempt int
	current time.Duration
}

// Reset returns the backoff to its initial state, called after a
// successful (re)connect.
func (b *Backoff) Reset() {
	b.attempt = 0
	b.current = 0
}

// Next returns the delay to wait before the next reconnect attempt and
// true, or (0, false) if MaxRetries has been exhausted.
func (b *Backoff) Next() (time.Duration, bool) {
	if b.MaxRetries > 0 && b.attempt >= b.MaxRetries {
		return 0, false
	}
	b.attempt++

	if b.current == 0 {
		b.current = b.Initial
	} else if b.current < b.Max {
		b.current *= 2
		if b.current > b.Max {
			b.current = b.Max
		}
	}

	jitter := time.Duration(rand.Int63n(int64(b.current)/4 + 1))
	return b.current - jitter/2 + jitter, true
}

// Attempt returns how many delays Next has handed out since the last
// Reset.
func (b *Backoff) Attempt() int { return b.attempt }
