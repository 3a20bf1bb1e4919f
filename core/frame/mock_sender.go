package frame

import (
	"sync"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// MockSender is a CmdSender that records every frame sent through it
// instead of writing to a real connection. It's used by producer and
// session tests to assert on outbound traffic without a broker.
type MockSender struct {
	mu       sync.Mutex
	Frames   []Frame
	closedc  chan struct{}
	closedMu sync.Once
}

func (m *MockSender) SendSimpleCmd(cmd api.BaseCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, Frame{BaseCmd: &cmd})
	return nil
}

func (m *MockSender) SendPayloadCmd(cmd api.BaseCommand, metadata api.MessageMetadata, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, Frame{BaseCmd: &cmd, Metadata: &metadata, Payload: payload})
	return nil
}

// Close marks the mock sender's connection as closed, unblocking Closed().
func (m *MockSender) Close() {
	m.closedMu.Do(func() {
		m.mu.Lock()
		if m.closedc == nil {
			m.closedc = make(chan struct{})
		}
		close(m.closedc)
		m.mu.Unlock()
	})
}

func (m *MockSender) Closed() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closedc == nil {
		m.closedc = make(chan struct{})
	}
	return m.closedc
}

var _ CmdSender = (*MockSender)(nil)
