package frame

import (
	"testing"
	"time"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

func reqID(v uint64) *uint64 { return &v }

func TestDispatcherRegisterReqIDRejectsDuplicate(t *testing.T) {
	d := NewFrameDispatcher()
	_, cancel, err := d.RegisterReqID(1)
	if err != nil {
		t.Fatalf("first RegisterReqID(1) error = %v", err)
	}
	defer cancel()

	if _, _, err := d.RegisterReqID(1); err == nil {
		t.Fatal("second RegisterReqID(1) should fail while the first is still pending")
	}
}

func TestDispatcherCancelFreesSlot(t *testing.T) {
	d := NewFrameDispatcher()
	_, cancel, err := d.RegisterReqID(1)
	if err != nil {
		t.Fatalf("RegisterReqID(1) error = %v", err)
	}
	cancel()

	if _, cancel2, err := d.RegisterReqID(1); err != nil {
		t.Fatalf("RegisterReqID(1) after cancel should succeed, got %v", err)
	} else {
		cancel2()
	}
}

func TestDispatcherDispatchSuccessRoutesToReqID(t *testing.T) {
	d := NewFrameDispatcher()
	ch, cancel, err := d.RegisterReqID(5)
	if err != nil {
		t.Fatalf("RegisterReqID(5) error = %v", err)
	}
	defer cancel()

	f := Frame{BaseCmd: &api.BaseCommand{
		Type:    api.BaseCommand_SUCCESS,
		Success: &api.CommandSuccess{RequestId: reqID(5)},
	}}
	d.Dispatch(f)

	select {
	case got := <-ch:
		if got.BaseCmd.GetType() != api.BaseCommand_SUCCESS {
			t.Errorf("got frame type %v, want SUCCESS", got.BaseCmd.GetType())
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never received the dispatched frame")
	}
}

func TestDispatcherDispatchErrorRoutesToReqID(t *testing.T) {
	d := NewFrameDispatcher()
	ch, cancel, err := d.RegisterReqID(7)
	if err != nil {
		t.Fatalf("RegisterReqID(7) error = %v", err)
	}
	defer cancel()

	f := Frame{BaseCmd: &api.BaseCommand{
		Type:  api.BaseCommand_ERROR,
		Error: &api.CommandError{RequestId: reqID(7)},
	}}
	d.Dispatch(f)

	select {
	case got := <-ch:
		if got.BaseCmd.GetType() != api.BaseCommand_ERROR {
			t.Errorf("got frame type %v, want ERROR", got.BaseCmd.GetType())
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never received the dispatched frame")
	}
}

func TestDispatcherDispatchSendReceiptRoutesToProdSeq(t *testing.T) {
	d := NewFrameDispatcher()
	ch, cancel, err := d.RegisterProdSeqIDs(1, 2)
	if err != nil {
		t.Fatalf("RegisterProdSeqIDs(1, 2) error = %v", err)
	}
	defer cancel()

	pid, sid := uint64(1), uint64(2)
	f := Frame{BaseCmd: &api.BaseCommand{
		Type:        api.BaseCommand_SEND_RECEIPT,
		SendReceipt: &api.CommandSendReceipt{ProducerId: &pid, SequenceId: &sid},
	}}
	d.Dispatch(f)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("waiter never received the dispatched send receipt")
	}
}

func TestDispatcherDispatchConnectedRoutesToGlobal(t *testing.T) {
	d := NewFrameDispatcher()
	ch, cancel, err := d.RegisterGlobal()
	if err != nil {
		t.Fatalf("RegisterGlobal() error = %v", err)
	}
	defer cancel()

	f := Frame{BaseCmd: &api.BaseCommand{Type: api.BaseCommand_CONNECTED}}
	d.Dispatch(f)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("global waiter never received CONNECTED")
	}
}

func TestDispatcherRegisterGlobalRejectsDuplicate(t *testing.T) {
	d := NewFrameDispatcher()
	_, cancel, err := d.RegisterGlobal()
	if err != nil {
		t.Fatalf("first RegisterGlobal() error = %v", err)
	}
	defer cancel()

	if _, _, err := d.RegisterGlobal(); err == nil {
		t.Fatal("second RegisterGlobal() should fail while the first is still pending")
	}
}

func TestDispatcherNotifyUnregisteredReqIDErrors(t *testing.T) {
	d := NewFrameDispatcher()
	if err := d.NotifyReqID(99, Frame{}); err == nil {
		t.Fatal("NotifyReqID for an unregistered id should error")
	}
}

func TestDispatcherDispatchUnroutableCommandIsANoop(t *testing.T) {
	d := NewFrameDispatcher()
	// PING carries no correlating id and isn't handled by Dispatch;
	// it must not panic.
	d.Dispatch(Frame{BaseCmd: &api.BaseCommand{Type: api.BaseCommand_PING}})
}
