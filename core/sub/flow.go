package sub

// flowController tracks permits consumed by the application and emits
// Flow requests once they cross half the receiver queue size. It has
// no goroutine of its own -- increase is called from the session
// actor's loop, which owns serialization.
type flowController struct {
	receiverQueueSize int32
	available         int32
	emit              func(permits int32)
}

func newFlowController(receiverQueueSize int32, emit func(permits int32)) *flowController {
	return &flowController{receiverQueueSize: receiverQueueSize, emit: emit}
}

// increase credits delta permits, emitting a Flow request and
// resetting the counter once it reaches half the queue size.
func (f *flowController) increase(delta int32) {
	if delta <= 0 {
		return
	}
	f.available += delta
	if f.available >= f.receiverQueueSize/2 {
		permits := f.available
		f.available = 0
		f.emit(permits)
	}
}

// resetFull is used on (re)connect to request a full queue's worth of
// permits immediately.
func (f *flowController) resetFull() {
	f.available = 0
	if f.receiverQueueSize > 0 {
		f.emit(f.receiverQueueSize)
	}
}
