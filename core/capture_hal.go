package core

// CaptureDriver is the abstract interface to a hardware capture channel
// that timestamps rising edges of the tachometer feedback signal with a
// free-running counter.
type CaptureDriver interface {
	// Configure arms the channel. From then on the driver invokes
	// onEdge from interrupt context with the counter value latched at
	// each rising edge. onEdge must not allocate or block.
	Configure(onEdge func(ticks uint32)) error

	// ClockHz returns the frequency of the free-running capture counter.
	ClockHz() uint32
}
