package core

// The capture counter is 32 bits wide on every supported platform.
const maxCaptureCounter uint32 = 1<<32 - 1

// TachCapture converts edge timestamps from the capture channel into
// period measurements. One instance is owned by the MotorControl facade
// and handed by reference into the interrupt registration; there is no
// package-level capture state.
//
// Concurrency: OnEdge runs in interrupt context and writes the shared
// fields without blocking. The task-side readers mask interrupts around
// their access so the flag and value are consumed as one unit and a
// torn read is impossible.
type TachCapture struct {
	clockHz uint32

	// shared with the edge interrupt handler
	period     uint32
	newSample  bool
	lastEdgeMS uint32
	seenEdge   bool
	prevTicks  uint32
	primed     bool
}

// NewTachCapture creates capture state for a counter running at clockHz.
func NewTachCapture(clockHz uint32) *TachCapture {
	return &TachCapture{clockHz: clockHz}
}

// ClockHz returns the capture counter frequency.
func (t *TachCapture) ClockHz() uint32 {
	return t.clockHz
}

// OnEdge records one rising-edge timestamp. Interrupt context: bounded
// work, no allocation, no locks. The very first edge only establishes
// the baseline timestamp and produces no period.
func (t *TachCapture) OnEdge(ticks uint32) {
	if t.primed {
		prev := t.prevTicks
		if ticks > prev {
			t.period = ticks - prev
		} else {
			// counter wrapped between the two edges
			t.period = (maxCaptureCounter - prev) + ticks + 1
		}
		t.newSample = true
	}
	t.prevTicks = ticks
	t.primed = true
	t.lastEdgeMS = millis()
	t.seenEdge = true
}

// TakeSample consumes the pending period measurement, if any. The flag
// and value are read and cleared under a brief critical section.
func (t *TachCapture) TakeSample() (period uint32, ok bool) {
	state := disableInterrupts()
	period = t.period
	ok = t.newSample
	t.newSample = false
	restoreInterrupts(state)
	return period, ok
}

// LastEdgeMillis returns the wall-clock time of the most recent edge
// and whether any edge has ever been seen. Used for stall detection.
func (t *TachCapture) LastEdgeMillis() (ms uint32, seen bool) {
	state := disableInterrupts()
	ms = t.lastEdgeMS
	seen = t.seenEdge
	restoreInterrupts(state)
	return ms, seen
}
