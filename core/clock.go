package core

import "time"

// MillisFunc returns a monotonically increasing millisecond count.
type MillisFunc func() uint32

var bootTime = time.Now()

// millis is the clock behind ramping, RPM staleness, the safety grace
// period and the watchdog. The default counts wall time since process
// start; platforms may install a hardware source and tests install a
// fake to drive time deterministically. The 32-bit width matches the
// hardware millisecond counters this targets; all comparisons use
// wrapping subtraction so rollover is harmless.
var millis MillisFunc = func() uint32 {
	return uint32(time.Since(bootTime) / time.Millisecond)
}

// SetMillisSource replaces the millisecond clock source.
func SetMillisSource(f MillisFunc) {
	if f != nil {
		millis = f
	}
}
