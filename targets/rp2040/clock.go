//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"motordrive/core"
)

// RP2040 TIMER peripheral: a 64-bit free-running microsecond counter.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08
	timerTIMERAWL = timerBase + 0x0C
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// hardwareMicros reads the low 32 bits of the microsecond counter. This
// is also the tach capture timebase, so edge timestamps and the system
// clock can never drift apart.
func hardwareMicros() uint32 {
	return timerRAWL.Get()
}

// hardwareUptime reads the full 64-bit counter. High word first, then
// low, then high again to detect a rollover mid-read.
func hardwareUptime() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// initClock points the core's millisecond clock at the hardware timer.
// Derived from the 64-bit counter so the millisecond value wraps cleanly
// at 32 bits instead of at the raw counter's 71-minute mark.
func initClock() {
	core.SetMillisSource(func() uint32 {
		return uint32(hardwareUptime() / 1000)
	})
}
