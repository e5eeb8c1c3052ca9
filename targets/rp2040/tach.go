//go:build rp2040

package main

import (
	"machine"
)

// TachInput timestamps motor feedback edges against the 1 MHz hardware
// timer. The GPIO interrupt fires on each rising edge and hands the raw
// counter value to the capture layer, which does the period math outside
// interrupt context.
type TachInput struct {
	pin    machine.Pin
	onEdge func(ticks uint32)
}

// NewTachInput creates a capture driver on the given feedback pin.
func NewTachInput(pin machine.Pin) *TachInput {
	return &TachInput{pin: pin}
}

func (t *TachInput) Configure(onEdge func(ticks uint32)) error {
	t.onEdge = onEdge
	t.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return t.pin.SetInterrupt(machine.PinRising, func(machine.Pin) {
		// Interrupt context: read the counter and get out.
		t.onEdge(hardwareMicros())
	})
}

func (t *TachInput) ClockHz() uint32 { return 1000000 }
