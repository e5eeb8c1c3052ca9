//go:build rp2040

package main

// Change-notification pulse on RP2040 PIO. The state machine owns the
// pulse timing entirely, so Pulse() is a single FIFO write with no busy
// wait, safe to call from the control path without stretching it.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"motordrive/core"
)

// PIO program for one-shot pulse generation.
// Command word: high-time in PIO cycles minus one.
//
// Program flow:
//  1. Pull the high-time from the FIFO (blocks while idle)
//  2. Raise the pin
//  3. Count X down to zero
//  4. Drop the pin, wrap back to the pull
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),           // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(),    // 1: out x, 32 (high cycles)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),  // 2: set pins, 1
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(), // 3: jmp x--, 3
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 4: set pins, 0
		// .wrap
	}
}

const pulsePIOOrigin = 0 // load at offset 0 for correct jump addresses

// pioCyclesPerUS is the PIO clock at full speed (125 MHz, divider 1).
const pioCyclesPerUS = 125

// PulsePIO implements the notification pulse on a PIO state machine.
type PulsePIO struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	pin machine.Pin
}

// NewPulsePIO creates a pulse output on the given pin.
// pioNum: 0 for PIO0, 1 for PIO1. smNum: 0-3.
func NewPulsePIO(pioNum, smNum uint8, pin machine.Pin) *PulsePIO {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PulsePIO{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
		pin: pin,
	}
}

func (p *PulsePIO) Configure() error {
	p.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := p.pio.AddProgram(program, pulsePIOOrigin)
	if err != nil {
		return err
	}

	p.pin.Configure(machine.PinConfig{Mode: p.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(p.pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	p.sm.Init(offset, cfg)

	// Pin direction and idle level, after Init
	p.sm.SetPindirsConsecutive(p.pin, 1, true)
	p.sm.SetPinsConsecutive(p.pin, 1, false)

	p.sm.SetEnabled(true)
	return nil
}

// Pulse queues one fixed-width pulse. If a previous pulse is still in
// flight the FIFO absorbs this one; dropping a notification is better
// than stalling the motor control path.
func (p *PulsePIO) Pulse() {
	if p.sm.IsTxFIFOFull() {
		return
	}
	p.sm.TxPut(core.PulseWidthUS*pioCyclesPerUS - 1)
}
