// Package sim models the motor-drive hardware in software: a motor
// whose speed follows PWM duty with a first-order lag, and a tach
// capture channel that synthesizes feedback edges from that speed. It
// backs the host simulator and lets the full control loop run with no
// hardware attached.
package sim

import (
	"sync"

	"motordrive/core"
)

// CaptureClockHz is the simulated capture counter rate.
const CaptureClockHz = 1000000

// Plant is the simulated motor. Duty commands arrive through the PWM
// driver; Step advances the mechanical model and fires capture edges.
// All methods are safe for concurrent use.
type Plant struct {
	mu sync.Mutex

	// MaxRPM is the speed the motor settles at for 100% duty.
	MaxRPM float64

	// PolePairs sets how many feedback edges one revolution produces.
	PolePairs uint8

	// TimeConstantMS is the first-order lag of the mechanical response.
	TimeConstantMS float64

	running bool
	duty    float64
	freq    uint32
	rpm     float64

	onEdge    func(ticks uint32)
	timeTicks float64 // continuous capture-clock time
	nextEdge  float64 // absolute tick time of the next feedback edge

	pulses int
}

// NewPlant returns a plant with a small-motor characteristic: 6000 RPM
// at full duty, 2 pole pairs, 200 ms mechanical time constant.
func NewPlant() *Plant {
	return &Plant{
		MaxRPM:         6000,
		PolePairs:      2,
		TimeConstantMS: 200,
	}
}

// Step advances the simulation by dtMS milliseconds: the speed relaxes
// toward the duty-commanded target and every feedback edge scheduled
// inside the window is delivered to the capture callback. Edges are
// spaced at the true period on the 1 MHz timeline so the measured
// frequency matches the simulated speed; the delivered counter value
// wraps at 32 bits like the hardware it stands in for.
func (p *Plant) Step(dtMS float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := 0.0
	if p.running {
		target = p.duty / 100 * p.MaxRPM
	}

	alpha := dtMS / (p.TimeConstantMS + dtMS)
	p.rpm += (target - p.rpm) * alpha

	start := p.timeTicks
	end := start + dtMS*CaptureClockHz/1000
	p.timeTicks = end

	edgeFreq := p.rpm * float64(p.PolePairs) / 60
	if edgeFreq <= 0 || p.onEdge == nil {
		p.nextEdge = 0
		return
	}

	interval := CaptureClockHz / edgeFreq
	if p.nextEdge < start || p.nextEdge > end+interval {
		// Restart the edge train after spin-up from rest or a stall.
		p.nextEdge = start + interval
	}
	for p.nextEdge <= end {
		p.onEdge(uint32(uint64(p.nextEdge)))
		p.nextEdge += interval
	}
}

// RPM returns the current simulated speed.
func (p *Plant) RPM() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rpm
}

// Pulses returns how many change-notification pulses have fired.
func (p *Plant) Pulses() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pulses
}

// PWMDriver returns the plant's PWM port.
func (p *Plant) PWMDriver() core.PWMDriver { return pwmPort{p} }

// CaptureDriver returns the plant's tach capture port.
func (p *Plant) CaptureDriver() core.CaptureDriver { return capturePort{p} }

// PulseDriver returns the plant's notification pulse port.
func (p *Plant) PulseDriver() core.PulseDriver { return pulsePort{p} }

type pwmPort struct{ p *Plant }

func (w pwmPort) Configure(freqHz uint32, duty float64) error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.freq = freqHz
	w.p.duty = duty
	w.p.running = true
	return nil
}

func (w pwmPort) SetFrequency(freqHz uint32) error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.freq = freqHz
	return nil
}

func (w pwmPort) SetDuty(duty float64) error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.duty = duty
	return nil
}

func (w pwmPort) SetFrequencyDuty(freqHz uint32, duty float64) error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.freq = freqHz
	w.p.duty = duty
	return nil
}

func (w pwmPort) Stop() error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.running = false
	w.p.duty = 0
	return nil
}

type capturePort struct{ p *Plant }

func (w capturePort) Configure(onEdge func(ticks uint32)) error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.onEdge = onEdge
	return nil
}

func (w capturePort) ClockHz() uint32 { return CaptureClockHz }

type pulsePort struct{ p *Plant }

func (w pulsePort) Configure() error { return nil }

func (w pulsePort) Pulse() {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.pulses++
}
