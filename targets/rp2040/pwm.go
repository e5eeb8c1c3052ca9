//go:build rp2040

package main

import (
	"machine"
)

// slicePWM abstracts over TinyGo's unexported *pwmGroup type so the
// driver can hold whichever of the 8 slices the output pin maps to.
type slicePWM interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetPeriod(period uint64) error
	Top() uint32
	Set(channel uint8, value uint32)
}

// MotorPWM drives the motor output pin from its hardware PWM slice.
// Frequency and duty writes latch at the end of the running period, so
// reconfiguration never glitches the output mid-cycle.
type MotorPWM struct {
	pin  machine.Pin
	pwm  slicePWM
	ch   uint8
	duty float64
}

// NewMotorPWM creates a PWM driver on the given pin.
// RP2040: GPIO pin N maps to slice (N >> 1) & 7, channel N & 1.
func NewMotorPWM(pin machine.Pin) *MotorPWM {
	return &MotorPWM{
		pin: pin,
		pwm: pwmSlice(uint8((uint32(pin) >> 1) & 0x7)),
	}
}

func (d *MotorPWM) Configure(freqHz uint32, duty float64) error {
	err := d.pwm.Configure(machine.PWMConfig{
		Period: 1000000000 / uint64(freqHz),
	})
	if err != nil {
		return err
	}
	ch, err := d.pwm.Channel(d.pin)
	if err != nil {
		return err
	}
	d.ch = ch
	return d.SetDuty(duty)
}

func (d *MotorPWM) SetFrequency(freqHz uint32) error {
	if err := d.pwm.SetPeriod(1000000000 / uint64(freqHz)); err != nil {
		return err
	}
	// Top changed with the period; rescale the compare value so the
	// duty ratio survives the frequency change.
	return d.SetDuty(d.duty)
}

func (d *MotorPWM) SetDuty(duty float64) error {
	d.duty = duty
	top := d.pwm.Top()
	d.pwm.Set(d.ch, uint32(duty/100*float64(top)))
	return nil
}

func (d *MotorPWM) SetFrequencyDuty(freqHz uint32, duty float64) error {
	d.duty = duty
	return d.SetFrequency(freqHz)
}

func (d *MotorPWM) Stop() error {
	d.duty = 0
	d.pwm.Set(d.ch, 0)
	return nil
}

// pwmSlice returns the PWM peripheral for a slice number.
func pwmSlice(sliceNum uint8) slicePWM {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
