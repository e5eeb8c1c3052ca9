package core

import "time"

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)
}

// PulseWidthUS is the width of the change-notification pulse.
const PulseWidthUS = 10

// PulseDriver emits the fixed-width notification pulse on the dedicated
// output line whenever a PWM parameter change is accepted. External
// instrumentation (scope trigger, downstream accessory) watches it.
type PulseDriver interface {
	Configure() error
	Pulse()
}

// sleepMicros is overridable so tests don't pay real wall time for the
// notification pulse.
var sleepMicros = func(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// GPIOPulse bit-bangs the notification pulse on a plain output pin.
// Platforms with smarter hardware (PIO, one-shot timers) provide their
// own PulseDriver instead.
type GPIOPulse struct {
	gpio GPIODriver
	pin  GPIOPin
}

// NewGPIOPulse creates a pulse output on the given pin.
func NewGPIOPulse(gpio GPIODriver, pin GPIOPin) *GPIOPulse {
	return &GPIOPulse{gpio: gpio, pin: pin}
}

// Configure claims the pin as an output, driven low.
func (p *GPIOPulse) Configure() error {
	if err := p.gpio.ConfigureOutput(p.pin); err != nil {
		return err
	}
	return p.gpio.SetPin(p.pin, false)
}

// Pulse drives the line high for PulseWidthUS microseconds.
func (p *GPIOPulse) Pulse() {
	p.gpio.SetPin(p.pin, true)
	sleepMicros(PulseWidthUS)
	p.gpio.SetPin(p.pin, false)
}
