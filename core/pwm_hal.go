package core

// PWMDriver is the abstract waveform-generator interface the core uses.
// Platform-specific implementations handle actual hardware control.
//
// Glitch-free contract: implementations reprogram while the generator
// keeps free-running and rely on the hardware latching new period and
// compare values at the next cycle boundary, so the output never passes
// through a transient 0% or 100% cycle.
type PWMDriver interface {
	// Configure starts the generator at the given frequency and duty
	// (percent, 0-100). Called once from Begin; values are pre-validated.
	Configure(freqHz uint32, duty float64) error

	// SetFrequency reprograms the waveform period, preserving duty.
	SetFrequency(freqHz uint32) error

	// SetDuty reprograms the compare value.
	SetDuty(duty float64) error

	// SetFrequencyDuty applies both values so they take effect in the
	// same waveform cycle, avoiding the visible single-parameter glitch
	// of two back-to-back writes.
	SetFrequencyDuty(freqHz uint32, duty float64) error

	// Stop halts the generator and drives the output low.
	Stop() error
}
