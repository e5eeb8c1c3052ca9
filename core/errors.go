package core

import "errors"

// Error taxonomy for the motor-drive core. Recoverable conditions are
// returned as values so callers (console, network handlers) keep
// serving other requests; only a failed PWM bring-up aborts startup.
var (
	// ErrInvalidParameter reports a frequency, duty, pole-pair count,
	// filter window or ramp target outside the allowed range. State is
	// unchanged; nothing was written to hardware.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotInitialized reports an operation on a MotorControl whose
	// Begin has not succeeded (or after End).
	ErrNotInitialized = errors.New("motor control not initialized")

	// ErrHardwareInit reports a peripheral that failed to initialize.
	// For the PWM generator this is fatal to motor operation; for the
	// tach capture channel the core degrades to RPM-always-zero.
	ErrHardwareInit = errors.New("hardware init failed")
)
