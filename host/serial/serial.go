// Package serial abstracts the console link to the motor controller.
package serial

import "io"

// Port is a byte-stream link to the controller. Implementations:
// native serial for real hardware, an in-memory pipe for tests.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial link parameters.
type Config struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud rate. USB CDC links ignore it.
	Baud int

	// ReadTimeout in milliseconds; 0 blocks.
	ReadTimeout int
}

// DefaultConfig returns the controller's standard console parameters.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
