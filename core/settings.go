package core

// Validation limits for motor parameters. Frequency ceiling matches the
// hardware waveform generators this targets (500 kHz).
const (
	MinFrequency = 10
	MaxFrequency = 500000

	MinDuty = 0.0
	MaxDuty = 100.0

	MinPolePairs = 1
	MaxPolePairs = 12

	MinRPMUpdateMS = 20
	MaxRPMUpdateMS = 1000
)

// Settings is the persisted motor configuration. The core applies it at
// Begin and keeps the snapshot current as parameters change; loading
// and saving it is the settings store's business, not the core's.
type Settings struct {
	Frequency     uint32  `json:"frequency"`      // PWM frequency in Hz
	Duty          float64 `json:"duty"`           // PWM duty cycle in percent
	PolePairs     uint8   `json:"pole_pairs"`     // motor pole pairs (1-12)
	MaxUserFreq   uint32  `json:"max_frequency"`  // operator-set frequency ceiling
	MaxSafeRPM    uint32  `json:"max_safe_rpm"`   // overspeed protection threshold
	FilterWindow  int     `json:"filter_window"`  // RPM moving-average span (1-20)
	RPMUpdateMS   uint32  `json:"rpm_update_ms"`  // RPM update cadence hint for the caller loop
	LEDBrightness uint8   `json:"led_brightness"` // status LED brightness (0-255)

	// AutoStopOnOverspeed selects whether a failed overspeed check
	// triggers an emergency stop or is report-only.
	AutoStopOnOverspeed bool `json:"auto_stop_on_overspeed"`
}

// DefaultSettings returns the factory configuration.
func DefaultSettings() Settings {
	return Settings{
		Frequency:     10000,
		Duty:          0.0,
		PolePairs:     2,
		MaxUserFreq:   MaxFrequency,
		MaxSafeRPM:    500000,
		FilterWindow:  10,
		RPMUpdateMS:   100,
		LEDBrightness: 25,
	}
}

// Validate checks every field against the hard limits.
func (s *Settings) Validate() error {
	if s.Frequency < MinFrequency || s.Frequency > MaxFrequency {
		return ErrInvalidParameter
	}
	if s.Duty < MinDuty || s.Duty > MaxDuty {
		return ErrInvalidParameter
	}
	if s.PolePairs < MinPolePairs || s.PolePairs > MaxPolePairs {
		return ErrInvalidParameter
	}
	if s.MaxUserFreq < MinFrequency || s.MaxUserFreq > MaxFrequency {
		return ErrInvalidParameter
	}
	if s.FilterWindow < 1 || s.FilterWindow > MaxFilterWindow {
		return ErrInvalidParameter
	}
	if s.RPMUpdateMS < MinRPMUpdateMS || s.RPMUpdateMS > MaxRPMUpdateMS {
		return ErrInvalidParameter
	}
	return nil
}
