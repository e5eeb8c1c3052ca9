// Motor-drive core: PWM generation, hardware-capture tachometry and the
// safety/ramping supervisor. All periodic behavior is exposed as plain
// tick methods (UpdateRPM, UpdateRamps, CheckSafety, FeedWatchdog)
// invoked by a caller-owned timer loop, so timing stays deterministic
// and testable without a real clock.
package core

import "sync"

// dutyEpsilon is the tolerance for duty change detection.
const dutyEpsilon = 0.01

// MotorControl composes the PWM output, tach capture, RPM filter, ramp
// controller, safety supervisor and watchdog behind one facade. It owns
// all mutable state except the interrupt-shared capture fields, which
// live in TachCapture.
//
// The public API is serialized by a single mutex: a command handler and
// a network handler may call in concurrently, but every mutation runs
// alone.
type MotorControl struct {
	mu sync.Mutex

	pwm     PWMDriver
	capture CaptureDriver
	pulse   PulseDriver
	tach    *TachCapture

	settings *Settings

	pwmOK     bool
	captureOK bool
	initMS    uint32

	frequency uint32
	duty      float64

	rawRPM        float64
	filteredRPM   float64
	inputFreq     float64
	lastRPMUpdate uint32
	filter        *RPMFilter

	freqRamp rampState
	dutyRamp rampState

	estopActive bool
	estopRPM    float64

	watchdogOn bool
	lastFeedMS uint32
}

// Status is the read-only snapshot exposed to status consumers (console,
// dashboard). No push mechanism lives in the core; collaborators poll.
type Status struct {
	FrequencyHz   uint32
	DutyPercent   float64
	RawRPM        float64
	FilteredRPM   float64
	InputFreqHz   float64
	PolePairs     uint8
	Ramping       bool
	EmergencyStop bool
	UptimeMS      uint32
}

// New creates a MotorControl on the given drivers. capture and pulse
// may be nil: without capture the RPM readout stays zero, without pulse
// no change notifications are emitted.
func New(pwm PWMDriver, capture CaptureDriver, pulse PulseDriver) *MotorControl {
	return &MotorControl{
		pwm:     pwm,
		capture: capture,
		pulse:   pulse,
		filter:  NewRPMFilter(1),
	}
}

// Begin initializes the subsystem and applies the saved settings. A PWM
// bring-up failure is fatal and reported as ErrHardwareInit; a capture
// bring-up failure only degrades RPM reporting to always-zero.
func (m *MotorControl) Begin(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if settings == nil {
		return ErrInvalidParameter
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if m.pwm == nil {
		return ErrHardwareInit
	}

	m.settings = settings
	m.initMS = millis()
	m.filter.SetWindow(settings.FilterWindow)

	if m.pulse != nil {
		if err := m.pulse.Configure(); err != nil {
			logln("pulse output init failed, change notifications disabled")
			m.pulse = nil
		}
	}

	if err := m.pwm.Configure(settings.Frequency, settings.Duty); err != nil {
		logln("PWM init failed: " + err.Error())
		return ErrHardwareInit
	}
	m.pwmOK = true
	m.frequency = settings.Frequency
	m.duty = settings.Duty

	if m.capture != nil {
		m.tach = NewTachCapture(m.capture.ClockHz())
		if err := m.capture.Configure(m.tach.OnEdge); err != nil {
			// PWM still works without a tachometer
			logln("tach capture init failed, RPM reporting disabled")
			m.captureOK = false
		} else {
			m.captureOK = true
		}
	}

	logln("motor control initialized: " + utoa(m.frequency) + " Hz, " +
		ftoa1(m.duty) + "% duty")
	return nil
}

// End stops the PWM output and clears all state.
func (m *MotorControl) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pwmOK {
		m.pwm.Stop()
		m.pwmOK = false
	}
	m.captureOK = false
	m.frequency = 0
	m.duty = 0
	m.rawRPM = 0
	m.filteredRPM = 0
	m.inputFreq = 0
	m.freqRamp.active = false
	m.dutyRamp.active = false
}

// SetFrequency applies a new PWM frequency. Out-of-range values are
// rejected with ErrInvalidParameter and leave state unchanged; an
// unchanged value is a successful no-op with no hardware write and no
// notification pulse. A frequency ramp in progress ends here.
func (m *MotorControl) SetFrequency(freqHz uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setFrequencyLocked(freqHz)
}

func (m *MotorControl) setFrequencyLocked(freqHz uint32) error {
	if freqHz < MinFrequency || freqHz > MaxFrequency {
		return ErrInvalidParameter
	}
	if !m.pwmOK {
		return ErrNotInitialized
	}

	// A direct set always ends the ramp for this parameter, even when
	// the value matches: the ramp would otherwise keep moving it.
	m.freqRamp.active = false

	if freqHz == m.frequency {
		return nil
	}

	if err := m.pwm.SetFrequency(freqHz); err != nil {
		return err
	}
	m.frequency = freqHz
	m.settings.Frequency = freqHz
	logln("PWM frequency set to " + utoa(freqHz) + " Hz")
	m.sendPulseLocked()
	return nil
}

// SetDuty applies a new duty cycle in percent. Same contract as
// SetFrequency; equality uses a small epsilon.
func (m *MotorControl) SetDuty(duty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setDutyLocked(duty)
}

func (m *MotorControl) setDutyLocked(duty float64) error {
	if duty < MinDuty || duty > MaxDuty {
		return ErrInvalidParameter
	}
	if !m.pwmOK {
		return ErrNotInitialized
	}

	m.dutyRamp.active = false

	if absf(duty-m.duty) < dutyEpsilon {
		return nil
	}

	if err := m.pwm.SetDuty(duty); err != nil {
		return err
	}
	m.duty = duty
	m.settings.Duty = duty
	logln("PWM duty set to " + ftoa1(duty) + "%")
	m.sendPulseLocked()
	return nil
}

// SetFrequencyAndDuty applies both parameters so they take effect in
// the same waveform cycle. Both values are validated before any
// hardware write; a single notification pulse covers the pair.
func (m *MotorControl) SetFrequencyAndDuty(freqHz uint32, duty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if freqHz < MinFrequency || freqHz > MaxFrequency {
		return ErrInvalidParameter
	}
	if duty < MinDuty || duty > MaxDuty {
		return ErrInvalidParameter
	}
	if !m.pwmOK {
		return ErrNotInitialized
	}

	m.freqRamp.active = false
	m.dutyRamp.active = false

	freqChanged := freqHz != m.frequency
	dutyChanged := absf(duty-m.duty) >= dutyEpsilon

	switch {
	case !freqChanged && !dutyChanged:
		return nil
	case !dutyChanged:
		if err := m.pwm.SetFrequency(freqHz); err != nil {
			return err
		}
		m.frequency = freqHz
		m.settings.Frequency = freqHz
	case !freqChanged:
		if err := m.pwm.SetDuty(duty); err != nil {
			return err
		}
		m.duty = duty
		m.settings.Duty = duty
	default:
		if err := m.pwm.SetFrequencyDuty(freqHz, duty); err != nil {
			return err
		}
		m.frequency = freqHz
		m.duty = duty
		m.settings.Frequency = freqHz
		m.settings.Duty = duty
	}

	m.sendPulseLocked()
	return nil
}

// Frequency returns the current PWM frequency in Hz.
func (m *MotorControl) Frequency() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frequency
}

// Duty returns the current duty cycle in percent.
func (m *MotorControl) Duty() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duty
}

// SetPolePairs sets the motor pole-pair count used by the frequency to
// RPM conversion. Samples already in the filter buffer are not rescaled;
// the new factor applies from the next update on.
func (m *MotorControl) SetPolePairs(pairs uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pairs < MinPolePairs || pairs > MaxPolePairs {
		return ErrInvalidParameter
	}
	if m.settings == nil {
		return ErrNotInitialized
	}
	m.settings.PolePairs = pairs
	logln("motor pole pairs set to " + utoa(uint32(pairs)))
	return nil
}

// PolePairs returns the configured pole-pair count.
func (m *MotorControl) PolePairs() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return 0
	}
	return m.settings.PolePairs
}

// SetFilterWindow changes the RPM moving-average span (1-20).
func (m *MotorControl) SetFilterWindow(window int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.filter.SetWindow(window); err != nil {
		return err
	}
	if m.settings != nil {
		m.settings.FilterWindow = window
	}
	return nil
}

// FilterWindow returns the RPM moving-average span.
func (m *MotorControl) FilterWindow() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter.Window()
}

// SetMaxUserFreq sets the operator frequency ceiling. This is advisory
// for command layers; the facade itself enforces only the hardware
// limits.
func (m *MotorControl) SetMaxUserFreq(freqHz uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if freqHz < MinFrequency || freqHz > MaxFrequency {
		return ErrInvalidParameter
	}
	if m.settings == nil {
		return ErrNotInitialized
	}
	m.settings.MaxUserFreq = freqHz
	return nil
}

// MaxUserFreq returns the operator frequency ceiling.
func (m *MotorControl) MaxUserFreq() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return 0
	}
	return m.settings.MaxUserFreq
}

// SetMaxSafeRPM sets the overspeed threshold used by CheckSafety.
func (m *MotorControl) SetMaxSafeRPM(rpm uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rpm == 0 {
		return ErrInvalidParameter
	}
	if m.settings == nil {
		return ErrNotInitialized
	}
	m.settings.MaxSafeRPM = rpm
	logln("overspeed threshold set to " + utoa(rpm) + " RPM")
	return nil
}

// MaxSafeRPM returns the overspeed threshold.
func (m *MotorControl) MaxSafeRPM() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return 0
	}
	return m.settings.MaxSafeRPM
}

// SetLEDBrightness records the status LED brightness in the settings
// snapshot. Driving the LED itself is the target's business.
func (m *MotorControl) SetLEDBrightness(brightness uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return ErrNotInitialized
	}
	m.settings.LEDBrightness = brightness
	return nil
}

// LEDBrightness returns the configured status LED brightness.
func (m *MotorControl) LEDBrightness() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return 0
	}
	return m.settings.LEDBrightness
}

// ApplySettings replaces the live configuration wholesale, as after a
// settings reload or factory reset. The PWM output follows the new
// frequency and duty immediately and any active ramp is canceled. On
// error nothing changes: the hardware write happens before any state
// is replaced, so a rejected write leaves the previous configuration,
// filter window included, fully in place.
func (m *MotorControl) ApplySettings(s *Settings) error {
	if s == nil {
		return ErrInvalidParameter
	}
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil || !m.pwmOK {
		return ErrNotInitialized
	}

	freqChanged := s.Frequency != m.frequency
	dutyChanged := absf(s.Duty-m.duty) >= dutyEpsilon
	if freqChanged || dutyChanged {
		if err := m.pwm.SetFrequencyDuty(s.Frequency, s.Duty); err != nil {
			return err
		}
	}

	m.freqRamp.active = false
	m.dutyRamp.active = false

	cp := *s
	m.settings = &cp
	m.frequency = cp.Frequency
	m.duty = cp.Duty
	m.filter.SetWindow(cp.FilterWindow) // range already validated

	if freqChanged || dutyChanged {
		logln("settings applied: " + utoa(cp.Frequency) + " Hz, " +
			ftoa1(cp.Duty) + "% duty")
		m.sendPulseLocked()
	}
	return nil
}

// SettingsSnapshot returns a copy of the live settings, suitable for
// persisting.
func (m *MotorControl) SettingsSnapshot() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return DefaultSettings()
	}
	return *m.settings
}

// IsInitialized reports whether the PWM output is up.
func (m *MotorControl) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pwmOK
}

// IsCaptureInitialized reports whether the tach capture channel is up.
func (m *MotorControl) IsCaptureInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captureOK
}

// UptimeMillis returns milliseconds since Begin.
func (m *MotorControl) UptimeMillis() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return millis() - m.initMS
}

// Status returns a consistent snapshot for status consumers.
func (m *MotorControl) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pairs uint8
	if m.settings != nil {
		pairs = m.settings.PolePairs
	}
	return Status{
		FrequencyHz:   m.frequency,
		DutyPercent:   m.duty,
		RawRPM:        m.rawRPM,
		FilteredRPM:   m.filteredRPM,
		InputFreqHz:   m.inputFreq,
		PolePairs:     pairs,
		Ramping:       m.freqRamp.active || m.dutyRamp.active,
		EmergencyStop: m.estopActive,
		UptimeMS:      millis() - m.initMS,
	}
}

func (m *MotorControl) sendPulseLocked() {
	if m.pulse != nil {
		m.pulse.Pulse()
	}
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
