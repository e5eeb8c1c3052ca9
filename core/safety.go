package core

const (
	// safetyGraceMS is the startup window during which stall detection
	// stays quiet while the motor spins up.
	safetyGraceMS = 5000

	// staleRPMMS is how long without an RPM update before the stall
	// heuristic considers the reading stale.
	staleRPMMS = 2000

	stallDutyPct  = 10.0
	stallRPMFloor = 100.0
)

// CheckSafety evaluates overspeed and stall conditions and reports
// whether all checks pass. Overspeed fails the check and, when
// Settings.AutoStopOnOverspeed is set, triggers an emergency stop as a
// side effect. The stall heuristic is advisory only: some valid
// low-speed operating points are indistinguishable from a stall, so it
// logs a warning and does not fail the check.
func (m *MotorControl) CheckSafety() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings == nil {
		return false
	}

	if m.filteredRPM > float64(m.settings.MaxSafeRPM) && m.filteredRPM > 0 {
		logln("OVERSPEED: " + ftoa1(m.filteredRPM) + " RPM (max " +
			utoa(m.settings.MaxSafeRPM) + " RPM)")
		if m.settings.AutoStopOnOverspeed {
			m.emergencyStopLocked()
		}
		return false
	}

	now := millis()
	if m.duty > stallDutyPct && m.filteredRPM < stallRPMFloor &&
		now-m.initMS > safetyGraceMS &&
		now-m.lastRPMUpdate > staleRPMMS {
		logln("possible motor stall: duty above 10% with RPM below 100")
	}

	return true
}

// EmergencyStop forces duty to 0% immediately, bypassing ramping and
// change detection, and latches the stop state. The state is sticky:
// only ClearEmergencyStop releases it, never the supervisor or time.
func (m *MotorControl) EmergencyStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emergencyStopLocked()
}

func (m *MotorControl) emergencyStopLocked() {
	if !m.pwmOK {
		return
	}

	// A duty ramp would immediately fight the forced 0%, so it dies
	// here. A frequency ramp carries no drive energy and may finish.
	m.dutyRamp.active = false

	m.pwm.SetDuty(0)
	m.duty = 0
	m.settings.Duty = 0
	m.estopRPM = m.filteredRPM
	m.estopActive = true

	logln("EMERGENCY STOP: duty forced to 0% at " + ftoa1(m.estopRPM) + " RPM")
}

// ClearEmergencyStop releases the latched stop. Operator action only.
func (m *MotorControl) ClearEmergencyStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estopActive = false
	logln("emergency stop cleared, normal operation resumed")
}

// EmergencyStopActive reports the latched stop state.
func (m *MotorControl) EmergencyStopActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estopActive
}

// EmergencyStopRPM returns the RPM observed at the moment of the most
// recent emergency stop.
func (m *MotorControl) EmergencyStopRPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estopRPM
}
