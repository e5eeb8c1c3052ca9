package core

// rampState tracks one time-bounded linear interpolation toward a
// target. One instance per ramped parameter; created on request,
// cleared when the deadline passes.
type rampState struct {
	active   bool
	start    float64
	target   float64
	startMS  uint32
	duration uint32
}

// valueAt interpolates for the given time. Correctness does not depend
// on tick cadence: any call at or past the deadline yields the exact
// target.
func (r *rampState) valueAt(now uint32) (value float64, done bool) {
	elapsed := now - r.startMS
	if elapsed >= r.duration {
		return r.target, true
	}
	progress := float64(elapsed) / float64(r.duration)
	return r.start + (r.target-r.start)*progress, false
}

// RampFrequencyTo moves the PWM frequency linearly to target over
// durationMS. A zero duration applies immediately, equivalent to
// SetFrequency. The target is validated before the ramp starts.
func (m *MotorControl) RampFrequencyTo(freqHz uint32, durationMS uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if freqHz < MinFrequency || freqHz > MaxFrequency {
		return ErrInvalidParameter
	}
	if !m.pwmOK {
		return ErrNotInitialized
	}
	if durationMS == 0 {
		return m.setFrequencyLocked(freqHz)
	}

	m.freqRamp = rampState{
		active:   true,
		start:    float64(m.frequency),
		target:   float64(freqHz),
		startMS:  millis(),
		duration: durationMS,
	}
	logln("frequency ramp: " + utoa(m.frequency) + " Hz -> " +
		utoa(freqHz) + " Hz over " + utoa(durationMS) + " ms")
	return nil
}

// RampDutyTo moves the duty cycle linearly to target over durationMS.
// Same contract as RampFrequencyTo.
func (m *MotorControl) RampDutyTo(duty float64, durationMS uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if duty < MinDuty || duty > MaxDuty {
		return ErrInvalidParameter
	}
	if !m.pwmOK {
		return ErrNotInitialized
	}
	if durationMS == 0 {
		return m.setDutyLocked(duty)
	}

	m.dutyRamp = rampState{
		active:   true,
		start:    m.duty,
		target:   duty,
		startMS:  millis(),
		duration: durationMS,
	}
	logln("duty ramp: " + ftoa1(m.duty) + "% -> " + ftoa1(duty) +
		"% over " + utoa(durationMS) + " ms")
	return nil
}

// IsRamping reports whether any ramp is in progress.
func (m *MotorControl) IsRamping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.freqRamp.active || m.dutyRamp.active
}

// UpdateRamps advances active ramps. Call it on a ~10-20 ms cadence
// from the task context. Intermediate values go straight to the PWM
// driver, bypassing change detection; when frequency and duty both move
// in the same tick the combined driver call keeps the pair in one
// waveform cycle. Completion sets the exact target and fires a single
// notification pulse.
func (m *MotorControl) UpdateRamps() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.pwmOK {
		return
	}
	fActive := m.freqRamp.active
	dActive := m.dutyRamp.active
	if !fActive && !dActive {
		return
	}

	now := millis()
	var (
		newFreq      uint32
		newDuty      float64
		fDone, dDone bool
	)
	if fActive {
		v, done := m.freqRamp.valueAt(now)
		newFreq = uint32(v)
		fDone = done
	}
	if dActive {
		newDuty, dDone = m.dutyRamp.valueAt(now)
	}

	var err error
	switch {
	case fActive && dActive:
		err = m.pwm.SetFrequencyDuty(newFreq, newDuty)
		if err == nil {
			m.frequency = newFreq
			m.duty = newDuty
		}
	case fActive:
		err = m.pwm.SetFrequency(newFreq)
		if err == nil {
			m.frequency = newFreq
		}
	default:
		err = m.pwm.SetDuty(newDuty)
		if err == nil {
			m.duty = newDuty
		}
	}
	if err != nil {
		logln("ramp update rejected by PWM driver: " + err.Error())
		return
	}

	completed := false
	if fDone {
		m.freqRamp.active = false
		m.settings.Frequency = m.frequency
		completed = true
	}
	if dDone {
		m.dutyRamp.active = false
		m.settings.Duty = m.duty
		completed = true
	}
	if completed {
		m.sendPulseLocked()
	}
}
