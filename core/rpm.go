package core

// stallTimeoutMS is the signal-loss window: no feedback edge for this
// long (after at least one edge ever) means "stopped", not "unknown".
const stallTimeoutMS = 1000

// UpdateRPM consumes the latest capture sample and refreshes the RPM
// state. Call it periodically (Settings.RPMUpdateMS cadence) from the
// task context; it is the only mutator of the RPM fields.
func (m *MotorControl) UpdateRPM() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.captureOK {
		return
	}

	now := millis()
	if period, ok := m.tach.TakeSample(); ok {
		if period > 0 {
			// frequency = counter clock / period,
			// RPM = frequency * 60 / pole pairs
			m.inputFreq = float64(m.tach.ClockHz()) / float64(period)
			m.rawRPM = m.inputFreq * 60.0 / float64(m.settings.PolePairs)
			m.filteredRPM = m.filter.Apply(m.rawRPM)
			m.lastRPMUpdate = now
		} else {
			m.inputFreq = 0
			m.rawRPM = 0
			m.filteredRPM = 0
		}
		return
	}

	if last, seen := m.tach.LastEdgeMillis(); seen && now-last > stallTimeoutMS {
		m.inputFreq = 0
		m.rawRPM = 0
		m.filteredRPM = 0
	}
}

// CurrentRPM returns the filtered RPM reading.
func (m *MotorControl) CurrentRPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filteredRPM
}

// RawRPM returns the unfiltered RPM of the latest sample.
func (m *MotorControl) RawRPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rawRPM
}

// InputFrequency returns the tachometer input frequency in Hz.
func (m *MotorControl) InputFrequency() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputFreq
}
