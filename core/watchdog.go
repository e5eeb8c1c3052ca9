package core

// WatchdogTimeoutMS is the liveness deadline for the control loop.
const WatchdogTimeoutMS = 5000

// FeedWatchdog marks the control loop alive. The watchdog arms itself
// on the first feed.
func (m *MotorControl) FeedWatchdog() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFeedMS = millis()
	if !m.watchdogOn {
		m.watchdogOn = true
		logln("watchdog armed (timeout " + utoa(WatchdogTimeoutMS) + " ms)")
	}
}

// CheckWatchdog reports false when the loop has not fed within
// WatchdogTimeoutMS. An unarmed watchdog always passes. Acting on a
// failed check (system reset) is outside this core.
func (m *MotorControl) CheckWatchdog() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.watchdogOn {
		return true
	}
	elapsed := millis() - m.lastFeedMS
	if elapsed > WatchdogTimeoutMS {
		logln("WATCHDOG TIMEOUT: " + utoa(elapsed) + " ms since last feed")
		return false
	}
	return true
}
