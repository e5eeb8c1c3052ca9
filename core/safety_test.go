package core

import (
	"strings"
	"testing"
)

func TestOverspeedBoundary(t *testing.T) {
	cases := []struct {
		name string
		rpm  float64
		pass bool
	}{
		{"well under", 1000, true},
		{"exactly at limit", 5000, true},
		{"one over", 5001, false},
		{"zero reading", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig(t) // MaxSafeRPM = 5000
			rig.motor.filteredRPM = tc.rpm
			if got := rig.motor.CheckSafety(); got != tc.pass {
				t.Errorf("CheckSafety() with %v RPM = %v, want %v", tc.rpm, got, tc.pass)
			}
		})
	}
}

func TestOverspeedReportOnlyByDefault(t *testing.T) {
	rig := newTestRig(t)
	rig.motor.SetDuty(50)
	rig.motor.filteredRPM = 9000

	if rig.motor.CheckSafety() {
		t.Error("CheckSafety() passed while overspeeding")
	}
	if rig.motor.EmergencyStopActive() {
		t.Error("report-only policy triggered an emergency stop")
	}
	if got := rig.motor.Duty(); got != 50 {
		t.Errorf("Duty() = %v, want 50 (untouched)", got)
	}
}

func TestOverspeedAutoStop(t *testing.T) {
	rig := newTestRig(t)
	rig.motor.settings.AutoStopOnOverspeed = true
	rig.motor.SetDuty(50)
	rig.motor.filteredRPM = 9000

	if rig.motor.CheckSafety() {
		t.Error("CheckSafety() passed while overspeeding")
	}
	if !rig.motor.EmergencyStopActive() {
		t.Error("auto-stop policy did not trigger an emergency stop")
	}
	if got := rig.motor.Duty(); got != 0 {
		t.Errorf("Duty() = %v after auto stop, want 0", got)
	}
	if got := rig.motor.EmergencyStopRPM(); got != 9000 {
		t.Errorf("EmergencyStopRPM() = %v, want 9000", got)
	}
}

func TestStallAdvisory(t *testing.T) {
	cases := []struct {
		name    string
		duty    float64
		rpm     float64
		advance uint32
		fresh   bool // a recent RPM update keeps the reading non-stale
		warn    bool
	}{
		{"all conditions hold", 50, 20, 6000, false, true},
		{"inside startup grace", 50, 20, 4000, false, false},
		{"rpm reading still fresh", 50, 20, 6000, true, false},
		{"duty near idle", 5, 20, 6000, false, false},
		{"motor actually turning", 50, 3000, 6000, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig(t)
			if err := rig.motor.SetDuty(tc.duty); err != nil {
				t.Fatalf("SetDuty failed: %v", err)
			}
			rig.motor.filteredRPM = tc.rpm
			rig.clock.advance(tc.advance)
			if tc.fresh {
				rig.motor.lastRPMUpdate = rig.clock.now - 100
			}

			var logs []string
			SetDebugWriter(func(msg string) { logs = append(logs, msg) })
			t.Cleanup(func() { SetDebugWriter(func(string) {}) })

			// Advisory only: the check passes whether or not it warns.
			if !rig.motor.CheckSafety() {
				t.Error("CheckSafety() failed on a stall warning")
			}

			warned := false
			for _, msg := range logs {
				if strings.Contains(msg, "stall") {
					warned = true
				}
			}
			if warned != tc.warn {
				t.Errorf("stall warning logged = %v, want %v\nlogs: %q", warned, tc.warn, logs)
			}
		})
	}
}

func TestEmergencyStopSticky(t *testing.T) {
	rig := newTestRig(t)
	rig.motor.SetDuty(75)

	rig.motor.EmergencyStop()
	if got := rig.motor.Duty(); got != 0 {
		t.Errorf("Duty() = %v after EmergencyStop, want 0", got)
	}
	if !rig.motor.EmergencyStopActive() {
		t.Fatal("EmergencyStopActive() = false after EmergencyStop")
	}

	// Nothing but the explicit clear releases it: not time, not the
	// supervisor, not the periodic ticks.
	rig.clock.advance(60000)
	rig.motor.UpdateRPM()
	rig.motor.UpdateRamps()
	rig.motor.CheckSafety()
	if !rig.motor.EmergencyStopActive() {
		t.Error("emergency stop released without operator action")
	}

	rig.motor.ClearEmergencyStop()
	if rig.motor.EmergencyStopActive() {
		t.Error("ClearEmergencyStop did not release the stop")
	}
}

func TestEmergencyStopBypassesRamp(t *testing.T) {
	rig := newTestRig(t)

	if err := rig.motor.RampDutyTo(90, 1000); err != nil {
		t.Fatalf("duty ramp failed: %v", err)
	}
	rig.clock.advance(300)
	rig.motor.UpdateRamps()

	rig.motor.EmergencyStop()
	if got := rig.motor.Duty(); got != 0 {
		t.Errorf("Duty() = %v after stop, want 0", got)
	}

	// The canceled duty ramp must not drive the output back up.
	rig.clock.advance(300)
	rig.motor.UpdateRamps()
	if got := rig.motor.Duty(); got != 0 {
		t.Errorf("Duty() = %v one tick after stop, want 0", got)
	}
}

func TestWatchdog(t *testing.T) {
	rig := newTestRig(t)

	// Unarmed watchdog always passes.
	if !rig.motor.CheckWatchdog() {
		t.Error("unarmed watchdog failed")
	}

	rig.motor.FeedWatchdog()
	rig.clock.advance(WatchdogTimeoutMS)
	if !rig.motor.CheckWatchdog() {
		t.Error("watchdog failed at exactly the timeout")
	}

	rig.clock.advance(1)
	if rig.motor.CheckWatchdog() {
		t.Error("watchdog passed past the timeout")
	}

	// A feed recovers it.
	rig.motor.FeedWatchdog()
	if !rig.motor.CheckWatchdog() {
		t.Error("watchdog failed right after a feed")
	}
}
