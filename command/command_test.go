package command

import (
	"errors"
	"strings"
	"testing"

	"motordrive/core"
)

type nullPWM struct{}

func (nullPWM) Configure(freqHz uint32, duty float64) error        { return nil }
func (nullPWM) SetFrequency(freqHz uint32) error                   { return nil }
func (nullPWM) SetDuty(duty float64) error                         { return nil }
func (nullPWM) SetFrequencyDuty(freqHz uint32, duty float64) error { return nil }
func (nullPWM) Stop() error                                        { return nil }

type nullCapture struct{}

func (nullCapture) Configure(onEdge func(ticks uint32)) error { return nil }
func (nullCapture) ClockHz() uint32                           { return 1000000 }

type memStore struct {
	saved *core.Settings
}

func (s *memStore) Load() (*core.Settings, error) {
	if s.saved == nil {
		return nil, errors.New("nothing saved")
	}
	cp := *s.saved
	return &cp, nil
}

func (s *memStore) Save(set *core.Settings) error {
	cp := *set
	s.saved = &cp
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *core.MotorControl, *memStore) {
	t.Helper()

	motor := core.New(nullPWM{}, nullCapture{}, nil)
	settings := core.DefaultSettings()
	if err := motor.Begin(&settings); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	store := &memStore{}
	return New(motor, store), motor, store
}

func TestIdentity(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	reply, err := d.Execute("*IDN?")
	if err != nil {
		t.Fatalf("*IDN? failed: %v", err)
	}
	if reply != Identity {
		t.Errorf("reply = %q, want %q", reply, Identity)
	}
}

func TestVerbsAreCaseInsensitive(t *testing.T) {
	d, motor, _ := newTestDispatcher(t)
	if _, err := d.Execute("set pwm_freq 20000"); err != nil {
		t.Fatalf("lowercase command failed: %v", err)
	}
	if got := motor.Frequency(); got != 20000 {
		t.Errorf("Frequency() = %d, want 20000", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	if _, err := d.Execute("FROBNICATE"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestEmptyLineIsNoOp(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	reply, err := d.Execute("   ")
	if err != nil || reply != "" {
		t.Errorf("Execute(blank) = (%q, %v), want empty no-op", reply, err)
	}
}

func TestSetClampsIntoRange(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		check   func(m *core.MotorControl) bool
		clamped bool
	}{
		{"freq below floor", "SET PWM_FREQ 5",
			func(m *core.MotorControl) bool { return m.Frequency() == core.MinFrequency }, true},
		{"freq above ceiling", "SET PWM_FREQ 900000",
			func(m *core.MotorControl) bool { return m.Frequency() == core.MaxFrequency }, true},
		{"freq in range", "SET PWM_FREQ 25000",
			func(m *core.MotorControl) bool { return m.Frequency() == 25000 }, false},
		{"duty above max", "SET PWM_DUTY 150",
			func(m *core.MotorControl) bool { return m.Duty() == 100 }, true},
		{"filter above max", "SET RPM_FILTER_SIZE 99",
			func(m *core.MotorControl) bool { return m.FilterWindow() == core.MaxFilterWindow }, true},
		{"pole pairs zero", "SET POLE_PAIRS 0",
			func(m *core.MotorControl) bool { return m.PolePairs() == core.MinPolePairs }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, motor, _ := newTestDispatcher(t)
			reply, err := d.Execute(tc.line)
			if err != nil {
				t.Fatalf("Execute(%q) failed: %v", tc.line, err)
			}
			if !tc.check(motor) {
				t.Errorf("Execute(%q) left wrong motor state", tc.line)
			}
			if got := strings.Contains(reply, "clamped"); got != tc.clamped {
				t.Errorf("reply %q clamped note = %v, want %v", reply, got, tc.clamped)
			}
		})
	}
}

func TestSetFrequencyRespectsOperatorCeiling(t *testing.T) {
	d, motor, _ := newTestDispatcher(t)

	if _, err := d.Execute("SET MAX_FREQ 30000"); err != nil {
		t.Fatalf("SET MAX_FREQ failed: %v", err)
	}
	reply, err := d.Execute("SET PWM_FREQ 50000")
	if err != nil {
		t.Fatalf("SET PWM_FREQ failed: %v", err)
	}
	if got := motor.Frequency(); got != 30000 {
		t.Errorf("Frequency() = %d, want ceiling 30000", got)
	}
	if !strings.Contains(reply, "SET MAX_FREQ") {
		t.Errorf("reply %q does not point at the ceiling command", reply)
	}
}

func TestSetBadSyntax(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	for _, line := range []string{"SET", "SET PWM_FREQ", "SET PWM_FREQ abc", "SET NO_SUCH 1"} {
		if _, err := d.Execute(line); !errors.Is(err, ErrUsage) {
			t.Errorf("Execute(%q) err = %v, want ErrUsage", line, err)
		}
	}
}

func TestMotorStopGatesDuty(t *testing.T) {
	d, motor, _ := newTestDispatcher(t)

	if _, err := d.Execute("SET PWM_DUTY 40"); err != nil {
		t.Fatalf("SET PWM_DUTY failed: %v", err)
	}
	if _, err := d.Execute("MOTOR STOP"); err != nil {
		t.Fatalf("MOTOR STOP failed: %v", err)
	}
	if got := motor.Duty(); got != 0 {
		t.Fatalf("Duty() = %v after MOTOR STOP, want 0", got)
	}

	if _, err := d.Execute("SET PWM_DUTY 40"); !errors.Is(err, ErrStopped) {
		t.Errorf("SET PWM_DUTY while stopped: err = %v, want ErrStopped", err)
	}
	if _, err := d.Execute("RAMP PWM_DUTY 40 1000"); !errors.Is(err, ErrStopped) {
		t.Errorf("RAMP PWM_DUTY while stopped: err = %v, want ErrStopped", err)
	}

	if _, err := d.Execute("MOTOR RESUME"); err != nil {
		t.Fatalf("MOTOR RESUME failed: %v", err)
	}
	if _, err := d.Execute("SET PWM_DUTY 40"); err != nil {
		t.Errorf("SET PWM_DUTY after resume failed: %v", err)
	}
	if got := motor.Duty(); got != 40 {
		t.Errorf("Duty() = %v after resume, want 40", got)
	}
}

func TestRampCommand(t *testing.T) {
	d, motor, _ := newTestDispatcher(t)

	if _, err := d.Execute("RAMP PWM_DUTY 80 1000"); err != nil {
		t.Fatalf("RAMP PWM_DUTY failed: %v", err)
	}
	if !motor.IsRamping() {
		t.Error("IsRamping() = false after RAMP command")
	}

	if _, err := d.Execute("RAMP PWM_DUTY 80"); !errors.Is(err, ErrUsage) {
		t.Error("RAMP with missing duration did not fail with ErrUsage")
	}
	if _, err := d.Execute("RAMP VOLUME 5 100"); !errors.Is(err, ErrUsage) {
		t.Error("RAMP with unknown parameter did not fail with ErrUsage")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	d, motor, store := newTestDispatcher(t)

	if _, err := d.Execute("SET PWM_FREQ 44000"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Execute("SAVE"); err != nil {
		t.Fatalf("SAVE failed: %v", err)
	}
	if store.saved == nil || store.saved.Frequency != 44000 {
		t.Fatalf("store holds %+v, want frequency 44000", store.saved)
	}

	if _, err := d.Execute("SET PWM_FREQ 12000"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Execute("LOAD"); err != nil {
		t.Fatalf("LOAD failed: %v", err)
	}
	if got := motor.Frequency(); got != 44000 {
		t.Errorf("Frequency() = %d after LOAD, want 44000", got)
	}
}

func TestResetRestoresFactorySettings(t *testing.T) {
	d, motor, store := newTestDispatcher(t)

	if _, err := d.Execute("SET PWM_FREQ 44000"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Execute("RESET"); err != nil {
		t.Fatalf("RESET failed: %v", err)
	}

	def := core.DefaultSettings()
	if got := motor.Frequency(); got != def.Frequency {
		t.Errorf("Frequency() = %d after RESET, want default %d", got, def.Frequency)
	}
	if store.saved == nil || store.saved.Frequency != def.Frequency {
		t.Errorf("RESET did not persist factory settings: %+v", store.saved)
	}
}

func TestBrightnessCallback(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	var got uint8
	d.OnBrightness = func(b uint8) { got = b }

	if _, err := d.Execute("SET LED_BRIGHTNESS 64"); err != nil {
		t.Fatalf("SET LED_BRIGHTNESS failed: %v", err)
	}
	if got != 64 {
		t.Errorf("brightness callback got %d, want 64", got)
	}
}

func TestHelpListsEveryVerb(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	reply, err := d.Execute("HELP")
	if err != nil {
		t.Fatalf("HELP failed: %v", err)
	}
	for _, verb := range []string{"SET", "RAMP", "MOTOR", "SAVE", "LOAD", "RESET", "STATUS", "RPM"} {
		if !strings.Contains(reply, verb) {
			t.Errorf("HELP output missing %q", verb)
		}
	}
}
