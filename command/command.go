// Package command implements the text command surface over the motor
// core: SET/RAMP parameter commands, MOTOR control, status queries and
// settings persistence. One Dispatcher serves every console (serial,
// simulator) so all transports see identical behavior.
//
// Policy split with the core: the core rejects out-of-range values,
// the command layer clamps them into range and says so in the reply.
// An operator typo becomes the nearest safe value instead of a dead
// prompt.
package command

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/google/shlex"

	"motordrive/core"
)

// Identity is the *IDN? response.
const Identity = "MOTORDRIVE,PWM-TACH,0,2.0"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad command syntax")

	// ErrStopped gates drive commands while the emergency stop is
	// latched. MOTOR RESUME releases it.
	ErrStopped = errors.New("emergency stop active, MOTOR RESUME to re-enable drive")
)

// Store persists motor settings. config.Store satisfies it; targets
// with flash-backed storage provide their own.
type Store interface {
	Load() (*core.Settings, error)
	Save(*core.Settings) error
}

// Handler executes one command verb. args holds the tokens after the
// verb, case preserved.
type Handler func(d *Dispatcher, args []string) (string, error)

type command struct {
	verb    string
	help    string
	handler Handler
}

// Dispatcher routes command lines to handlers. Execute serializes
// callers, so serial and network consoles may share one instance.
type Dispatcher struct {
	mu    sync.Mutex
	motor *core.MotorControl
	store Store

	commands map[string]*command
	order    []string

	// OnBrightness, when set, is called after SET LED_BRIGHTNESS so the
	// target can drive the physical LED.
	OnBrightness func(brightness uint8)
}

// New builds a dispatcher with the standard verb set. store may be nil
// when the target has no persistence; SAVE and LOAD then report that.
func New(motor *core.MotorControl, store Store) *Dispatcher {
	d := &Dispatcher{
		motor:    motor,
		store:    store,
		commands: make(map[string]*command),
	}

	d.register("*IDN?", "identity string", handleIDN)
	d.register("HELP", "list commands", handleHelp)
	d.register("STATUS", "core status summary", handleStatus)
	d.register("RPM", "tachometer readout", handleRPM)
	d.register("FILTER", "FILTER STATUS - RPM filter state", handleFilter)
	d.register("SET", "SET <PWM_FREQ|PWM_DUTY|RPM_FILTER_SIZE|POLE_PAIRS|MAX_FREQ|MAX_RPM|LED_BRIGHTNESS> <value>", handleSet)
	d.register("RAMP", "RAMP <PWM_FREQ|PWM_DUTY> <value> <time_ms>", handleRamp)
	d.register("MOTOR", "MOTOR <STOP|RESUME|STATUS>", handleMotor)
	d.register("RESUME", "clear the emergency stop", handleResume)
	d.register("SAVE", "persist current settings", handleSave)
	d.register("LOAD", "reload persisted settings", handleLoad)
	d.register("RESET", "restore factory settings", handleReset)

	return d
}

func (d *Dispatcher) register(verb, help string, h Handler) {
	d.commands[verb] = &command{verb: verb, help: help, handler: h}
	d.order = append(d.order, verb)
}

// Execute parses and runs one command line. The returned string is the
// operator-facing reply; errors are returned, not formatted, so each
// console can render them its own way.
func (d *Dispatcher) Execute(line string) (string, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return "", ErrUsage
	}
	if len(tokens) == 0 {
		return "", nil
	}

	verb := strings.ToUpper(tokens[0])
	cmd, ok := d.commands[verb]
	if !ok {
		return "", ErrUnknownCommand
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return cmd.handler(d, tokens[1:])
}

func handleIDN(d *Dispatcher, args []string) (string, error) {
	return Identity, nil
}

func handleHelp(d *Dispatcher, args []string) (string, error) {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, verb := range d.order {
		c := d.commands[verb]
		b.WriteString("  ")
		b.WriteString(c.verb)
		pad := 8 - len(c.verb)
		for pad > 0 {
			b.WriteByte(' ')
			pad--
		}
		b.WriteString(" - ")
		b.WriteString(c.help)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func handleStatus(d *Dispatcher, args []string) (string, error) {
	st := d.motor.Status()

	var b strings.Builder
	b.WriteString("pwm: ")
	b.WriteString(strconv.FormatUint(uint64(st.FrequencyHz), 10))
	b.WriteString(" Hz at ")
	b.WriteString(strconv.FormatFloat(st.DutyPercent, 'f', 1, 64))
	b.WriteString("%\nrpm: ")
	b.WriteString(strconv.FormatFloat(st.FilteredRPM, 'f', 1, 64))
	b.WriteString(" (raw ")
	b.WriteString(strconv.FormatFloat(st.RawRPM, 'f', 1, 64))
	b.WriteString(")\nramping: ")
	b.WriteString(strconv.FormatBool(st.Ramping))
	b.WriteString("\nemergency stop: ")
	b.WriteString(strconv.FormatBool(st.EmergencyStop))
	b.WriteString("\nuptime: ")
	b.WriteString(strconv.FormatUint(uint64(st.UptimeMS), 10))
	b.WriteString(" ms")
	return b.String(), nil
}

func handleRPM(d *Dispatcher, args []string) (string, error) {
	var b strings.Builder
	b.WriteString("rpm: ")
	b.WriteString(strconv.FormatFloat(d.motor.CurrentRPM(), 'f', 1, 64))
	b.WriteString("\ninput frequency: ")
	b.WriteString(strconv.FormatFloat(d.motor.InputFrequency(), 'f', 2, 64))
	b.WriteString(" Hz\npole pairs: ")
	b.WriteString(strconv.FormatUint(uint64(d.motor.PolePairs()), 10))
	return b.String(), nil
}

func handleFilter(d *Dispatcher, args []string) (string, error) {
	if len(args) != 1 || !strings.EqualFold(args[0], "STATUS") {
		return "", ErrUsage
	}
	var b strings.Builder
	b.WriteString("filter window: ")
	b.WriteString(strconv.Itoa(d.motor.FilterWindow()))
	b.WriteString(" samples\nfiltered rpm: ")
	b.WriteString(strconv.FormatFloat(d.motor.CurrentRPM(), 'f', 1, 64))
	b.WriteString("\nraw rpm: ")
	b.WriteString(strconv.FormatFloat(d.motor.RawRPM(), 'f', 1, 64))
	return b.String(), nil
}

func handleSet(d *Dispatcher, args []string) (string, error) {
	if len(args) != 2 {
		return "", ErrUsage
	}
	param := strings.ToUpper(args[0])
	value := args[1]

	switch param {
	case "PWM_FREQ":
		return d.setFrequency(value)
	case "PWM_DUTY":
		return d.setDuty(value)
	case "RPM_FILTER_SIZE":
		return d.setFilterSize(value)
	case "POLE_PAIRS":
		return d.setPolePairs(value)
	case "MAX_FREQ":
		return d.setMaxFreq(value)
	case "MAX_RPM":
		return d.setMaxRPM(value)
	case "LED_BRIGHTNESS":
		return d.setBrightness(value)
	}
	return "", ErrUsage
}

func (d *Dispatcher) setFrequency(value string) (string, error) {
	req, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", ErrUsage
	}

	// The operator ceiling caps before the hardware limits do.
	ceiling := d.motor.MaxUserFreq()
	if ceiling == 0 || ceiling > core.MaxFrequency {
		ceiling = core.MaxFrequency
	}
	freq, clamped := clampU32(uint32(req), core.MinFrequency, ceiling)

	if err := d.motor.SetFrequency(freq); err != nil {
		return "", err
	}
	reply := "pwm frequency " + strconv.FormatUint(uint64(freq), 10) + " Hz"
	if clamped {
		reply += clampNote(value)
		if uint32(req) > ceiling {
			reply += ", raise with SET MAX_FREQ"
		}
	}
	return reply, nil
}

func (d *Dispatcher) setDuty(value string) (string, error) {
	if d.motor.EmergencyStopActive() {
		return "", ErrStopped
	}
	req, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "", ErrUsage
	}
	duty, clamped := clampF(req, core.MinDuty, core.MaxDuty)

	if err := d.motor.SetDuty(duty); err != nil {
		return "", err
	}
	reply := "pwm duty " + strconv.FormatFloat(duty, 'f', 1, 64) + "%"
	if clamped {
		reply += clampNote(value)
	}
	return reply, nil
}

func (d *Dispatcher) setFilterSize(value string) (string, error) {
	req, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", ErrUsage
	}
	size, clamped := clampU32(uint32(req), 1, core.MaxFilterWindow)

	if err := d.motor.SetFilterWindow(int(size)); err != nil {
		return "", err
	}
	reply := "rpm filter window " + strconv.FormatUint(uint64(size), 10) + " samples"
	if clamped {
		reply += clampNote(value)
	}
	return reply, nil
}

func (d *Dispatcher) setPolePairs(value string) (string, error) {
	req, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", ErrUsage
	}
	pairs, clamped := clampU32(uint32(req), core.MinPolePairs, core.MaxPolePairs)

	if err := d.motor.SetPolePairs(uint8(pairs)); err != nil {
		return "", err
	}
	reply := "pole pairs " + strconv.FormatUint(uint64(pairs), 10)
	if clamped {
		reply += clampNote(value)
	}
	return reply, nil
}

func (d *Dispatcher) setMaxFreq(value string) (string, error) {
	req, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", ErrUsage
	}
	freq, clamped := clampU32(uint32(req), core.MinFrequency, core.MaxFrequency)

	if err := d.motor.SetMaxUserFreq(freq); err != nil {
		return "", err
	}
	reply := "frequency ceiling " + strconv.FormatUint(uint64(freq), 10) + " Hz"
	if clamped {
		reply += clampNote(value)
	}
	return reply, nil
}

func (d *Dispatcher) setMaxRPM(value string) (string, error) {
	req, err := strconv.ParseUint(value, 10, 32)
	if err != nil || req == 0 {
		return "", ErrUsage
	}

	if err := d.motor.SetMaxSafeRPM(uint32(req)); err != nil {
		return "", err
	}
	return "overspeed threshold " + strconv.FormatUint(req, 10) + " RPM", nil
}

func (d *Dispatcher) setBrightness(value string) (string, error) {
	req, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", ErrUsage
	}
	level, clamped := clampU32(uint32(req), 0, 255)

	if err := d.motor.SetLEDBrightness(uint8(level)); err != nil {
		return "", err
	}
	if d.OnBrightness != nil {
		d.OnBrightness(uint8(level))
	}
	reply := "led brightness " + strconv.FormatUint(uint64(level), 10)
	if clamped {
		reply += clampNote(value)
	}
	return reply, nil
}

func handleRamp(d *Dispatcher, args []string) (string, error) {
	if len(args) != 3 {
		return "", ErrUsage
	}
	param := strings.ToUpper(args[0])

	durationMS, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return "", ErrUsage
	}

	switch param {
	case "PWM_FREQ":
		req, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return "", ErrUsage
		}
		ceiling := d.motor.MaxUserFreq()
		if ceiling == 0 || ceiling > core.MaxFrequency {
			ceiling = core.MaxFrequency
		}
		freq, clamped := clampU32(uint32(req), core.MinFrequency, ceiling)
		if err := d.motor.RampFrequencyTo(freq, uint32(durationMS)); err != nil {
			return "", err
		}
		reply := "ramping frequency to " + strconv.FormatUint(uint64(freq), 10) +
			" Hz over " + strconv.FormatUint(durationMS, 10) + " ms"
		if clamped {
			reply += clampNote(args[1])
		}
		return reply, nil

	case "PWM_DUTY":
		if d.motor.EmergencyStopActive() {
			return "", ErrStopped
		}
		req, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", ErrUsage
		}
		duty, clamped := clampF(req, core.MinDuty, core.MaxDuty)
		if err := d.motor.RampDutyTo(duty, uint32(durationMS)); err != nil {
			return "", err
		}
		reply := "ramping duty to " + strconv.FormatFloat(duty, 'f', 1, 64) +
			"% over " + strconv.FormatUint(durationMS, 10) + " ms"
		if clamped {
			reply += clampNote(args[1])
		}
		return reply, nil
	}
	return "", ErrUsage
}

func handleMotor(d *Dispatcher, args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	switch strings.ToUpper(args[0]) {
	case "STOP":
		d.motor.EmergencyStop()
		return "emergency stop: duty forced to 0% at " +
			strconv.FormatFloat(d.motor.EmergencyStopRPM(), 'f', 1, 64) + " RPM", nil
	case "RESUME":
		return handleResume(d, nil)
	case "STATUS":
		return handleStatus(d, nil)
	}
	return "", ErrUsage
}

func handleResume(d *Dispatcher, args []string) (string, error) {
	if len(args) != 0 {
		return "", ErrUsage
	}
	d.motor.ClearEmergencyStop()
	return "emergency stop cleared", nil
}

func handleSave(d *Dispatcher, args []string) (string, error) {
	if d.store == nil {
		return "", errors.New("no settings store on this target")
	}
	s := d.motor.SettingsSnapshot()
	if err := d.store.Save(&s); err != nil {
		return "", err
	}
	return "settings saved", nil
}

func handleLoad(d *Dispatcher, args []string) (string, error) {
	if d.store == nil {
		return "", errors.New("no settings store on this target")
	}
	s, err := d.store.Load()
	if err != nil {
		return "", err
	}
	if err := d.motor.ApplySettings(s); err != nil {
		return "", err
	}
	return "settings loaded", nil
}

func handleReset(d *Dispatcher, args []string) (string, error) {
	s := core.DefaultSettings()
	if err := d.motor.ApplySettings(&s); err != nil {
		return "", err
	}
	if d.store != nil {
		if err := d.store.Save(&s); err != nil {
			return "", err
		}
	}
	return "factory settings restored", nil
}

func clampU32(v, lo, hi uint32) (uint32, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

func clampF(v, lo, hi float64) (float64, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

func clampNote(requested string) string {
	return " (requested " + requested + ", clamped)"
}
