//go:build rp2040

// Motor controller firmware for RP2040 boards. Wires the motor core to
// the hardware: PWM slice output, interrupt-driven tach capture against
// the 1 MHz timer, a PIO-generated notification pulse, a WS2812 status
// LED and a USB CDC console speaking the text command interface.
package main

import (
	"machine"
	"time"

	"motordrive/command"
	"motordrive/core"
)

// Board pinout. The tach input needs an edge per pole-pair revolution;
// the pulse line is watched by external instrumentation.
const (
	pwmPin   = machine.GP16
	tachPin  = machine.GP17
	pulsePin = machine.GP18
	ledPin   = machine.GP22 // WS2812 data
)

const tickMS = 10

func main() {
	// Clear any watchdog state carried across a reset.
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	initClock()

	core.SetDebugWriter(func(msg string) {
		machine.Serial.Write([]byte(msg))
		machine.Serial.Write([]byte("\r\n"))
	})

	settings := core.DefaultSettings()

	motor := core.New(
		NewMotorPWM(pwmPin),
		NewTachInput(tachPin),
		NewPulsePIO(0, 0, pulsePin),
	)
	led := NewStatusLED(ledPin, settings.LEDBrightness)

	if err := motor.Begin(&settings); err != nil {
		// PWM bring-up failed; nothing to control. Show the fault and
		// let the watchdog stay off so the LED keeps blinking.
		for {
			led.Update(core.Status{EmergencyStop: true}, false,
				uint32(hardwareUptime()/1000))
			time.Sleep(blinkFastMS * time.Millisecond)
		}
	}

	// No persistent settings store on this target yet; SAVE and LOAD
	// report that. TODO: back the store with the last flash sector once
	// the TinyGo flash API stabilizes.
	dispatcher := command.New(motor, nil)
	dispatcher.OnBrightness = led.SetBrightness

	console := NewConsole(dispatcher)

	// Hardware watchdog backs the software one: if the loop wedges or
	// the software check fails, updates stop and the chip resets.
	machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: 2 * core.WatchdogTimeoutMS,
	})
	machine.Watchdog.Start()

	var sinceRPM, sinceLED uint32
	for {
		console.Poll()
		motor.UpdateRamps()
		motor.FeedWatchdog()

		sinceRPM += tickMS
		if sinceRPM >= settings.RPMUpdateMS {
			sinceRPM = 0
			motor.UpdateRPM()
			motor.CheckSafety()
		}

		sinceLED += tickMS
		if sinceLED >= 50 {
			sinceLED = 0
			led.Update(motor.Status(), motor.IsCaptureInitialized(),
				uint32(hardwareUptime()/1000))
		}

		if motor.CheckWatchdog() {
			machine.Watchdog.Update()
		}

		time.Sleep(tickMS * time.Millisecond)
	}
}
