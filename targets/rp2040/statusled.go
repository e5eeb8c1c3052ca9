//go:build rp2040

package main

import (
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers/ws2812"

	"motordrive/core"
)

// Status colors. The WS2812 shows system state at a glance:
// green idle, blue running, red fast-blink on emergency stop,
// yellow blink while the tachometer is down.
var (
	ledGreen  = color.RGBA{G: 255}
	ledBlue   = color.RGBA{B: 255}
	ledRed    = color.RGBA{R: 255}
	ledYellow = color.RGBA{R: 255, G: 255}
	ledOff    = color.RGBA{}
)

const (
	blinkFastMS = 100
	blinkSlowMS = 500
)

// StatusLED drives the onboard WS2812 from the motor status snapshot.
type StatusLED struct {
	dev        ws2812.Device
	brightness uint8
	lastToggle uint32
	blinkOn    bool
}

// NewStatusLED creates the LED driver on the given data pin.
func NewStatusLED(pin machine.Pin, brightness uint8) *StatusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	// WS2812 reset latch before first frame
	time.Sleep(time.Millisecond)
	return &StatusLED{
		dev:        ws2812.NewWS2812(pin),
		brightness: brightness,
	}
}

// SetBrightness rescales all subsequent frames.
func (l *StatusLED) SetBrightness(brightness uint8) {
	l.brightness = brightness
}

// Update picks the color for the current motor state and refreshes the
// LED. Call it from the periodic loop; blink timing runs off the system
// millisecond clock.
func (l *StatusLED) Update(st core.Status, captureOK bool, nowMS uint32) {
	switch {
	case st.EmergencyStop:
		l.blink(ledRed, blinkFastMS, nowMS)
	case !captureOK:
		l.blink(ledYellow, blinkSlowMS, nowMS)
	case st.DutyPercent > 0:
		l.solid(ledBlue)
	default:
		l.solid(ledGreen)
	}
}

func (l *StatusLED) blink(c color.RGBA, periodMS, nowMS uint32) {
	if nowMS-l.lastToggle >= periodMS {
		l.lastToggle = nowMS
		l.blinkOn = !l.blinkOn
	}
	if l.blinkOn {
		l.solid(c)
	} else {
		l.solid(ledOff)
	}
}

func (l *StatusLED) solid(c color.RGBA) {
	scaled := color.RGBA{
		R: uint8(uint16(c.R) * uint16(l.brightness) / 255),
		G: uint8(uint16(c.G) * uint16(l.brightness) / 255),
		B: uint8(uint16(c.B) * uint16(l.brightness) / 255),
	}
	l.dev.WriteColors([]color.RGBA{scaled})
}
