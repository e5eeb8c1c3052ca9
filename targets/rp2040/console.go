//go:build rp2040

package main

import (
	"machine"

	"motordrive/command"
)

// Console feeds lines from the USB CDC serial port to the command
// dispatcher. Polled from the main loop; no goroutines on target.
type Console struct {
	dispatcher *command.Dispatcher
	buf        [128]byte
	n          int
}

func NewConsole(dispatcher *command.Dispatcher) *Console {
	return &Console{dispatcher: dispatcher}
}

// Poll drains buffered serial input and executes any completed lines.
func (c *Console) Poll() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return
		}

		if b == '\r' || b == '\n' {
			if c.n > 0 {
				c.execute(string(c.buf[:c.n]))
				c.n = 0
			}
			continue
		}

		if c.n < len(c.buf) {
			c.buf[c.n] = b
			c.n++
		}
		// Oversized lines are truncated; the dispatcher rejects the
		// mangled result and the operator sees the syntax error.
	}
}

func (c *Console) execute(line string) {
	reply, err := c.dispatcher.Execute(line)
	if err != nil {
		c.println("error: " + err.Error())
		return
	}
	if reply != "" {
		c.println(reply)
	}
}

func (c *Console) println(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}
