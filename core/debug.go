package core

// DebugWriter is a function type for writing log messages
type DebugWriter func(string)

// debugPrintln is the global log sink. No-op by default; platforms
// install a real writer (UART/USB CDC on MCU, stdout on host).
var debugPrintln DebugWriter = func(string) {}

// SetDebugWriter sets the platform-specific log output function.
// This allows platforms to redirect log output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer != nil {
		debugPrintln = writer
	}
}

func logln(msg string) {
	debugPrintln(msg)
}
