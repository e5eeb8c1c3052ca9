// motorctl is an interactive console for a motor controller attached
// over a serial link. Lines typed at the prompt go to the controller's
// text command interface; replies stream back to stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"motordrive/host/serial"
)

var (
	device = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud   = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to motor controller on %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	// Controller replies stream back asynchronously; print them as they
	// arrive so RAMP progress and safety warnings show up unprompted.
	go func() {
		if err := pumpReplies(port, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: read failed: %v\n", err)
		}
	}()

	fmt.Println("Connected. Type 'help' for commands, 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return
		}

		if _, err := port.Write([]byte(line + "\n")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

// pumpReplies copies controller output to w until the link closes.
// Any read error ends the pump; a detached device must not leave the
// loop spinning on a dead port.
func pumpReplies(port io.Reader, w io.Writer) error {
	buf := make([]byte, 512)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			w.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
