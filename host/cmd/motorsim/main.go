// motorsim runs the full motor controller against a simulated motor,
// exposing the same text command interface the hardware offers over
// serial. Useful for trying command sequences and tuning settings
// without a board on the desk.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"motordrive/command"
	"motordrive/config"
	"motordrive/core"
	"motordrive/targets/sim"
)

var (
	settingsPath = flag.String("settings", "motorsim.json", "Settings file path")
	maxRPM       = flag.Float64("max-rpm", 6000, "Simulated motor speed at 100% duty")
	verbose      = flag.Bool("verbose", false, "Log core diagnostics to stderr")
)

func main() {
	flag.Parse()

	if *verbose {
		core.SetDebugWriter(func(msg string) {
			fmt.Fprintln(os.Stderr, "[core] "+msg)
		})
	}

	plant := sim.NewPlant()
	plant.MaxRPM = *maxRPM

	motor := core.New(plant.PWMDriver(), plant.CaptureDriver(), plant.PulseDriver())

	store := &config.Store{Path: *settingsPath}
	settings, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load settings: %v\n", err)
		os.Exit(1)
	}
	if err := motor.Begin(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: motor init: %v\n", err)
		os.Exit(1)
	}

	dispatcher := command.New(motor, store)

	// The control loop the firmware runs off a hardware timer: ramps at
	// 10 ms, RPM and safety at the configured cadence.
	go controlLoop(plant, motor, settings.RPMUpdateMS)

	fmt.Printf("Simulated motor: %.0f RPM at full duty, %d pole pairs\n",
		plant.MaxRPM, plant.PolePairs)
	fmt.Println("Type 'help' for commands, 'quit' to exit.")
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

		reply, err := dispatcher.Execute(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if reply != "" {
			fmt.Println(reply)
		}
	}
}

func controlLoop(plant *sim.Plant, motor *core.MotorControl, rpmEveryMS uint32) {
	const tickMS = 10

	ticker := time.NewTicker(tickMS * time.Millisecond)
	defer ticker.Stop()

	var sinceRPM uint32
	for range ticker.C {
		plant.Step(tickMS)
		motor.UpdateRamps()
		motor.FeedWatchdog()

		sinceRPM += tickMS
		if sinceRPM >= rpmEveryMS {
			sinceRPM = 0
			motor.UpdateRPM()
			motor.CheckSafety()
		}
	}
}
