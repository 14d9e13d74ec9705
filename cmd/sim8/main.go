// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezrec/sim8/cpu"
	"github.com/ezrec/sim8/emulator"
	"github.com/ezrec/sim8/programs"
	"github.com/ezrec/sim8/trace"
)

func main() {
	config := parseArgs()

	prog, err := loadProgram(config)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if config.List {
		listProgram(os.Stdout, prog)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emu := emulator.NewEmulator()
	emu.Verbose = config.Verbose
	emu.MaxSteps = config.MaxSteps
	emu.Delay = config.Delay
	emu.Port.Output = os.Stdout

	var tr *trace.Tracer
	if config.Trace {
		tr = trace.New(os.Stderr)
		tr.Watch = uint8(config.Watch)
		emu.Observer = tr
	}

	err = emu.Load(prog)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	err = emu.Run(ctx)
	switch {
	case stopped(err):
		if config.Verbose {
			log.Printf("%v: stopped after %d steps: %v", os.Args[0], emu.Ticks(), err)
		}
	case err != nil:
		log.Fatalf("%v: %v", os.Args[0], errors.Wrapf(err, "after %d steps", emu.Ticks()))
	}

	if tr != nil && tr.Err() != nil {
		log.Fatalf("%v: trace: %v", os.Args[0], tr.Err())
	}
}

// stopped is true when a run ended on the step limit or an interrupt,
// the normal ends of a program that never halts.
func stopped(err error) bool {
	return errors.Is(err, emulator.ErrStepLimit) || errors.Is(err, context.Canceled)
}

// loadProgram assembles the configured source file or built-in program.
func loadProgram(c *Config) (prog *cpu.Program, err error) {
	if len(c.Source) != 0 {
		return programs.LoadFile(c.Source, c.Defines.All())
	}

	return programs.Assemble(c.Program, c.Defines.All())
}

// listProgram prints the address, bytes and source of each assembled line.
func listProgram(w io.Writer, prog *cpu.Program) {
	for _, op := range prog.Opcodes {
		var hex []string
		for _, b := range op.Bytes {
			hex = append(hex, fmt.Sprintf("%02x", b))
		}
		fmt.Fprintf(w, "%02x: %-12s %4d: %s\n", op.Pc, strings.Join(hex, " "), op.LineNo, strings.Join(op.Words, " "))
	}
}
