// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/sim8/cpu"
	"github.com/ezrec/sim8/internal"
	"github.com/ezrec/sim8/io"
)

const (
	PORT_HISTORY = 4096 // Output values kept by default.
)

var _emulator_defines = map[string]string{
	"PORT_HISTORY": fmt.Sprintf("%d", PORT_HISTORY),
}

// Observer is called after every executed step.
type Observer interface {
	Observe(emu *Emulator)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(emu *Emulator)

// Observe calls the function.
func (fn ObserverFunc) Observe(emu *Emulator) {
	fn(emu)
}

// Emulator state. CPU + program listing + output port.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Port io.Port // Output port, fed by OUTA and OUTI.

	Observer Observer      // Optional; called after each step.
	Delay    time.Duration // Pause between steps in Run.
	MaxSteps int           // Step bound for Run; 0 is unbounded.
}

// NewEmulator creates a new emulator with an empty program loaded.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
	}
	emu.Port.Limit = PORT_HISTORY

	// An empty program always fits.
	emu.Cpu, _ = cpu.NewCpu(nil)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load replaces the program and resets the emulator. On error the
// previous program and machine are kept.
func (emu *Emulator) Load(prog *cpu.Program) (err error) {
	c, err := emu.build(prog)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.start(c)

	return
}

// LoadBinary loads a raw memory image with no listing.
func (emu *Emulator) LoadBinary(bin []byte) (err error) {
	prog := &cpu.Program{}
	if len(bin) > 0 {
		prog.Opcodes = []cpu.Opcode{{Bytes: bin}}
	}
	return emu.Load(prog)
}

// Reset builds a fresh machine from the program and clears the port history.
func (emu *Emulator) Reset() (err error) {
	c, err := emu.build(emu.Program)
	if err != nil {
		return
	}

	emu.start(c)

	return
}

// build creates a machine for a program without touching the emulator.
func (emu *Emulator) build(prog *cpu.Program) (c *cpu.Cpu, err error) {
	c, err = cpu.NewCpu(prog.Binary())
	if err != nil {
		return
	}

	c.Verbose = emu.Verbose

	return
}

// start switches to a freshly built machine.
func (emu *Emulator) start(c *cpu.Cpu) {
	emu.Cpu = c
	emu.Port.Rewind()

	if emu.Verbose {
		log.Printf("emulator: reset, %d byte program", len(emu.Program.Binary()))
	}
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() uint8 {
	return emu.Cpu.Pc()
}

// LineNo returns the source line number for the instruction at PC.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.Pc())
}

// Output returns the values latched by output instructions since reset.
func (emu *Emulator) Output() []uint8 {
	return emu.Port.Values()
}

// Tick performs a single step of the emulator. done is true once the
// machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	code := cpu.Code(emu.Cpu.ReadMemory(pc))

	done, err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	if code == cpu.OP_OUTA || code == cpu.OP_OUTI {
		err = emu.Port.Send(emu.Cpu.O())
		if err != nil {
			return
		}
	}

	if emu.Observer != nil {
		emu.Observer.Observe(emu)
	}

	return
}

// Run steps the emulator until it halts, an error occurs, the context is
// done, or MaxSteps steps have executed.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	var timer *time.Timer
	if emu.Delay > 0 {
		timer = time.NewTimer(emu.Delay)
		defer timer.Stop()
	}

	for steps := 0; ; steps++ {
		if emu.MaxSteps > 0 && steps >= emu.MaxSteps {
			err = ErrStepLimit
			return
		}

		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		if timer != nil {
			timer.Reset(emu.Delay)
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-timer.C:
			}
		}
	}
}
