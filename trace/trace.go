// Package trace prints one line of machine state per executed step.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/sim8/cpu"
	"github.com/ezrec/sim8/emulator"
)

// WATCH_DEFAULT is the memory cell shown at the end of each line.
const WATCH_DEFAULT = 24

const (
	highlightOn  = "\x1b[7m"
	highlightOff = "\x1b[0m"
)

// Tracer writes a state line to Output after every step.
type Tracer struct {
	Output io.Writer // Destination of the trace lines.
	Watch  uint8     // Memory cell to display.
	Color  bool      // Highlight registers changed by the last step.

	last *cpu.Machine
	err  error
}

var _ emulator.Observer = (*Tracer)(nil)

// New creates a tracer. Highlighting is enabled when w is a terminal.
func New(w io.Writer) (tr *Tracer) {
	tr = &Tracer{
		Output: w,
		Watch:  WATCH_DEFAULT,
	}

	if file, ok := w.(*os.File); ok {
		tr.Color = term.IsTerminal(int(file.Fd()))
	}

	return
}

// Line formats the state of m. Registers that differ from prev are
// highlighted when Color is set; prev may be nil.
func (tr *Tracer) Line(prev, m *cpu.Machine) string {
	fields := make([]string, 0, cpu.REGISTER_COUNT+3)

	for reg := range cpu.Register(cpu.REGISTER_COUNT) {
		value := fmt.Sprintf("%08b", m.Register(reg))
		if tr.Color && prev != nil && prev.Register(reg) != m.Register(reg) {
			value = highlightOn + value + highlightOff
		}
		fields = append(fields, fmt.Sprintf("%v: %s", reg, value))
	}

	sum := int(m.A()) + int(m.B())
	fields = append(fields,
		fmt.Sprintf("O: %d", m.O()),
		fmt.Sprintf("S: %08b", sum&0xff),
		fmt.Sprintf("%d", m.ReadMemory(tr.Watch)),
	)

	return strings.Join(fields, "\t")
}

// Observe writes the line for the emulator's current state.
func (tr *Tracer) Observe(emu *emulator.Emulator) {
	m := emu.Cpu.Machine
	line := tr.Line(tr.last, m)
	tr.last = m.Clone()

	if tr.err != nil || tr.Output == nil {
		return
	}

	_, tr.err = fmt.Fprintln(tr.Output, line)
}

// Err returns the first write error, if any.
func (tr *Tracer) Err() error {
	return tr.err
}
