package cpu

import (
	"fmt"
)

// MEMORY_SIZE is the number of addressable memory cells.
const MEMORY_SIZE = 256

// Register selects one of the 8-bit machine registers.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_PC = Register(0) // PC
	REG_A  = Register(1) // A
	REG_B  = Register(2) // B
	REG_O  = Register(3) // O
)

// REGISTER_COUNT is the number of machine registers.
const REGISTER_COUNT = 4

// Flag selects one of the status flags.
type Flag int

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_C = Flag(0) // C
	FLAG_Z = Flag(1) // Z
)

// FLAG_COUNT is the number of status flags.
const FLAG_COUNT = 2

// Machine is the complete architectural state of the computer: memory,
// registers, flags and the halt condition. All values are 8-bit and every
// write wraps modulo 256.
type Machine struct {
	memory   [MEMORY_SIZE]uint8
	register [REGISTER_COUNT]uint8
	flag     [FLAG_COUNT]bool
	halted   bool
}

// wrap reduces any integer modulo 256.
func wrap(value int) uint8 {
	return uint8(value & 0xff)
}

// NewMachine creates a machine with the program loaded at address 0 and
// the rest of memory zeroed.
func NewMachine(program []byte) (m *Machine, err error) {
	if len(program) > MEMORY_SIZE {
		err = ErrProgramTooLarge(len(program))
		return
	}

	m = &Machine{}
	copy(m.memory[:], program)

	return
}

// NewMachineInts creates a machine from an integer program listing.
// Each value is reduced modulo 256.
func NewMachineInts(program []int) (m *Machine, err error) {
	if len(program) > MEMORY_SIZE {
		err = ErrProgramTooLarge(len(program))
		return
	}

	bin := make([]byte, len(program))
	for n, value := range program {
		bin[n] = wrap(value)
	}

	return NewMachine(bin)
}

// Clone returns an independent copy of the machine.
func (m *Machine) Clone() *Machine {
	dup := *m
	return &dup
}

// Register reads a register.
func (m *Machine) Register(reg Register) uint8 {
	return m.register[reg]
}

// SetRegister stores value modulo 256 into a register.
func (m *Machine) SetRegister(reg Register, value int) {
	m.register[reg] = wrap(value)
}

// IncRegister adds amount, which may be negative, to a register with wraparound.
func (m *Machine) IncRegister(reg Register, amount int) {
	m.SetRegister(reg, int(m.register[reg])+amount)
}

// Flag reads a status flag.
func (m *Machine) Flag(flag Flag) bool {
	return m.flag[flag]
}

// SetFlag stores a status flag.
func (m *Machine) SetFlag(flag Flag, value bool) {
	m.flag[flag] = value
}

// ReadMemory reads a memory cell.
func (m *Machine) ReadMemory(addr uint8) uint8 {
	return m.memory[addr]
}

// WriteMemory stores value modulo 256 into a memory cell.
func (m *Machine) WriteMemory(addr uint8, value int) {
	m.memory[addr] = wrap(value)
}

// Memory returns a copy of the full memory image.
func (m *Machine) Memory() [MEMORY_SIZE]uint8 {
	return m.memory
}

// Halted returns true once HLT has executed.
func (m *Machine) Halted() bool {
	return m.halted
}

// halt is one way; a halted machine is never resumed.
func (m *Machine) halt() {
	m.halted = true
}

// Pc returns the program counter.
func (m *Machine) Pc() uint8 { return m.register[REG_PC] }

// A returns the accumulator.
func (m *Machine) A() uint8 { return m.register[REG_A] }

// B returns the second operand register.
func (m *Machine) B() uint8 { return m.register[REG_B] }

// O returns the output latch.
func (m *Machine) O() uint8 { return m.register[REG_O] }

// C returns the carry flag.
func (m *Machine) C() bool { return m.flag[FLAG_C] }

// Z returns the zero flag.
func (m *Machine) Z() bool { return m.flag[FLAG_Z] }

// String returns the register, flag and halt state as a string.
func (m *Machine) String() (text string) {
	for n := range REGISTER_COUNT {
		reg := Register(n)
		val := m.Register(reg)
		text += fmt.Sprintf("% 5s: %08b (0x%02X %3d)\n", reg.String(), val, val, val)
	}
	for n := range FLAG_COUNT {
		flag := Flag(n)
		text += fmt.Sprintf("% 5s: %v\n", flag.String(), m.Flag(flag))
	}
	text += fmt.Sprintf("% 5s: %v\n", "halt", m.halted)

	return
}
