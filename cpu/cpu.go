package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
	"CODE_COUNT":     fmt.Sprintf("%d", CODE_COUNT),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"ADDRESS_MAX":    fmt.Sprintf("%d", MEMORY_SIZE-1),
}

// Cpu is the execution engine. It steps the Machine one instruction at a time.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	*Machine // Architectural state.

	Ticks int // Executed instruction counter.
}

// execute is the semantic rule for one opcode. The opcode byte has
// already been consumed when it runs.
type execute func(cpu *Cpu)

// opTable has exactly one rule per defined opcode.
var opTable = [CODE_COUNT]execute{
	OP_HLT:   (*Cpu).opHlt,
	OP_LDA:   (*Cpu).opLda,
	OP_LDB:   (*Cpu).opLdb,
	OP_LDIA:  (*Cpu).opLdia,
	OP_LDIB:  (*Cpu).opLdib,
	OP_STA:   (*Cpu).opSta,
	OP_STB:   (*Cpu).opStb,
	OP_ADD:   (*Cpu).opAdd,
	OP_ADDI:  (*Cpu).opAddi,
	OP_SUB:   (*Cpu).opSub,
	OP_SUBI:  (*Cpu).opSubi,
	OP_OUTA:  (*Cpu).opOuta,
	OP_OUTI:  (*Cpu).opOuti,
	OP_JMP:   (*Cpu).opJmp,
	OP_JMPC:  (*Cpu).opJmpc,
	OP_JMPNC: (*Cpu).opJmpnc,
	OP_JMPZ:  (*Cpu).opJmpz,
}

// NewCpu creates a new CPU with the program loaded at address 0.
func NewCpu(program []byte) (cpu *Cpu, err error) {
	m, err := NewMachine(program)
	if err != nil {
		return
	}

	cpu = &Cpu{
		Machine: m,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Fetch reads the opcode at PC and advances PC past it.
//
// An undefined opcode byte returns ErrInvalidOpcode with PC already
// advanced. A halted machine returns ErrHalted and is not modified.
func (cpu *Cpu) Fetch() (code Code, err error) {
	if cpu.Halted() {
		err = ErrHalted
		return
	}

	pc := cpu.Pc()
	code = Code(cpu.ReadMemory(pc))
	cpu.IncRegister(REG_PC, 1)

	if !code.Valid() {
		err = ErrInvalidOpcode{Pc: pc, Opcode: uint8(code)}
		return
	}

	return
}

// Execute applies the semantic rule of a fetched opcode. PC must point at
// the byte after the opcode.
func (cpu *Cpu) Execute(code Code) (err error) {
	if !code.Valid() {
		err = ErrInvalidOpcode{Pc: cpu.Pc() - 1, Opcode: uint8(code)}
		return
	}

	if cpu.Verbose {
		mem := cpu.Memory()
		text, _ := Disassemble(mem[:], cpu.Pc()-1)
		log.Printf("cpu: %02x: %v", cpu.Pc()-1, text)
	}

	opTable[code](cpu)
	cpu.Ticks++

	return
}

// Tick executes a single fetch-decode-execute cycle, and reports if the
// machine is halted afterwards.
func (cpu *Cpu) Tick() (halted bool, err error) {
	code, err := cpu.Fetch()
	if err != nil {
		if !errors.Is(err, ErrHalted) {
			err = errors.Join(ErrOpcodeDecode, err)
		}
		halted = cpu.Halted()
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	halted = cpu.Halted()

	return
}

// operand consumes the byte at PC.
func (cpu *Cpu) operand() (value uint8) {
	value = cpu.ReadMemory(cpu.Pc())
	cpu.IncRegister(REG_PC, 1)
	return
}

// indirect consumes an address operand and reads the cell it names.
func (cpu *Cpu) indirect() uint8 {
	return cpu.ReadMemory(cpu.operand())
}

// add is shared by ADD and ADDI. The operand lands in B, C comes from the
// unwrapped sum, Z from the wrapped A.
func (cpu *Cpu) add(value uint8) {
	cpu.SetRegister(REG_B, int(value))
	sum := int(cpu.A()) + int(value)
	cpu.SetFlag(FLAG_C, sum > 0xff)
	cpu.SetRegister(REG_A, sum)
	cpu.SetFlag(FLAG_Z, cpu.A() == 0)
}

// sub is shared by SUB and SUBI. C is set when no borrow occurs.
func (cpu *Cpu) sub(value uint8) {
	cpu.SetRegister(REG_B, int(value))
	diff := int(cpu.A()) - int(value)
	cpu.SetFlag(FLAG_C, diff > -1)
	cpu.SetRegister(REG_A, diff)
	cpu.SetFlag(FLAG_Z, cpu.A() == 0)
}

func (cpu *Cpu) opHlt() {
	cpu.halt()
}

func (cpu *Cpu) opLda() {
	cpu.SetRegister(REG_A, int(cpu.indirect()))
}

func (cpu *Cpu) opLdb() {
	cpu.SetRegister(REG_B, int(cpu.indirect()))
}

func (cpu *Cpu) opLdia() {
	cpu.SetRegister(REG_A, int(cpu.operand()))
}

func (cpu *Cpu) opLdib() {
	cpu.SetRegister(REG_B, int(cpu.operand()))
}

func (cpu *Cpu) opSta() {
	cpu.WriteMemory(cpu.operand(), int(cpu.A()))
}

func (cpu *Cpu) opStb() {
	cpu.WriteMemory(cpu.operand(), int(cpu.B()))
}

func (cpu *Cpu) opAdd() {
	cpu.add(cpu.indirect())
}

func (cpu *Cpu) opAddi() {
	cpu.add(cpu.operand())
}

func (cpu *Cpu) opSub() {
	cpu.sub(cpu.indirect())
}

func (cpu *Cpu) opSubi() {
	cpu.sub(cpu.operand())
}

func (cpu *Cpu) opOuta() {
	cpu.SetRegister(REG_O, int(cpu.A()))
}

func (cpu *Cpu) opOuti() {
	cpu.SetRegister(REG_O, int(cpu.operand()))
}

// opJmp replaces PC with the operand without stepping past it first.
func (cpu *Cpu) opJmp() {
	cpu.SetRegister(REG_PC, int(cpu.ReadMemory(cpu.Pc())))
}

func (cpu *Cpu) opJmpc() {
	target := cpu.operand()
	if cpu.C() {
		cpu.SetRegister(REG_PC, int(target))
	}
}

// opJmpnc always loads the target, then puts the fall-through PC back
// when carry is set.
func (cpu *Cpu) opJmpnc() {
	target := cpu.operand()
	next := cpu.Pc()
	cpu.SetRegister(REG_PC, int(target))
	if cpu.C() {
		cpu.SetRegister(REG_PC, int(next))
	}
}

func (cpu *Cpu) opJmpz() {
	target := cpu.operand()
	if cpu.Z() {
		cpu.SetRegister(REG_PC, int(target))
	}
}
