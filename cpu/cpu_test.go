package cpu

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"maps"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCpu(t *testing.T, items ...any) *Cpu {
	t.Helper()

	cpu, err := NewCpu(MustEncode(items...))
	require.NoError(t, err)

	return cpu
}

// tickN runs n instructions, failing on any error.
func tickN(t *testing.T, cpu *Cpu, n int) {
	t.Helper()

	for range n {
		_, err := cpu.Tick()
		require.NoError(t, err)
	}
}

func TestOpcodeTable(t *testing.T) {
	assert := assert.New(t)

	names := []string{
		"HLT", "LDA", "LDB", "LDIA", "LDIB", "STA", "STB",
		"ADD", "ADDI", "SUB", "SUBI", "OUTA", "OUTI",
		"JMP", "JMPC", "JMPNC", "JMPZ",
	}

	assert.Equal(CODE_COUNT, len(Codes()))

	for n, name := range names {
		code := Code(n)
		assert.True(code.Valid(), name)
		assert.NotNil(opTable[code], name)
		assert.Equal(name, code.String())

		parsed, ok := ParseCode(name)
		assert.True(ok, name)
		assert.Equal(code, parsed)

		parsed, ok = ParseCode(fmt.Sprintf(" %v", name))
		assert.False(ok, name)
		assert.Equal(Code(0), parsed)
	}

	lower, ok := ParseCode("jmpnc")
	assert.True(ok)
	assert.Equal(OP_JMPNC, lower)

	assert.False(Code(CODE_COUNT).Valid())
	assert.False(Code(255).Valid())
	assert.Equal("Code(255)", Code(255).String())
	assert.Equal(OPERAND_NONE, Code(255).Operand())

	assert.Equal(1, OP_HLT.Width())
	assert.Equal(1, OP_OUTA.Width())
	assert.Equal(2, OP_LDA.Width())
	assert.Equal(2, OP_OUTI.Width())
	assert.Equal(OPERAND_ADDRESS, OP_JMPZ.Operand())
	assert.Equal(OPERAND_IMMEDIATE, OP_SUBI.Operand())
	assert.Equal("immediate", OPERAND_IMMEDIATE.String())
}

func TestInstructions(t *testing.T) {
	type state struct {
		pc, a, b, o uint8
		c, z        bool
		halted      bool
		mem         map[uint8]uint8
	}

	table := [](struct {
		name    string
		program []any
		steps   int
		want    state
	}){
		{"hlt", []any{"HLT"}, 1, state{pc: 1, halted: true}},
		{"lda", []any{"LDA", 3, "HLT", 42}, 1, state{pc: 2, a: 42}},
		{"ldb", []any{"LDB", 3, "HLT", 42}, 1, state{pc: 2, b: 42}},
		{"ldia", []any{"LDIA", 7}, 1, state{pc: 2, a: 7}},
		{"ldib", []any{"LDIB", 9}, 1, state{pc: 2, b: 9}},
		{"sta", []any{"LDIA", 77, "STA", 200}, 2, state{pc: 4, a: 77, mem: map[uint8]uint8{200: 77}}},
		{"stb", []any{"LDIB", 66, "STB", 201}, 2, state{pc: 4, b: 66, mem: map[uint8]uint8{201: 66}}},
		{"sta_self", []any{"LDIA", 12, "STA", 0}, 2, state{pc: 4, a: 12, mem: map[uint8]uint8{0: 12, 1: 12}}},
		{"add", []any{"LDIA", 250, "ADD", 5, "HLT", 10}, 2, state{pc: 4, a: 4, b: 10, c: true}},
		{"addi", []any{"LDIA", 1, "ADDI", 7}, 2, state{pc: 4, a: 8, b: 7}},
		{"addi_zero", []any{"LDIA", 200, "ADDI", 56}, 2, state{pc: 4, a: 0, b: 56, c: true, z: true}},
		{"addi_nothing", []any{"ADDI", 0}, 1, state{pc: 2, z: true}},
		{"sub", []any{"LDIA", 9, "SUB", 5, "HLT", 4}, 2, state{pc: 4, a: 5, b: 4, c: true}},
		{"subi_zero", []any{"LDIA", 5, "SUBI", 5}, 2, state{pc: 4, a: 0, b: 5, c: true, z: true}},
		{"subi_borrow", []any{"LDIA", 3, "SUBI", 5}, 2, state{pc: 4, a: 254, b: 5}},
		{"outa", []any{"LDIA", 12, "OUTA"}, 2, state{pc: 3, a: 12, o: 12}},
		{"outi", []any{"OUTI", 99}, 1, state{pc: 2, o: 99}},
		{"jmp", []any{"JMP", 7}, 1, state{pc: 7}},
		{"jmpc_taken", []any{"LDIA", 255, "ADDI", 1, "JMPC", 20}, 3, state{pc: 20, b: 1, c: true, z: true}},
		{"jmpc_fall", []any{"LDIA", 1, "ADDI", 1, "JMPC", 20}, 3, state{pc: 6, a: 2, b: 1}},
		{"jmpnc_taken", []any{"LDIA", 1, "ADDI", 1, "JMPNC", 20}, 3, state{pc: 20, a: 2, b: 1}},
		{"jmpnc_fall", []any{"LDIA", 255, "ADDI", 1, "JMPNC", 20}, 3, state{pc: 6, b: 1, c: true, z: true}},
		{"jmpz_taken", []any{"LDIA", 5, "SUBI", 5, "JMPZ", 30}, 3, state{pc: 30, b: 5, c: true, z: true}},
		{"jmpz_fall", []any{"LDIA", 6, "SUBI", 5, "JMPZ", 30}, 3, state{pc: 6, a: 1, b: 5, c: true}},
		{"flags_sticky", []any{"LDIA", 255, "ADDI", 1, "LDIA", 7, "OUTA", "STA", 100, "LDB", 100}, 6,
			state{pc: 11, a: 7, b: 7, o: 7, c: true, z: true, mem: map[uint8]uint8{100: 7}}},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := newCpu(t, entry.program...)
			tickN(t, cpu, entry.steps)

			want := entry.want
			assert.Equal(want.pc, cpu.Pc(), "PC")
			assert.Equal(want.a, cpu.A(), "A")
			assert.Equal(want.b, cpu.B(), "B")
			assert.Equal(want.o, cpu.O(), "O")
			assert.Equal(want.c, cpu.C(), "C")
			assert.Equal(want.z, cpu.Z(), "Z")
			assert.Equal(want.halted, cpu.Halted(), "halted")
			assert.Equal(entry.steps, cpu.Ticks)
			for addr, value := range want.mem {
				assert.Equal(value, cpu.ReadMemory(addr), "memory[%d]", addr)
			}
		})
	}
}

func TestFlagOrdering(t *testing.T) {
	assert := assert.New(t)

	// A=250, ADD of a cell holding 10.
	cpu := newCpu(t, "ADD", 2, 10)
	cpu.SetRegister(REG_A, 250)
	tickN(t, cpu, 1)

	assert.True(cpu.C())
	assert.Equal(uint8(4), cpu.A())
	assert.False(cpu.Z())
	assert.Equal(uint8(10), cpu.B())
}

func TestZeroDetection(t *testing.T) {
	assert := assert.New(t)

	cpu := newCpu(t, "SUBI", 5)
	cpu.SetRegister(REG_A, 5)
	tickN(t, cpu, 1)

	assert.Equal(uint8(0), cpu.A())
	assert.True(cpu.Z())
	assert.True(cpu.C())
}

func TestOperandIntoB(t *testing.T) {
	assert := assert.New(t)

	cpu := newCpu(t, "LDIB", 99, "ADDI", 7)
	tickN(t, cpu, 1)
	assert.Equal(uint8(99), cpu.B())

	tickN(t, cpu, 1)
	assert.Equal(uint8(7), cpu.B())
	assert.Equal(uint8(7), cpu.A())
}

func TestJmpncFallThrough(t *testing.T) {
	assert := assert.New(t)

	for _, carry := range []bool{false, true} {
		cpu := newCpu(t, "JMPNC", 0x80)
		cpu.SetFlag(FLAG_C, carry)
		tickN(t, cpu, 1)

		if carry {
			// Same PC as an untaken JMPC: the byte after the operand.
			assert.Equal(uint8(2), cpu.Pc())
		} else {
			assert.Equal(uint8(0x80), cpu.Pc())
		}
		assert.Equal(carry, cpu.C())
	}
}

func TestPcWrap(t *testing.T) {
	assert := assert.New(t)

	bin := make([]byte, MEMORY_SIZE)
	bin[0] = byte(OP_JMP)
	bin[1] = 255
	bin[255] = byte(OP_LDIA)

	cpu, err := NewCpu(bin)
	assert.NoError(err)

	tickN(t, cpu, 1)
	assert.Equal(uint8(255), cpu.Pc())

	// The operand of the instruction at 255 is the byte at 0.
	tickN(t, cpu, 1)
	assert.Equal(uint8(OP_JMP), cpu.A())
	assert.Equal(uint8(1), cpu.Pc())
}

func TestInvalidOpcode(t *testing.T) {
	assert := assert.New(t)

	for _, opcode := range []uint8{CODE_COUNT, 0x80, 0xff} {
		cpu, err := NewCpu([]byte{opcode})
		assert.NoError(err)

		halted, err := cpu.Tick()
		assert.False(halted)
		assert.Error(err)
		assert.ErrorIs(err, ErrInvalidOpcode{})
		assert.ErrorIs(err, ErrOpcodeDecode)

		var invalid ErrInvalidOpcode
		assert.True(errors.As(err, &invalid))
		assert.Equal(ErrInvalidOpcode{Pc: 0, Opcode: opcode}, invalid)

		// Only PC moved.
		assert.Equal(uint8(1), cpu.Pc())
		assert.Equal(uint8(0), cpu.A())
		assert.Equal(uint8(0), cpu.B())
		assert.Equal(uint8(0), cpu.O())
		assert.False(cpu.C())
		assert.False(cpu.Z())
		assert.False(cpu.Halted())
		assert.Equal(0, cpu.Ticks)
	}

	cpu := newCpu(t)
	err := cpu.Execute(Code(200))
	assert.ErrorIs(err, ErrInvalidOpcode{})
}

func TestHaltIsTerminal(t *testing.T) {
	assert := assert.New(t)

	cpu := newCpu(t, "OUTI", 3, "HLT", "OUTI", 4)

	halted, err := cpu.Tick()
	assert.NoError(err)
	assert.False(halted)

	halted, err = cpu.Tick()
	assert.NoError(err)
	assert.True(halted)

	before := cpu.Machine.Clone()
	for range 3 {
		halted, err = cpu.Tick()
		assert.ErrorIs(err, ErrHalted)
		assert.True(halted)
	}

	assert.Equal(before, cpu.Machine)
	assert.Equal(uint8(3), cpu.O())
	assert.Equal(2, cpu.Ticks)
}

func TestCounter(t *testing.T) {
	assert := assert.New(t)

	cpu := newCpu(t, "LDA", 9, "ADDI", 1, "STA", 9, "OUTA", "JMP", 0, 0)

	for loop := 1; loop <= 300; loop++ {
		tickN(t, cpu, 5)
		assert.Equal(uint8(loop), cpu.O())
		assert.Equal(uint8(loop), cpu.ReadMemory(9))
		assert.Equal(uint8(0), cpu.Pc())
	}
}

var fibProgram = []any{
	"OUTA",
	"STA", 21,
	"ADD", 22,
	"LDB", 21,
	"STB", 22,
	"JMPC", 13,
	"JMP", 0,
	"OUTI", 0,
	"LDIA", 1,
	"STA", 22,
	"JMP", 0,
	0, // tmp
	1, // old
}

var fibOutput = []uint8{
	0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233,
	0, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89,
}

// outputs runs the cpu until count values have been latched by OUTA/OUTI.
func outputs(t *testing.T, cpu *Cpu, count int) (values []uint8) {
	t.Helper()

	for len(values) < count {
		code := Code(cpu.ReadMemory(cpu.Pc()))
		halted, err := cpu.Tick()
		require.NoError(t, err)
		if code == OP_OUTA || code == OP_OUTI {
			values = append(values, cpu.O())
		}
		if halted {
			break
		}
	}

	return
}

func TestFibonacci(t *testing.T) {
	assert := assert.New(t)

	cpu := newCpu(t, fibProgram...)
	assert.Equal(fibOutput, outputs(t, cpu, len(fibOutput)))
}

func TestParallelMachines(t *testing.T) {
	for n := range 8 {
		t.Run(fmt.Sprintf("fib_%d", n), func(t *testing.T) {
			t.Parallel()
			cpu := newCpu(t, fibProgram...)
			assert.Equal(t, fibOutput, outputs(t, cpu, len(fibOutput)))
		})
	}
}

func TestVerbose(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	cpu := newCpu(t, "LDIA", 7, "STA", 9)
	cpu.Verbose = true
	tickN(t, cpu, 2)

	assert.Equal("cpu: 00: LDIA 7\ncpu: 02: STA [0x09]\n", buf.String())
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	cpu := newCpu(t)
	defines := maps.Collect(cpu.Defines())

	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("255", defines["ADDRESS_MAX"])
	assert.Equal("17", defines["CODE_COUNT"])
}
