package cpu

import (
	"strings"
)

// Code is an instruction opcode byte.
type Code uint8

//go:generate go tool stringer -linecomment -type=Code
const (
	OP_HLT   = Code(0)  // HLT
	OP_LDA   = Code(1)  // LDA
	OP_LDB   = Code(2)  // LDB
	OP_LDIA  = Code(3)  // LDIA
	OP_LDIB  = Code(4)  // LDIB
	OP_STA   = Code(5)  // STA
	OP_STB   = Code(6)  // STB
	OP_ADD   = Code(7)  // ADD
	OP_ADDI  = Code(8)  // ADDI
	OP_SUB   = Code(9)  // SUB
	OP_SUBI  = Code(10) // SUBI
	OP_OUTA  = Code(11) // OUTA
	OP_OUTI  = Code(12) // OUTI
	OP_JMP   = Code(13) // JMP
	OP_JMPC  = Code(14) // JMPC
	OP_JMPNC = Code(15) // JMPNC
	OP_JMPZ  = Code(16) // JMPZ
)

// CODE_COUNT is the number of defined opcodes.
const CODE_COUNT = 17

// CodeOperand is the kind of byte that follows an opcode.
type CodeOperand int

//go:generate go tool stringer -linecomment -type=CodeOperand
const (
	OPERAND_NONE      = CodeOperand(0) // none
	OPERAND_ADDRESS   = CodeOperand(1) // address
	OPERAND_IMMEDIATE = CodeOperand(2) // immediate
)

var codeOperand = [CODE_COUNT]CodeOperand{
	OP_HLT:   OPERAND_NONE,
	OP_LDA:   OPERAND_ADDRESS,
	OP_LDB:   OPERAND_ADDRESS,
	OP_LDIA:  OPERAND_IMMEDIATE,
	OP_LDIB:  OPERAND_IMMEDIATE,
	OP_STA:   OPERAND_ADDRESS,
	OP_STB:   OPERAND_ADDRESS,
	OP_ADD:   OPERAND_ADDRESS,
	OP_ADDI:  OPERAND_IMMEDIATE,
	OP_SUB:   OPERAND_ADDRESS,
	OP_SUBI:  OPERAND_IMMEDIATE,
	OP_OUTA:  OPERAND_NONE,
	OP_OUTI:  OPERAND_IMMEDIATE,
	OP_JMP:   OPERAND_ADDRESS,
	OP_JMPC:  OPERAND_ADDRESS,
	OP_JMPNC: OPERAND_ADDRESS,
	OP_JMPZ:  OPERAND_ADDRESS,
}

// Valid returns true if the code has a defined instruction.
func (code Code) Valid() bool {
	return code < CODE_COUNT
}

// Operand returns the operand kind consumed by the instruction.
// Invalid codes report OPERAND_NONE.
func (code Code) Operand() CodeOperand {
	if !code.Valid() {
		return OPERAND_NONE
	}
	return codeOperand[code]
}

// Width returns the instruction length in bytes, opcode included.
func (code Code) Width() int {
	if code.Operand() == OPERAND_NONE {
		return 1
	}
	return 2
}

// Codes returns all defined opcodes in ordinal order.
func Codes() (codes []Code) {
	for n := range CODE_COUNT {
		codes = append(codes, Code(n))
	}
	return
}

// ParseCode looks up a mnemonic, ignoring case.
func ParseCode(name string) (code Code, ok bool) {
	name = strings.ToUpper(name)
	for _, code = range Codes() {
		if code.String() == name {
			ok = true
			return
		}
	}

	code = 0
	return
}
