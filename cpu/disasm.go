package cpu

import (
	"fmt"
)

// Disassemble decodes the instruction at addr, returning its assembly
// text and width in bytes. Bytes past the end of mem read as zero, and
// the operand address wraps within the 8-bit address space.
func Disassemble(mem []byte, addr uint8) (text string, width int) {
	at := func(a uint8) uint8 {
		if int(a) < len(mem) {
			return mem[a]
		}
		return 0
	}

	code := Code(at(addr))
	if !code.Valid() {
		return fmt.Sprintf(".byte 0x%02x", uint8(code)), 1
	}

	width = code.Width()
	switch code.Operand() {
	case OPERAND_NONE:
		text = code.String()
	case OPERAND_ADDRESS:
		text = fmt.Sprintf("%v [0x%02x]", code, at(addr+1))
	case OPERAND_IMMEDIATE:
		text = fmt.Sprintf("%v %d", code, at(addr+1))
	}

	return
}

// Listing disassembles mem from address 0 up to its length.
func Listing(mem []byte) (lines []string) {
	for addr := 0; addr < len(mem) && addr < MEMORY_SIZE; {
		text, width := Disassemble(mem, uint8(addr))
		lines = append(lines, fmt.Sprintf("%02x: %v", addr, text))
		addr += width
	}
	return
}
