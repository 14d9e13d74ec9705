package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo int            // Source line.
	Pc     int            // Address of the first byte.
	Words  []string       // Source words after equate and macro expansion.
	Bytes  []uint8        // Encoded bytes.
	Link   map[int]string // Byte index to label, patched at link time.
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the listing line that produced the byte at pc.
func (prog *Program) Debug(pc uint8) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(pc) >= op.Pc && int(pc) < op.Pc+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(pc) - op.Pc,
			}
			break
		}
	}

	return
}

// LineNo returns the source line for pc, or 0 if no line produced it.
func (prog *Program) LineNo(pc uint8) int {
	dbg := prog.Debug(pc)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Binary returns the memory image. Gaps left by .org are zero.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		end := op.Pc + len(op.Bytes)
		if end > len(bin) {
			bin = append(bin, make([]byte, end-len(bin))...)
		}
		copy(bin[op.Pc:], op.Bytes)
	}

	return
}

// Bytes iterates over every encoded byte with its address.
func (prog *Program) Bytes() iter.Seq2[uint8, uint8] {
	return func(yield func(pc uint8, value uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(uint8(op.Pc+n), value) {
					return
				}
			}
		}
	}
}
