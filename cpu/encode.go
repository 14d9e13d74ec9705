package cpu

import (
	"fmt"
)

// Encode resolves a mixed listing of mnemonics and numbers into a memory
// image. Strings are opcode mnemonics; integers are operand or data bytes
// and must lie in [0,255].
//
//	bin, err := Encode("LDA", 9, "ADDI", 1, "STA", 9, "OUTA", "JMP", 0, 0)
func Encode(items ...any) (bin []byte, err error) {
	if len(items) > MEMORY_SIZE {
		err = ErrProgramTooLarge(len(items))
		return
	}

	defer func() {
		if err != nil {
			bin = nil
		}
	}()

	bin = make([]byte, 0, len(items))
	for n, item := range items {
		var value int
		switch v := item.(type) {
		case string:
			code, ok := ParseCode(v)
			if !ok {
				err = fmt.Errorf("%w: item %d %q", ErrOpcodeInvalid, n, v)
				return
			}
			value = int(code)
		case Code:
			value = int(v)
		case byte:
			value = int(v)
		case int:
			value = v
		default:
			err = fmt.Errorf("%w: item %d %T", ErrEncodeType, n, item)
			return
		}
		if value < 0 || value > 0xff {
			err = fmt.Errorf("item %d: %w", n, ErrOperandRange(value))
			return
		}
		bin = append(bin, byte(value))
	}

	return
}

// MustEncode is Encode for fixed listings; it panics on error.
func MustEncode(items ...any) []byte {
	bin, err := Encode(items...)
	if err != nil {
		panic(err)
	}
	return bin
}
