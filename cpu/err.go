package cpu

import (
	"errors"

	"github.com/ezrec/sim8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted       = errors.New(f("cpu halted"))
	ErrOpcodeDecode = errors.New(f("decode"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrEncodeType         = errors.New(f("unsupported program item"))
)

// ErrProgramTooLarge is returned when a program does not fit in memory.
// The value is the program length.
type ErrProgramTooLarge int

func (err ErrProgramTooLarge) Error() string {
	return f("program of %d bytes exceeds %d byte memory", int(err), MEMORY_SIZE)
}

func (err ErrProgramTooLarge) Is(target error) (ok bool) {
	_, ok = target.(ErrProgramTooLarge)
	return
}

// ErrInvalidOpcode is returned when the fetched byte is not a defined opcode.
type ErrInvalidOpcode struct {
	Pc     uint8 // Address the byte was fetched from.
	Opcode uint8 // The offending byte.
}

func (err ErrInvalidOpcode) Error() string {
	return f("invalid opcode 0x%02x at 0x%02x", err.Opcode, err.Pc)
}

func (err ErrInvalidOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrInvalidOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrOperandRange is an operand that does not fit in a byte.
type ErrOperandRange int

func (err ErrOperandRange) Error() string {
	return f("%d does not fit in a byte", int(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
