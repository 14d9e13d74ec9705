// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = func() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}()

var (
	labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	charPattern  = regexp.MustCompile(`'\\?[^']'`)
	parenPattern = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass macro assembler for the 8-bit machine.
//
// Each line holds at most one instruction or directive:
//
//	label:  MNEMONIC operand     ; comment
//	        .equ NAME value
//	        .org address
//	        .byte value...
//	        .macro NAME arg...
//	        .endm
//
// Operands are numbers, character literals ('x'), equates, labels, or
// $(...) expressions evaluated at assembly time over the equates and the
// labels defined so far. Address operands may be written in brackets.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine  map[string]string   // Predefines
	Label      map[string]int      // Map of labels to addresses.
	Equate     map[string]string   // Map of equates.
	Macro      map[string](*Macro) // Map of macros.
	pc         int                 // Next address to assemble to.
	expansions int                 // Macro expansion counter, for local labels.
}

// Predefine defines an equate ahead of the source. A predefined equate
// takes precedence over a later .equ of the same name in the source.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the byte value of a numeric word. Negative values down
// to -128 are stored as two's complement.
func (asm *Assembler) valueOf(word string) (value uint8, err error) {
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < -128 || v64 > 0xff {
		err = ErrOperandRange(v64)
		return
	}

	value = uint8(v64 & 0xff)

	return
}

// operand decodes an operand word into a value, or a label to be linked.
func (asm *Assembler) operand(word string) (value uint8, label string, err error) {
	if len(word) > 2 && word[0] == '[' && word[len(word)-1] == ']' {
		word = word[1 : len(word)-1]
	}

	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	var bad ErrParseNumber
	if errors.As(err, &bad) && labelPattern.MatchString(word) {
		err = nil
		label = word
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 0, 32)
		if perr != nil {
			// Ignore non-integer equates. They may be labels
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, pc := range asm.Label {
		if labelPattern.MatchString(key) && !strings.Contains(key, ".") {
			pred[key] = starlark.MakeInt(pc)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, resolving character
// literals, expressions, equates, labels and macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = charPattern.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = parenPattern.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !labelPattern.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.pc
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		words, err = nil, asm.defineEquate(words[1], words[2])
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// defineEquate records an .equ, leaving predefined names alone.
func (asm *Assembler) defineEquate(name, value string) (err error) {
	if _, ok := asm.predefine[name]; ok {
		return
	}
	if _, ok := asm.Equate[name]; ok {
		err = ErrEquateDuplicate
		return
	}
	asm.Equate[name] = value
	return
}

// currentPc gets the address the next byte will be assembled to.
func (asm *Assembler) currentPc() int {
	return asm.pc
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.pc = 0
	asm.expansions = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for index, label := range op.Link {
			pc, ok := asm.Label[label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(label)
				return
			}
			if pc > 0xff {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrOperandRange(pc)
				return
			}
			op.Bytes[index] = uint8(pc)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// stripComment removes a ';' comment, ignoring ';' inside character literals.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\'':
			quoted = !quoted
		case '\\':
			if quoted {
				n++
			}
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []uint8
	var link map[int]string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Bytes: bytes, Link: link}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.pc += len(bytes)
		if asm.pc > MEMORY_SIZE {
			err = ErrProgramTooLarge(asm.pc)
		}
	}()

	// emit appends one operand byte, deferring labels to link time.
	emit := func(word string) (err error) {
		value, label, err := asm.operand(word)
		if err != nil {
			return
		}
		if len(label) != 0 {
			if link == nil {
				link = map[int]string{}
			}
			link[len(bytes)] = label
		}
		bytes = append(bytes, value)
		return
	}

	switch strings.ToLower(words[0]) {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var org int64
		org, err = strconv.ParseInt(words[1], 0, 32)
		if err != nil {
			err = ErrParseNumber(words[1])
			return
		}
		if org < int64(asm.pc) {
			err = ErrOrgBackwards
			return
		}
		if org > MEMORY_SIZE {
			err = ErrProgramTooLarge(org)
			return
		}
		asm.pc = int(org)
	case ".byte":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			err = emit(word)
			if err != nil {
				return
			}
		}
	default:
		code, ok := ParseCode(words[0])
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		bytes = append(bytes, uint8(code))
		switch code.Operand() {
		case OPERAND_NONE:
			if len(words) > 1 {
				err = ErrOpcodeExtraArgs
				return
			}
		default:
			if len(words) < 2 {
				err = ErrOpcodeValueMissing
				return
			}
			if len(words) > 2 {
				err = ErrOpcodeExtraArgs
				return
			}
			err = emit(words[1])
			if err != nil {
				return
			}
		}
	}

	return
}
