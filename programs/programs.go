// Package programs ships the sample assembly programs for the 8-bit
// machine, and loads programs from the host file system.
package programs

import (
	"embed"
	"io"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezrec/sim8/cpu"
)

// SUFFIX is the file suffix of assembly sources.
const SUFFIX = ".s8"

//go:embed *.s8
var sources embed.FS

// Names returns the sorted names of the built-in programs.
func Names() (names []string) {
	entries, _ := sources.ReadDir(".")
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), SUFFIX)
		if ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return
}

// Source returns the assembly text of a built-in program.
func Source(name string) (text string, err error) {
	data, err := sources.ReadFile(name + SUFFIX)
	if err != nil {
		err = errors.Wrapf(err, "program %q", name)
		return
	}
	text = string(data)
	return
}

// Assemble assembles a built-in program. Each define overrides the
// program's own .equ of the same name.
func Assemble(name string, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	inf, err := sources.Open(name + SUFFIX)
	if err != nil {
		err = errors.Wrapf(err, "program %q", name)
		return
	}
	defer inf.Close()

	prog, err = assemble(inf, defines)
	if err != nil {
		err = errors.Wrapf(err, "%s", name)
	}
	return
}

// LoadFile assembles a program from the host file system.
func LoadFile(filename string, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	inf, err := os.Open(filename)
	if err != nil {
		err = errors.Wrapf(err, "load")
		return
	}
	defer inf.Close()

	prog, err = assemble(inf, defines)
	if err != nil {
		err = errors.Wrapf(err, "%s", filename)
	}
	return
}

func assemble(input io.Reader, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{}
	if defines != nil {
		for key, value := range defines {
			asm.Predefine(key, value)
		}
	}

	return asm.Parse(input)
}
