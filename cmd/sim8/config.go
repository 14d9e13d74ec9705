package main

import (
	"flag"
	"fmt"
	"iter"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ezrec/sim8/internal"
	"github.com/ezrec/sim8/programs"
	"github.com/ezrec/sim8/trace"
)

// Config defines program configuration.
type Config struct {
	Source   string        // Assembly source file to run.
	Program  string        // Built-in program to run.
	MaxSteps int           // Step bound; 0 runs until halt.
	Delay    time.Duration // Pause between steps.
	Verbose  bool          // Log every executed instruction.
	Trace    bool          // Print machine state after every step.
	Watch    uint          // Memory cell shown in the trace.
	List     bool          // Print the assembled listing and exit.
	Defines  defines       // Equates that override the program's own.
}

// defines collects repeated -D NAME=VALUE flags.
type defines map[string]string

func (d defines) String() string {
	var list []string
	for key, value := range d.All() {
		list = append(list, key+"="+value)
	}
	return strings.Join(list, ",")
}

func (d defines) Set(text string) (err error) {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 || len(value) == 0 {
		err = errors.Errorf("define %q: expected NAME=VALUE", text)
		return
	}
	d[name] = value
	return
}

// All iterates the defines in name order.
func (d defines) All() iter.Seq2[string, string] {
	return internal.IterSeq2Sorted(maps.All(d))
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	c := Config{
		Watch:   trace.WATCH_DEFAULT,
		Defines: defines{},
	}

	flag.Usage = func() {
		fmt.Printf("%s [options] (-c <source file> | -p <program>)\n", os.Args[0])
		fmt.Printf("built-in programs: %s\n", strings.Join(programs.Names(), ", "))
		flag.PrintDefaults()
	}

	flag.StringVar(&c.Source, "c", c.Source, "Assembly source file to run.")
	flag.StringVar(&c.Program, "p", c.Program, "Built-in program to run.")
	flag.IntVar(&c.MaxSteps, "n", c.MaxSteps, "Stop after this many steps (0 runs until halt).")
	flag.DurationVar(&c.Delay, "delay", c.Delay, "Pause between steps.")
	flag.BoolVar(&c.Verbose, "v", c.Verbose, "Verbose mode.")
	flag.BoolVar(&c.Trace, "trace", c.Trace, "Print the machine state to stderr after every step.")
	flag.UintVar(&c.Watch, "watch", c.Watch, "Memory cell shown in the trace.")
	flag.BoolVar(&c.List, "list", c.List, "Print the assembled listing and exit.")
	flag.Var(c.Defines, "D", "Define NAME=VALUE, overriding the program's .equ. May be repeated.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() != 0 || (len(c.Source) == 0) == (len(c.Program) == 0) {
		flag.Usage()
		os.Exit(1)
	}

	if c.Watch > 0xff {
		fmt.Fprintf(os.Stderr, "%s: -watch %d: out of range\n", os.Args[0], c.Watch)
		os.Exit(1)
	}

	return &c
}
