package io

import (
	"fmt"
	"io"
	"iter"
	"slices"
)

// Port records every value latched into the output register. When Output
// is set each value is also written to it as a decimal line.
type Port struct {
	Output io.Writer // Optional host stream.
	Limit  int       // Maximum values kept in the history; 0 is unlimited.

	values  []uint8
	dropped int
}

var _ Channel = (*Port)(nil)

// Rewind clears the history. Output is left as is.
func (port *Port) Rewind() {
	port.values = port.values[:0]
	port.dropped = 0
}

// Receive returns an iterator over the recorded values, oldest first.
func (port *Port) Receive() iter.Seq[uint8] {
	return slices.Values(port.values)
}

// Values returns a copy of the recorded values, oldest first.
func (port *Port) Values() []uint8 {
	return slices.Clone(port.values)
}

// Dropped returns how many old values were discarded to honor Limit.
func (port *Port) Dropped() int {
	return port.dropped
}

// Send records a value and writes it to Output.
func (port *Port) Send(value uint8) (err error) {
	port.values = append(port.values, value)
	if port.Limit > 0 && len(port.values) > port.Limit {
		over := len(port.values) - port.Limit
		port.values = slices.Delete(port.values, 0, over)
		port.dropped += over
	}

	if port.Output == nil {
		return
	}

	_, err = fmt.Fprintf(port.Output, "%d\n", value)
	if err != nil {
		err = &ErrPort{Value: value, Err: err}
	}

	return
}
