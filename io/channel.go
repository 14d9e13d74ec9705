// Package io provides the host side of the machine's I/O ports.
//
// The machine has a single output latch. Each value an output instruction
// latches is delivered to a Channel, which can record it, forward it to a
// host stream, or both.
package io

import (
	"iter"
)

// Channel defines the interface for the host side of an 8-bit port.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive returns an iterator over the values sent so far.
	Receive() iter.Seq[uint8]
	// Send delivers a single value to the channel.
	Send(value uint8) error
}
