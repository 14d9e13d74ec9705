package io

import (
	"github.com/ezrec/sim8/translate"
)

var f = translate.From

// ErrPort is a failure to deliver a value to the host stream.
type ErrPort struct {
	Value uint8
	Err   error
}

func (err *ErrPort) Error() string {
	return f("port write %d: %v", err.Value, err.Err)
}

func (err *ErrPort) Unwrap() error {
	return err.Err
}
