// Package transport opens, enumerates, and writes to the serial links
// telemetry frames are streamed over.
package transport

import (
	"fmt"
	"io"
)

// Port is a byte-oriented telemetry link.
type Port interface {
	io.Writer
	Flush() error
	Close() error
}

// DialFunc opens the configured port. The streamer calls it once on
// start; tests swap in a fake.
type DialFunc func() (Port, error)

// OpenError reports a serial device that could not be opened.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("open %s: %v", e.Port, e.Err) }

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports a failed frame write or flush mid-stream.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write frame: %v", e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }
