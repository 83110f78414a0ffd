package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialPort wraps a host serial device configured for the 8N1 framing
// the telemetry boards use.
type SerialPort struct {
	name string
	port serial.Port
}

var _ Port = (*SerialPort)(nil)

func modeFor(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the named device at the given baud rate. Reads are
// unused by the sender but get a timeout so a stray read cannot hang.
func OpenSerial(name string, baud int) (*SerialPort, error) {
	port, err := serial.Open(name, modeFor(baud))
	if err != nil {
		return nil, &OpenError{Port: name, Err: err}
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, &OpenError{Port: name, Err: fmt.Errorf("set read timeout: %w", err)}
	}
	return &SerialPort{name: name, port: port}, nil
}

// Dial returns a DialFunc that opens name at baud.
func Dial(name string, baud int) DialFunc {
	return func() (Port, error) { return OpenSerial(name, baud) }
}

func (s *SerialPort) Name() string { return s.name }

func (s *SerialPort) Write(p []byte) (int, error) { return s.port.Write(p) }

// Flush blocks until buffered output has reached the line.
func (s *SerialPort) Flush() error { return s.port.Drain() }

func (s *SerialPort) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
