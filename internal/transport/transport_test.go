package transport

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"go.bug.st/serial"
)

func TestModeIs8N1(t *testing.T) {
	m := modeFor(57600)
	if m.BaudRate != 57600 {
		t.Errorf("expected baud 57600, got %d", m.BaudRate)
	}
	if m.DataBits != 8 {
		t.Errorf("expected 8 data bits, got %d", m.DataBits)
	}
	if m.Parity != serial.NoParity {
		t.Errorf("expected no parity, got %v", m.Parity)
	}
	if m.StopBits != serial.OneStopBit {
		t.Errorf("expected one stop bit, got %v", m.StopBits)
	}
}

func TestCloseWithoutOpenIsSafe(t *testing.T) {
	s := &SerialPort{}
	if err := s.Close(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("expected nil on second close, got %v", err)
	}
}

func TestOpenErrorUnwraps(t *testing.T) {
	cause := fs.ErrNotExist
	err := error(&OpenError{Port: "/dev/ttyACM9", Err: cause})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected OpenError to unwrap to its cause")
	}
	var open *OpenError
	if !errors.As(err, &open) || open.Port != "/dev/ttyACM9" {
		t.Errorf("expected port in OpenError, got %+v", open)
	}
	if !strings.Contains(err.Error(), "/dev/ttyACM9") {
		t.Errorf("expected port name in message, got %q", err)
	}
}

func TestWriteErrorUnwraps(t *testing.T) {
	cause := errors.New("device unplugged")
	err := error(&WriteError{Err: cause})
	if !errors.Is(err, cause) {
		t.Error("expected WriteError to unwrap to its cause")
	}
}

func TestPortInfoString(t *testing.T) {
	cases := map[string]struct {
		info PortInfo
		want string
	}{
		"plain": {
			info: PortInfo{Name: "/dev/ttyS0"},
			want: "/dev/ttyS0",
		},
		"usb": {
			info: PortInfo{Name: "/dev/ttyACM0", IsUSB: true, VID: "2e8a", PID: "000a"},
			want: "/dev/ttyACM0  USB 2e8a:000a",
		},
		"usb with product": {
			info: PortInfo{Name: "/dev/ttyACM1", IsUSB: true, VID: "2e8a", PID: "000a", Product: "Pico"},
			want: "/dev/ttyACM1  USB 2e8a:000a  Pico",
		},
	}
	for name, tc := range cases {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}
