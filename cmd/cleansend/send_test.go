package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/york-fs/cleansend/internal/config"
	"github.com/york-fs/cleansend/internal/transport"
)

func TestFormatPorts(t *testing.T) {
	ports := []transport.PortInfo{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		{Name: "/dev/ttyS0"},
	}
	out := formatPorts(ports)
	if !strings.Contains(out, "/dev/ttyUSB0") || !strings.Contains(out, "/dev/ttyS0") {
		t.Errorf("expected both ports listed, got %q", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Errorf("expected no trailing newline, got %q", out)
	}
}

func TestSecondsToDuration(t *testing.T) {
	cases := map[float64]time.Duration{
		0:    0,
		0.5:  500 * time.Millisecond,
		30:   30 * time.Second,
		1.25: 1250 * time.Millisecond,
	}
	for secs, want := range cases {
		if got := secondsToDuration(secs); got != want {
			t.Errorf("secondsToDuration(%v): expected %v, got %v", secs, want, got)
		}
	}
}

func TestSendLogOptions(t *testing.T) {
	defer func() { sendQuiet, sendTUI, sendVerbose = false, false, false }()

	sendQuiet, sendTUI, sendVerbose = false, false, false
	opts := sendLogOptions(&config.Config{})
	if opts.Quiet || opts.Verbose || opts.File != "" {
		t.Errorf("expected console logging by default, got %+v", opts)
	}

	sendVerbose = true
	if opts := sendLogOptions(&config.Config{}); !opts.Verbose {
		t.Errorf("expected verbose option set")
	}
	sendVerbose = false

	sendQuiet = true
	if opts := sendLogOptions(&config.Config{}); !opts.Quiet {
		t.Errorf("expected quiet to discard logs")
	}
	if opts := sendLogOptions(&config.Config{LogFile: "run.jsonl"}); opts.File != "run.jsonl.log" {
		t.Errorf("expected sibling log file, got %q", opts.File)
	}
	sendQuiet = false

	sendTUI = true
	if opts := sendLogOptions(&config.Config{}); !opts.Quiet {
		t.Errorf("expected tui mode to discard logs")
	}
}

func TestHexDumpPort(t *testing.T) {
	var buf bytes.Buffer
	p := &hexDumpPort{w: &buf}
	if _, err := p.Write([]byte{0x08, 0x01, 0x10, 0xff}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "08 01 10 ff") {
		t.Errorf("expected hex dump, got %q", out)
	}
	if !strings.Contains(out, "[0001]") {
		t.Errorf("expected frame counter, got %q", out)
	}
}
