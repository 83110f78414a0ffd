package sim

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/york-fs/cleansend/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func appsRecord(seq int) PacketRecord {
	return PacketRecord{
		StreamID: "s1",
		Seq:      seq,
		Kind:     "APPS",
		Scenario: "city",
		Bytes:    24,
		Packet: wirePacket(telemetry.PacketAPPS, 1000, &telemetry.APPSData{
			State:              telemetry.APPSRunning,
			ThrottlePercentage: 0.5,
			MotorCurrentA:      40,
			MotorRPM:           1200,
		}),
	}
}

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	if err := w.WritePacket(appsRecord(1)); err != nil {
		t.Fatalf("write packet: %v", err)
	}
	if _, ok := p.msgs[0].(logMsg); !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[0])
	}
	if _, ok := p.msgs[1].(packetMsg); !ok {
		t.Fatalf("expected packetMsg, got %T", p.msgs[1])
	}
	if err := w.WriteStatus(StatusRow{State: "running", Packets: 1}); err != nil {
		t.Fatalf("write status: %v", err)
	}
	if _, ok := p.msgs[2].(statusMsg); !ok {
		t.Fatalf("expected statusMsg, got %T", p.msgs[2])
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := p.msgs[3].(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg on close, got %T", p.msgs[3])
	}
}

func TestFormatPacketLine(t *testing.T) {
	line := formatPacketLine(appsRecord(7))
	for _, want := range []string{"APPS", "seq=7", "bytes=24", "throttle=0.50", "rpm=1200"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected line to contain %q, got %q", want, line)
		}
	}

	rec := PacketRecord{
		Seq:  8,
		Kind: "INVERTER",
		Packet: wirePacket(telemetry.PacketInverter, 2000, &telemetry.InverterData{
			FaultCode: telemetry.FaultControllerOvertemp,
			ERPM:      4200,
		}),
	}
	line = formatPacketLine(rec)
	if !strings.Contains(line, "controller_overtemp") {
		t.Errorf("expected fault name in line, got %q", line)
	}
	if !strings.Contains(line, colorRed) {
		t.Errorf("expected fault rendered red, got %q", line)
	}
}

func TestModelTracksLatest(t *testing.T) {
	m := newTUIModel(StreamInfo{StreamID: "stream-1", Scenario: "city", Port: "/dev/ttyUSB0", Baud: 57600, RateHz: 10})
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = mi.(tuiModel)

	latest := m.renderLatest()
	if !strings.Contains(latest, "waiting") {
		t.Fatalf("expected waiting placeholders, got %q", latest)
	}

	mi, _ = m.Update(packetMsg{rec: appsRecord(1)})
	m = mi.(tuiModel)
	if !strings.Contains(m.latest["APPS"], "throttle=0.50") {
		t.Errorf("expected latest APPS payload, got %q", m.latest["APPS"])
	}
	if !strings.Contains(m.renderLatest(), "throttle=0.50") {
		t.Errorf("expected latest section to show APPS payload")
	}

	mi, _ = m.Update(statusMsg{row: StatusRow{State: "running", Packets: 42, Bytes: 1024}})
	m = mi.(tuiModel)
	bottom := m.renderBottom()
	if !strings.Contains(bottom, "running") || !strings.Contains(bottom, "packets=42") {
		t.Errorf("expected status in bottom line, got %q", bottom)
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(StreamInfo{Scenario: "city"})
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(StreamInfo{})
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	expected := len(m.logs) - m.vp.Height
	if m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d, got %d", expected, m.vp.YOffset)
	}
	mi, _ = m.Update(logMsg{line: "l4"})
	m = mi.(tuiModel)
	expected = len(m.logs) - m.vp.Height
	if m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d after new log, got %d", expected, m.vp.YOffset)
	}
}
