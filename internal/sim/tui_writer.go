package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/york-fs/cleansend/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorGray    = "\x1b[90m"
)

const maxLogLines = 1000

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a formatted packet line for the viewport.
type logMsg struct{ line string }

// packetMsg carries the raw record for the latest-values section.
type packetMsg struct{ rec PacketRecord }

// statusMsg carries a stream status update for the bottom line.
type statusMsg struct{ row StatusRow }

// StreamInfo describes the stream a TUI session is attached to.
type StreamInfo struct {
	StreamID string
	Scenario string
	Port     string
	Baud     int
	RateHz   float64
	Duration time.Duration
}

// TUIWriter renders the packet stream in a bubbletea TUI. Quitting the
// TUI interrupts the stream the same way SIGINT does.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(info StreamInfo) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(info), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WritePacket implements PacketWriter.
func (w *TUIWriter) WritePacket(r PacketRecord) error {
	w.program.Send(logMsg{line: formatPacketLine(r)})
	w.program.Send(packetMsg{rec: r})
	return nil
}

// WriteStatus implements PacketWriter.
func (w *TUIWriter) WriteStatus(r StatusRow) error {
	w.program.Send(statusMsg{row: r})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

func kindColor(kind string) string {
	switch kind {
	case telemetry.PacketBMS.String():
		return colorCyan
	case telemetry.PacketInverter.String():
		return colorMagenta
	}
	return colorGreen
}

func formatPacketLine(r PacketRecord) string {
	ts := time.UnixMilli(int64(r.Packet.TimestampMs)).Format(time.RFC3339)
	return fmt.Sprintf("%s[%s]%s %s%-8s%s %sseq=%d%s %sbytes=%d%s %s",
		colorGray, ts, colorReset,
		kindColor(r.Kind), r.Kind, colorReset,
		colorWhite, r.Seq, colorReset,
		colorBlue, r.Bytes, colorReset,
		formatPayload(r))
}

func formatPayload(r PacketRecord) string {
	switch {
	case r.Packet.APPS != nil:
		d := r.Packet.APPS
		return fmt.Sprintf("%sthrottle=%.2f%s %scurrent=%.1fA%s %srpm=%d%s",
			colorGreen, d.ThrottlePercentage, colorReset,
			colorYellow, d.MotorCurrentA, colorReset,
			colorCyan, d.MotorRPM, colorReset)
	case r.Packet.BMS != nil:
		d := r.Packet.BMS
		lo, hi, hot := packExtremes(d)
		return fmt.Sprintf("%slvs=%.1fV%s %spos=%.1fA%s %scells=%.2f..%.2fV%s %smax_temp=%.1fC%s",
			colorGreen, d.LVSRailVoltage, colorReset,
			colorYellow, d.PositiveCurrentA, colorReset,
			colorCyan, lo, hi, colorReset,
			colorMagenta, hot, colorReset)
	case r.Packet.Inverter != nil:
		d := r.Packet.Inverter
		faultColor := colorGreen
		if d.FaultCode != telemetry.FaultNone {
			faultColor = colorRed
		}
		return fmt.Sprintf("%sfault=%s%s %serpm=%d%s %sduty=%.2f%s %sctrl=%.1fC%s %smotor=%.1fC%s",
			faultColor, d.FaultCode, colorReset,
			colorCyan, d.ERPM, colorReset,
			colorYellow, d.DutyCycle, colorReset,
			colorMagenta, d.ControllerTempC, colorReset,
			colorBlue, d.MotorTempC, colorReset)
	}
	return ""
}

// packExtremes scans all segments for the lowest and highest cell
// voltage and the hottest thermistor.
func packExtremes(d *telemetry.BMSData) (lo, hi, hot float64) {
	first := true
	for _, seg := range d.Segments {
		for _, v := range seg.CellVoltages {
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
		for _, t := range seg.Temperatures {
			if t > hot {
				hot = t
			}
		}
	}
	return lo, hi, hot
}

type tuiModel struct {
	info         StreamInfo
	table        table.Model
	vp           viewport.Model
	logs         []string
	latest       map[string]string
	status       StatusRow
	wrap         bool
	autoscroll   bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(info StreamInfo) tuiModel {
	cols := []table.Column{
		{Title: "Stream", Width: 14},
		{Title: "Value", Width: 24},
		{Title: "Stream", Width: 14},
		{Title: "Value", Width: 24},
	}
	m := tuiModel{
		info:       info,
		vp:         viewport.New(0, 0),
		latest:     make(map[string]string),
		autoscroll: true,
	}
	rows := m.headerRows()
	m.table = table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return m
}

func (m tuiModel) headerRows() []table.Row {
	dur := "until interrupt"
	if m.info.Duration > 0 {
		dur = m.info.Duration.String()
	}
	id := m.info.StreamID
	if len(id) > 8 {
		id = id[:8]
	}
	return []table.Row{
		{"Scenario", m.info.Scenario, "Rate (Hz)", fmt.Sprintf("%.1f", m.info.RateHz)},
		{"Port", m.info.Port, "Baud", strconv.Itoa(m.info.Baud)},
		{"Stream ID", id, "Duration", dur},
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case packetMsg:
		m.latest[msg.rec.Kind] = formatPayload(msg.rec)
		m.updateViewportHeight()
	case statusMsg:
		m.status = msg.row
		// The stream id is minted after the sinks, so the header cell
		// fills in from the first status row.
		if m.info.StreamID == "" && msg.row.StreamID != "" {
			m.info.StreamID = msg.row.StreamID
			m.table.SetRows(m.headerRows())
			m.header = m.renderHeader()
			m.headerHeight = lipgloss.Height(m.header)
		}
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	latestHeight := lipgloss.Height(m.renderLatest())
	h := m.height - m.headerHeight - latestHeight - bottomHeight - 3
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.header,
		divider,
		m.renderLatest(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string { return m.table.View() }

func (m tuiModel) renderLatest() string {
	var b strings.Builder
	for i, kind := range []string{
		telemetry.PacketAPPS.String(),
		telemetry.PacketBMS.String(),
		telemetry.PacketInverter.String(),
	} {
		line, ok := m.latest[kind]
		if !ok {
			line = colorGray + "waiting" + colorReset
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s%-8s%s %s", kindColor(kind), kind, colorReset, line))
	}
	return b.String()
}

func (m tuiModel) renderBottom() string {
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	phase := m.status.Phase
	if phase == "" {
		phase = "-"
	}
	state := fmt.Sprintf("%sSTATE%s %s%s%s %sphase=%s%s %spackets=%d%s %sbytes=%d%s %sodo=%.3fkm%s %senergy=%.2fWh%s",
		colorBlue, colorReset,
		colorWhite, m.status.State, colorReset,
		colorGray, phase, colorReset,
		colorGreen, m.status.Packets, colorReset,
		colorYellow, m.status.Bytes, colorReset,
		colorCyan, m.status.OdometerKM, colorReset,
		colorMagenta, m.status.EnergyWh, colorReset)
	return fmt.Sprintf("%s | Wrap %s | Scroll %s | q quits", state, wrapIndicator, scrollIndicator)
}
