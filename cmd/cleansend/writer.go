package main

import (
	"log/slog"

	"github.com/york-fs/cleansend/internal/sim"
)

// sinkModes selects which diagnostic sinks a stream writes to.
type sinkModes struct {
	tui   bool
	quiet bool
}

// newSinks assembles the diagnostic sink chain: structured log lines by
// default, JSONL export when a log file is set, the TUI dashboard when
// requested. The returned cleanup closes whatever was opened.
func newSinks(logger *slog.Logger, logFile string, modes sinkModes, info sim.StreamInfo) (sim.PacketWriter, func(), error) {
	var sinks []sim.PacketWriter
	if !modes.quiet && !modes.tui {
		sinks = append(sinks, sim.NewLogWriter(logger))
	}
	var fw *sim.FileWriter
	if logFile != "" {
		var err error
		fw, err = sim.NewFileWriter(logFile)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fw)
	}
	var tw *sim.TUIWriter
	if modes.tui {
		tw = sim.NewTUIWriter(info)
		sinks = append(sinks, tw)
	}
	cleanup := func() {
		if tw != nil {
			tw.Close()
		}
		if fw != nil {
			fw.Close()
		}
	}
	switch len(sinks) {
	case 0:
		return nil, cleanup, nil
	case 1:
		return sinks[0], cleanup, nil
	default:
		return sim.NewMultiWriter(sinks...), cleanup, nil
	}
}
