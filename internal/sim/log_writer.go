package sim

import "log/slog"

// LogWriter emits packet and status rows through the process logger.
// Per-packet records go out at debug level so a 10Hz stream stays quiet
// unless verbose logging is on.
type LogWriter struct {
	logger *slog.Logger
}

// NewLogWriter creates a LogWriter on the given logger.
func NewLogWriter(l *slog.Logger) *LogWriter {
	return &LogWriter{logger: l}
}

// WritePacket logs a single emitted frame.
func (w *LogWriter) WritePacket(r PacketRecord) error {
	w.logger.Debug("packet",
		"stream_id", r.StreamID,
		"seq", r.Seq,
		"kind", r.Kind,
		"bytes", r.Bytes,
		"timestamp_ms", r.Packet.TimestampMs,
	)
	return nil
}

// WriteStatus logs a periodic stream summary.
func (w *LogWriter) WriteStatus(r StatusRow) error {
	w.logger.Info("status",
		"stream_id", r.StreamID,
		"scenario", r.Scenario,
		"phase", r.Phase,
		"state", r.State,
		"packets", r.Packets,
		"bytes", r.Bytes,
		"odometer_km", r.OdometerKM,
		"energy_wh", r.EnergyWh,
		"elapsed_s", r.ElapsedS,
	)
	return nil
}
