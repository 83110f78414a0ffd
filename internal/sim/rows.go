package sim

import "github.com/york-fs/cleansend/internal/wire"

// PacketRecord is one emitted frame as the diagnostic sinks see it.
// Packet carries the full typed payload so logs can be replayed.
type PacketRecord struct {
	StreamID string      `json:"stream_id"`
	Seq      int         `json:"seq"`
	Kind     string      `json:"kind"`
	Scenario string      `json:"scenario"`
	Bytes    int         `json:"bytes"`
	Packet   wire.Packet `json:"packet"`
}

// StatusRow is a periodic stream health summary. Phase is the drive phase
// label the mission profile reported last, e.g. "City".
type StatusRow struct {
	StreamID   string  `json:"stream_id"`
	Scenario   string  `json:"scenario"`
	Phase      string  `json:"phase"`
	State      string  `json:"state"`
	Packets    int     `json:"packets"`
	Bytes      int64   `json:"bytes"`
	RateHz     float64 `json:"rate_hz"`
	OdometerKM float64 `json:"odometer_km"`
	EnergyWh   float64 `json:"energy_wh"`
	ElapsedS   float64 `json:"elapsed_s"`
}
