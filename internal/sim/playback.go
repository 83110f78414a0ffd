package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/york-fs/cleansend/internal/telemetry"
	"github.com/york-fs/cleansend/internal/transport"
	"github.com/york-fs/cleansend/internal/wire"
)

// ReplayLog re-encodes packet records from r and writes the frames to
// port. A speed > 0 honors the recorded inter-packet gaps divided by
// speed; speed <= 0 inserts no delay. Status rows in the log are
// skipped. Returns the number of frames sent.
func ReplayLog(r io.Reader, port transport.Port, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev uint64
	sent := 0
	for {
		var rec PacketRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return sent, nil
			}
			return sent, fmt.Errorf("decode record: %w", err)
		}
		if rec.Packet.Type == telemetry.PacketUnspecified {
			continue
		}
		if prev != 0 && speed > 0 && rec.Packet.TimestampMs > prev {
			gap := time.Duration(rec.Packet.TimestampMs-prev) * time.Millisecond
			if speed != 1 {
				gap = time.Duration(float64(gap) / speed)
			}
			time.Sleep(gap)
		}
		frame, err := wire.Marshal(&rec.Packet)
		if err != nil {
			return sent, fmt.Errorf("encode packet %d: %w", rec.Seq, err)
		}
		if _, err := port.Write(frame); err != nil {
			return sent, &transport.WriteError{Err: err}
		}
		if err := port.Flush(); err != nil {
			return sent, &transport.WriteError{Err: err}
		}
		sent++
		prev = rec.Packet.TimestampMs
	}
}

// ReplayLogFile opens a JSONL diagnostic log and replays its packets.
func ReplayLogFile(path string, port transport.Port, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(f, port, speed)
}
