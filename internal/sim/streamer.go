// Streamer pacing telemetry packets onto one serial link
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/york-fs/cleansend/internal/logging"
	"github.com/york-fs/cleansend/internal/profile"
	"github.com/york-fs/cleansend/internal/telemetry"
	"github.com/york-fs/cleansend/internal/transport"
	"github.com/york-fs/cleansend/internal/wire"
)

// pacingGrain bounds how far past an emission deadline the loop can
// oversleep.
const pacingGrain = time.Millisecond

// StreamState tracks the streamer through its lifecycle.
type StreamState int

const (
	StateIdle StreamState = iota
	StateConnected
	StateRunning
	StateStopped
	StateFailed
)

func (s StreamState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Options configure one telemetry stream.
type Options struct {
	Profile     string        // mission profile name; unknown names fall back to city
	RateHz      float64       // packet emission rate
	Duration    time.Duration // 0 = run until the context is cancelled
	StatusEvery time.Duration // status row cadence, 0 = 30s
	SoftErrors  bool          // retry failed writes next tick instead of stopping
	Seed        int64         // 0 = time-seeded
}

// Report summarizes a finished stream.
type Report struct {
	StreamID   string
	Scenario   string
	State      StreamState
	Packets    int
	Bytes      int64
	Elapsed    time.Duration
	OdometerKM float64
	EnergyWh   float64
}

// sendCycle fixes the repeating emission order across the three record
// kinds.
var sendCycle = [...]telemetry.PacketType{
	telemetry.PacketAPPS,
	telemetry.PacketBMS,
	telemetry.PacketInverter,
}

// Streamer paces telemetry packets onto a port at a fixed rate, cycling
// record kinds round-robin.
type Streamer struct {
	id     string
	dial   transport.DialFunc
	gen    *telemetry.Generator
	writer PacketWriter
	opts   Options

	now   func() time.Time
	sleep func(time.Duration)

	mu      sync.Mutex
	state   StreamState
	packets int
	bytes   int64
	elapsed time.Duration
}

// New builds a Streamer for opts. The writer may be nil for a silent
// stream.
func New(dial transport.DialFunc, writer PacketWriter, opts Options) *Streamer {
	if opts.RateHz <= 0 {
		opts.RateHz = 10
	}
	if opts.StatusEvery <= 0 {
		opts.StatusEvery = 30 * time.Second
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Streamer{
		id:     uuid.New().String(),
		dial:   dial,
		gen:    telemetry.NewGenerator(profile.ByName(opts.Profile), rng),
		writer: writer,
		opts:   opts,
		now:    time.Now,
		sleep:  time.Sleep,
		state:  StateIdle,
	}
}

// ID returns the stream identifier used in diagnostic rows.
func (s *Streamer) ID() string { return s.id }

// Run connects and paces packets until the duration elapses, the context
// is cancelled, or a write fails hard. The port is closed exactly once
// on the way out.
func (s *Streamer) Run(ctx context.Context) (Report, error) {
	log := logging.FromContext(ctx)

	port, err := s.dial()
	if err != nil {
		s.setState(StateFailed)
		log.Error("connect failed", "stream_id", s.id, "err", err)
		return s.report(), err
	}
	defer port.Close()
	s.setState(StateConnected)

	interval := time.Duration(float64(time.Second) / s.opts.RateHz)
	log.Info("stream started",
		"stream_id", s.id,
		"scenario", s.gen.Profile().Name,
		"rate_hz", s.opts.RateHz,
		"interval", interval,
	)

	s.setState(StateRunning)
	start := s.now()
	lastPacket := start
	lastStatus := start
	s.pushStatus(ctx, 0)
	var runErr error

loop:
	for {
		select {
		case <-ctx.Done():
			log.Info("stream interrupted", "stream_id", s.id)
			break loop
		default:
		}

		now := s.now()
		elapsed := now.Sub(start)
		if s.opts.Duration > 0 && elapsed >= s.opts.Duration {
			break loop
		}

		if now.Sub(lastPacket) >= interval {
			err := s.emit(ctx, port, elapsed)
			lastPacket = now
			if err != nil {
				if !s.opts.SoftErrors {
					runErr = err
					log.Error("write failed", "stream_id", s.id, "err", err)
					break loop
				}
				log.Warn("write failed, retrying next tick", "stream_id", s.id, "err", err)
			}
		}

		if now.Sub(lastStatus) >= s.opts.StatusEvery {
			s.pushStatus(ctx, elapsed)
			lastStatus = now
		}

		s.sleep(pacingGrain)
	}

	final := s.now().Sub(start)
	s.mu.Lock()
	s.elapsed = final
	s.mu.Unlock()
	if runErr != nil {
		s.setState(StateFailed)
	} else {
		s.setState(StateStopped)
	}
	s.pushStatus(ctx, final)

	rep := s.report()
	log.Info("stream finished",
		"stream_id", rep.StreamID,
		"state", rep.State.String(),
		"packets", rep.Packets,
		"bytes", rep.Bytes,
		"elapsed", rep.Elapsed,
		"odometer_km", rep.OdometerKM,
		"energy_wh", rep.EnergyWh,
	)
	return rep, runErr
}

// emit advances the vehicle, builds the next record kind in the cycle,
// and writes one frame. The kind counter moves only on success, so a
// retried tick re-sends the same kind.
func (s *Streamer) emit(ctx context.Context, port transport.Port, elapsed time.Duration) error {
	s.mu.Lock()
	kind := sendCycle[s.packets%len(sendCycle)]
	s.mu.Unlock()

	s.gen.Advance(elapsed.Seconds())
	pkt := s.frame(kind, elapsed)
	frame, err := wire.Marshal(pkt)
	if err != nil {
		return err
	}
	if _, err := port.Write(frame); err != nil {
		return &transport.WriteError{Err: err}
	}
	if err := port.Flush(); err != nil {
		return &transport.WriteError{Err: err}
	}

	s.mu.Lock()
	s.packets++
	s.bytes += int64(len(frame))
	seq := s.packets
	s.mu.Unlock()

	s.pushPacket(ctx, PacketRecord{
		StreamID: s.id,
		Seq:      seq,
		Kind:     kind.String(),
		Scenario: s.gen.Profile().Name,
		Bytes:    len(frame),
		Packet:   *pkt,
	})
	return nil
}

func (s *Streamer) frame(kind telemetry.PacketType, elapsed time.Duration) *wire.Packet {
	pkt := &wire.Packet{Type: kind, TimestampMs: uint64(s.now().UnixMilli())}
	switch kind {
	case telemetry.PacketBMS:
		d := s.gen.BuildBMS(elapsed.Seconds())
		pkt.BMS = &d
	case telemetry.PacketInverter:
		d := s.gen.BuildInverter()
		pkt.Inverter = &d
	default:
		d := s.gen.BuildAPPS()
		pkt.APPS = &d
	}
	return pkt
}

func (s *Streamer) pushPacket(ctx context.Context, rec PacketRecord) {
	if s.writer == nil {
		return
	}
	if err := s.writer.WritePacket(rec); err != nil {
		logging.FromContext(ctx).Error("diagnostic write failed", "stream_id", s.id, "err", err)
	}
}

func (s *Streamer) pushStatus(ctx context.Context, elapsed time.Duration) {
	if s.writer == nil {
		return
	}
	st := s.gen.State()
	s.mu.Lock()
	row := StatusRow{
		StreamID:   s.id,
		Scenario:   s.gen.Profile().Name,
		Phase:      s.gen.Phase(),
		State:      s.state.String(),
		Packets:    s.packets,
		Bytes:      s.bytes,
		RateHz:     s.opts.RateHz,
		OdometerKM: st.OdometerKM,
		EnergyWh:   st.EnergyWh,
		ElapsedS:   elapsed.Seconds(),
	}
	s.mu.Unlock()
	if err := s.writer.WriteStatus(row); err != nil {
		logging.FromContext(ctx).Error("status write failed", "stream_id", s.id, "err", err)
	}
}

func (s *Streamer) setState(st StreamState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Streamer) report() Report {
	st := s.gen.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Report{
		StreamID:   s.id,
		Scenario:   s.gen.Profile().Name,
		State:      s.state,
		Packets:    s.packets,
		Bytes:      s.bytes,
		Elapsed:    s.elapsed,
		OdometerKM: st.OdometerKM,
		EnergyWh:   st.EnergyWh,
	}
}
