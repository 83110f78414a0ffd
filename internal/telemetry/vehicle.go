package telemetry

import (
	"math"
	"math/rand"

	"github.com/york-fs/cleansend/internal/profile"
)

// State holds the evolving vehicle model every record builder reads from.
// It is the single owner of throttle smoothing; builders never re-derive
// pedal position or temperatures.
type State struct {
	Throttle        float64
	MotorCurrentA   float64
	MotorRPM        int32
	PackTempC       float64
	ControllerTempC float64
	BatteryVoltage  float64
	OdometerKM      float64
	EnergyWh        float64

	lastElapsed float64
}

// NewState returns a vehicle at rest on a nominal 84V pack.
func NewState() *State {
	return &State{BatteryVoltage: 84.0}
}

// Advance moves the model to the given elapsed time under a profile target.
// Distance and energy integrate over the interval since the previous call;
// the first call establishes the baseline and accumulates nothing.
func (s *State) Advance(elapsed float64, tgt profile.Target, gain float64, rng *rand.Rand) {
	if s.lastElapsed > 0 {
		dt := elapsed - s.lastElapsed
		s.OdometerKM += (float64(s.MotorRPM) / 4000 * 120) * dt / 3600
		s.EnergyWh += s.MotorCurrentA * s.BatteryVoltage * dt / 3600000
	}
	s.lastElapsed = elapsed

	s.Throttle = clamp01(s.Throttle + (tgt.Throttle-s.Throttle)*0.15)
	s.MotorCurrentA = s.Throttle*150 + gauss(rng, 3)
	s.MotorRPM = int32(math.Round(s.Throttle*4000 + gauss(rng, 100)))
	if s.MotorRPM < 0 {
		s.MotorRPM = 0
	}
	load := math.Abs(s.MotorCurrentA)
	s.PackTempC = tgt.BaseTempC + load*0.1 + gauss(rng, 2)
	s.ControllerTempC = tgt.BaseTempC + load/150*gain + gauss(rng, 2)
}

func gauss(rng *rand.Rand, sigma float64) float64 {
	return rng.NormFloat64() * sigma
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
