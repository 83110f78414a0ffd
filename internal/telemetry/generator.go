package telemetry

import (
	"math"
	"math/rand"

	"github.com/york-fs/cleansend/internal/profile"
)

const (
	segmentCount          = 5
	cellsPerSegment       = 12
	thermistorsPerSegment = 23
	// The first thermistors on each segment sit next to the balancer
	// resistors and read consistently warmer.
	balancerThermistors = 3

	connectedCellTapMask    = 0xFFF
	connectedThermistorMask = 0x7FFFFF
)

// Generator synthesizes telemetry records from the shared vehicle state.
// The pacing loop advances the state once per emission, then builds exactly
// one record.
type Generator struct {
	state *State
	prof  profile.Profile
	rng   *rand.Rand
	last  profile.Target
}

// NewGenerator creates a generator for one mission profile. The RNG is
// injected so seeded runs reproduce byte for byte.
func NewGenerator(prof profile.Profile, rng *rand.Rand) *Generator {
	return &Generator{state: NewState(), prof: prof, rng: rng, last: prof.Target(0)}
}

// State exposes the vehicle model, mainly for reports and tests.
func (g *Generator) State() *State { return g.state }

// Profile returns the mission profile driving this generator.
func (g *Generator) Profile() profile.Profile { return g.prof }

// Phase is the drive phase label of the most recent advance.
func (g *Generator) Phase() string { return g.last.Scenario }

// Advance moves the vehicle model to elapsed seconds since stream start
// and returns the profile target that drove it.
func (g *Generator) Advance(elapsed float64) profile.Target {
	tgt := g.prof.Target(elapsed)
	g.state.Advance(elapsed, tgt, g.prof.ControllerGain, g.rng)
	g.last = tgt
	return tgt
}

// BuildAPPS reports the pedal as the mission profile drives it.
func (g *Generator) BuildAPPS() APPSData {
	return APPSData{
		State:              APPSRunning,
		ThrottlePercentage: g.state.Throttle,
		MotorCurrentA:      g.state.MotorCurrentA,
		MotorRPM:           g.state.MotorRPM,
	}
}

// BuildBMS synthesizes the five-segment battery report.
func (g *Generator) BuildBMS(elapsed float64) BMSData {
	d := BMSData{
		ShutdownActivated: false,
		ShutdownReason:    ShutdownUnspecified,
		LVSRailVoltage:    12 + g.gauss(0.2),
		PositiveCurrentA:  math.Max(0, g.state.MotorCurrentA+g.gauss(1)),
		NegativeCurrentA:  math.Max(0, -math.Min(0, g.gauss(0.5))),
		Segments:          make([]BMSSegment, 0, segmentCount),
	}
	for i := 0; i < segmentCount; i++ {
		d.Segments = append(d.Segments, g.buildSegment(elapsed))
	}
	return d
}

func (g *Generator) buildSegment(elapsed float64) BMSSegment {
	seg := BMSSegment{
		BuckRailVoltage:      3.3 + g.gauss(0.05),
		ConnectedCellTaps:    connectedCellTapMask,
		DegradedCellTaps:     0x000,
		ConnectedThermistors: connectedThermistorMask,
		CellVoltages:         make([]float64, cellsPerSegment),
		Temperatures:         make([]float64, thermistorsPerSegment),
	}
	base := g.state.PackTempC + g.gauss(2)
	for i := range seg.CellVoltages {
		v := 3.7 + 0.3*math.Sin(elapsed*0.1+float64(i)*0.5) + g.gauss(0.02)
		seg.CellVoltages[i] = clampRange(v, 3.0, 4.3)
	}
	load := math.Abs(g.state.MotorCurrentA)
	for i := range seg.Temperatures {
		if i < balancerThermistors {
			seg.Temperatures[i] = base + g.gauss(2) + 5
		} else {
			seg.Temperatures[i] = base + g.gauss(1.5) + load*0.05
		}
	}
	return seg
}

// BuildInverter synthesizes the motor controller report, including fault
// derivation and the limit flag set.
func (g *Generator) BuildInverter() InverterData {
	st := g.state
	motorTemp := st.ControllerTempC*0.8 + g.gauss(1.5)
	erpm := int32(math.Round(float64(st.MotorRPM)*7 + g.gauss(50)))
	if erpm < 0 {
		erpm = 0
	}
	inputV := st.BatteryVoltage + g.gauss(1)
	fault := faultFor(st.ControllerTempC, motorTemp, inputV, st.MotorCurrentA)

	return InverterData{
		FaultCode:         fault,
		ERPM:              erpm,
		DutyCycle:         clamp01(st.Throttle*0.9 + g.gauss(0.02)),
		InputDCVoltage:    inputV,
		ACMotorCurrentA:   math.Abs(st.MotorCurrentA) + g.gauss(1),
		DCBatteryCurrentA: st.MotorCurrentA + g.gauss(0.5),
		ControllerTempC:   st.ControllerTempC,
		MotorTempC:        motorTemp,
		DriveEnabled:      fault == FaultNone,
		Limits:            limitsFor(st, motorTemp, inputV),
	}
}

// faultFor applies the inverter protection thresholds in priority order.
func faultFor(controllerTempC, motorTempC, inputVoltage, currentA float64) FaultCode {
	switch {
	case controllerTempC > 90:
		return FaultControllerOvertemp
	case motorTempC > 110:
		return FaultMotorOvertemp
	case inputVoltage < 60:
		return FaultUndervoltage
	case inputVoltage > 95:
		return FaultOvervoltage
	case math.Abs(currentA) > 160:
		return FaultOvercurrent
	}
	return FaultNone
}

// limitsFor evaluates the limit flag thresholds against the current state.
// Drive-enable and IGBT-acceleration limits are hard-wired off in this
// controller generation.
func limitsFor(st *State, motorTempC, inputVoltage float64) InverterLimits {
	load := math.Abs(st.MotorCurrentA)
	return InverterLimits{
		CapacitorTemperature:  st.ControllerTempC > 70,
		DCCurrent:             load > 140,
		DriveEnable:           false,
		IGBTAcceleration:      false,
		IGBTTemperature:       st.ControllerTempC > 80,
		InputVoltage:          inputVoltage < 70 || inputVoltage > 90,
		MotorAccelTemperature: motorTempC > 85,
		MotorTemperature:      motorTempC > 100,
		RPMMinimum:            st.MotorRPM < 100 && st.Throttle > 0.1,
		RPMMaximum:            st.MotorRPM > 3800,
		Power:                 st.MotorCurrentA*st.BatteryVoltage > 50000,
	}
}

func (g *Generator) gauss(sigma float64) float64 {
	return gauss(g.rng, sigma)
}
