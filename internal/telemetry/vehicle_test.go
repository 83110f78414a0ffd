package telemetry

import (
	"math/rand"
	"testing"

	"github.com/york-fs/cleansend/internal/profile"
)

func TestAdvanceKeepsInvariants(t *testing.T) {
	for _, name := range profile.Names() {
		prof := profile.ByName(name)
		st := NewState()
		rng := rand.New(rand.NewSource(42))
		prevOdo := 0.0
		for i := 1; i <= 1200; i++ {
			elapsed := float64(i) * 0.1
			st.Advance(elapsed, prof.Target(elapsed), prof.ControllerGain, rng)
			if st.Throttle < 0 || st.Throttle > 1 {
				t.Fatalf("%s: throttle %f out of range at t=%.1f", name, st.Throttle, elapsed)
			}
			if st.MotorRPM < 0 {
				t.Fatalf("%s: negative rpm %d at t=%.1f", name, st.MotorRPM, elapsed)
			}
			if st.OdometerKM < prevOdo {
				t.Fatalf("%s: odometer went backwards at t=%.1f", name, elapsed)
			}
			prevOdo = st.OdometerKM
		}
	}
}

func TestFirstAdvanceAccumulatesNothing(t *testing.T) {
	prof := profile.ByName("city")
	st := NewState()
	rng := rand.New(rand.NewSource(1))
	st.Advance(0.1, prof.Target(0.1), prof.ControllerGain, rng)
	if st.OdometerKM != 0 || st.EnergyWh != 0 {
		t.Errorf("expected empty accumulators after first advance, got odo=%f energy=%f", st.OdometerKM, st.EnergyWh)
	}
}

func TestDriveAccumulatesDistanceAndEnergy(t *testing.T) {
	prof := profile.ByName("track_day")
	st := NewState()
	rng := rand.New(rand.NewSource(2))
	for i := 1; i <= 100; i++ {
		elapsed := float64(i) * 0.5
		st.Advance(elapsed, prof.Target(elapsed), prof.ControllerGain, rng)
	}
	if st.OdometerKM <= 0 {
		t.Errorf("expected distance after a hot lap, got %f", st.OdometerKM)
	}
	if st.EnergyWh <= 0 {
		t.Errorf("expected energy draw after a hot lap, got %f", st.EnergyWh)
	}
}

func TestThrottleTracksTarget(t *testing.T) {
	prof := profile.ByName("track_day")
	st := NewState()
	rng := rand.New(rand.NewSource(7))
	for i := 1; i <= 50; i++ {
		elapsed := float64(i) * 0.1
		st.Advance(elapsed, prof.Target(elapsed), prof.ControllerGain, rng)
	}
	if st.Throttle < 0.5 {
		t.Errorf("expected throttle to approach the hot-lap demand, got %f", st.Throttle)
	}
}

func TestNewStateDefaults(t *testing.T) {
	st := NewState()
	if st.BatteryVoltage != 84.0 {
		t.Errorf("expected 84V pack, got %f", st.BatteryVoltage)
	}
	if st.Throttle != 0 || st.MotorRPM != 0 {
		t.Errorf("expected vehicle at rest, got %+v", st)
	}
}
