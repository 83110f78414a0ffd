// Package profile defines the mission profiles that shape throttle demand
// over a simulated drive.
package profile

import (
	"math"
	"sort"
)

// Target is the drive demand a mission profile produces for one moment of
// elapsed time.
type Target struct {
	Throttle  float64 // normalized pedal demand, always within [0,1]
	BaseTempC float64 // ambient-plus-duty thermal floor for the pack
	Scenario  string  // human-readable phase label
}

// Func maps elapsed seconds since stream start to a drive target.
type Func func(elapsed float64) Target

// Profile bundles a mission's target function with the constants the
// vehicle model needs.
type Profile struct {
	Name           string
	ControllerGain float64 // controller heating per unit of drive load
	Target         Func
}

// DefaultName is the profile substituted for unknown names.
const DefaultName = "city"

var profiles = map[string]Profile{
	"idle":            {Name: "idle", ControllerGain: 20, Target: idle},
	"city":            {Name: "city", ControllerGain: 20, Target: city},
	"highway":         {Name: "highway", ControllerGain: 25, Target: highway},
	"track_day":       {Name: "track_day", ControllerGain: 35, Target: trackDay},
	"efficiency_test": {Name: "efficiency_test", ControllerGain: 20, Target: efficiency},
}

// ByName resolves a mission profile. Unknown names fall back to the city
// profile rather than failing.
func ByName(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles[DefaultName]
}

// Names lists the known profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func idle(_ float64) Target {
	return Target{Throttle: 0, BaseTempC: 25, Scenario: "Idle"}
}

// city runs a 60s stop-and-go cycle: accelerate, cruise, brake, wait.
func city(elapsed float64) Target {
	c := math.Mod(elapsed, 60)
	var th float64
	switch {
	case c < 15:
		th = math.Min(0.4, c/15*0.4)
	case c < 35:
		th = 0.3 + 0.1*math.Sin(0.3*elapsed)
	case c < 45:
		th = math.Max(0, 0.3-(c-35)/10*0.3)
	default:
		th = 0
	}
	return Target{Throttle: th, BaseTempC: 30, Scenario: "City"}
}

// highway ramps onto the road, then cruises at 0.75 with a passing surge
// to 0.95 during seconds [40,60) of each 120s cycle.
func highway(elapsed float64) Target {
	var th float64
	if elapsed < 10 {
		th = 0.6 + (elapsed/10)*0.2
	} else {
		pc := math.Mod(elapsed-10, 120)
		if pc >= 40 && pc < 60 {
			th = 0.75 + 0.2
		} else {
			th = 0.75 + 0.05*math.Sin(0.1*elapsed)
		}
	}
	return Target{Throttle: clamp01(th), BaseTempC: 35, Scenario: "Highway"}
}

// trackDay alternates 120s hot laps with 60s cool-down laps.
func trackDay(elapsed float64) Target {
	lap := math.Mod(elapsed, 180)
	var th float64
	if lap < 120 {
		th = 0.7 + 0.3*math.Abs(math.Sin(0.1*lap))
	} else {
		th = 0.2 + 0.1*math.Sin(0.2*lap)
	}
	return Target{Throttle: clamp01(th), BaseTempC: 45, Scenario: "Track"}
}

// efficiency holds a gentle constant-speed sweep for range measurement.
func efficiency(elapsed float64) Target {
	return Target{Throttle: 0.15 + 0.1*math.Sin(0.05*elapsed), BaseTempC: 22, Scenario: "Efficiency"}
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
