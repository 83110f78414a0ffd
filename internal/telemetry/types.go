// Telemetry record structs matching the wire schema in proto/telemetry.proto
package telemetry

// PacketType selects which payload a telemetry frame carries.
type PacketType int32

const (
	PacketUnspecified PacketType = iota
	PacketAPPS
	PacketBMS
	PacketInverter
)

func (p PacketType) String() string {
	switch p {
	case PacketAPPS:
		return "APPS"
	case PacketBMS:
		return "BMS"
	case PacketInverter:
		return "INVERTER"
	}
	return "UNSPECIFIED"
}

// APPSState reports the accelerator pedal plausibility monitor.
type APPSState int32

const (
	APPSUnspecified APPSState = iota
	APPSIdle
	APPSRunning
	APPSError
)

func (s APPSState) String() string {
	switch s {
	case APPSIdle:
		return "idle"
	case APPSRunning:
		return "running"
	case APPSError:
		return "error"
	}
	return "unspecified"
}

// ShutdownReason explains why the BMS opened the shutdown circuit.
type ShutdownReason int32

const (
	ShutdownUnspecified ShutdownReason = iota
	ShutdownOvercurrent
	ShutdownOvertemperature
	ShutdownUndervoltage
	ShutdownOvervoltage
	ShutdownExternalKill
)

// FaultCode is the inverter protection fault, highest-priority match first.
type FaultCode int32

const (
	FaultNone FaultCode = iota
	FaultOvervoltage
	FaultUndervoltage
	FaultDRV
	FaultOvercurrent
	FaultControllerOvertemp
	FaultMotorOvertemp
)

func (f FaultCode) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultOvervoltage:
		return "overvoltage"
	case FaultUndervoltage:
		return "undervoltage"
	case FaultDRV:
		return "drv"
	case FaultOvercurrent:
		return "overcurrent"
	case FaultControllerOvertemp:
		return "controller_overtemp"
	case FaultMotorOvertemp:
		return "motor_overtemp"
	}
	return "unknown"
}

// APPSData is one accelerator pedal sensor report.
type APPSData struct {
	State              APPSState `json:"state"`
	ThrottlePercentage float64   `json:"throttle_percentage"`
	MotorCurrentA      float64   `json:"motor_current_a"`
	MotorRPM           int32     `json:"motor_rpm"`
}

// BMSSegment is one battery segment report: 12 cell taps and 23 thermistors.
type BMSSegment struct {
	BuckRailVoltage      float64   `json:"buck_rail_voltage"`
	ConnectedCellTaps    uint32    `json:"connected_cell_taps"`
	DegradedCellTaps     uint32    `json:"degraded_cell_taps"`
	ConnectedThermistors uint32    `json:"connected_thermistors"`
	CellVoltages         []float64 `json:"cell_voltages"`
	Temperatures         []float64 `json:"temperatures"`
}

// BMSData is one battery management report across all five segments.
type BMSData struct {
	ShutdownActivated bool           `json:"shutdown_activated"`
	ShutdownReason    ShutdownReason `json:"shutdown_reason"`
	LVSRailVoltage    float64        `json:"lvs_rail_voltage"`
	PositiveCurrentA  float64        `json:"positive_current_a"`
	NegativeCurrentA  float64        `json:"negative_current_a"`
	Segments          []BMSSegment   `json:"segments"`
}

// InverterLimits carries the inverter's active limit flags.
type InverterLimits struct {
	CapacitorTemperature  bool `json:"capacitor_temperature"`
	DCCurrent             bool `json:"dc_current"`
	DriveEnable           bool `json:"drive_enable"`
	IGBTAcceleration      bool `json:"igbt_acceleration"`
	IGBTTemperature       bool `json:"igbt_temperature"`
	InputVoltage          bool `json:"input_voltage"`
	MotorAccelTemperature bool `json:"motor_accel_temperature"`
	MotorTemperature      bool `json:"motor_temperature"`
	RPMMinimum            bool `json:"rpm_minimum"`
	RPMMaximum            bool `json:"rpm_maximum"`
	Power                 bool `json:"power"`
}

// InverterData is one motor controller report.
type InverterData struct {
	FaultCode         FaultCode      `json:"fault_code"`
	ERPM              int32          `json:"erpm"`
	DutyCycle         float64        `json:"duty_cycle"`
	InputDCVoltage    float64        `json:"input_dc_voltage"`
	ACMotorCurrentA   float64        `json:"ac_motor_current_a"`
	DCBatteryCurrentA float64        `json:"dc_battery_current_a"`
	ControllerTempC   float64        `json:"controller_temp_c"`
	MotorTempC        float64        `json:"motor_temp_c"`
	DriveEnabled      bool           `json:"drive_enabled"`
	Limits            InverterLimits `json:"limits"`
}
