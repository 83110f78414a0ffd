// Package wire frames telemetry records into the protobuf envelope spoken
// on the serial link. The schema lives in proto/telemetry.proto; the codec
// here is written against encoding/protowire and must track that file.
package wire

import "github.com/york-fs/cleansend/internal/telemetry"

// Packet is the frame envelope. Exactly one payload pointer matching Type
// must be set before marshalling.
type Packet struct {
	Type        telemetry.PacketType    `json:"type"`
	TimestampMs uint64                  `json:"timestamp_ms"`
	APPS        *telemetry.APPSData     `json:"apps,omitempty"`
	BMS         *telemetry.BMSData      `json:"bms,omitempty"`
	Inverter    *telemetry.InverterData `json:"inverter,omitempty"`
}

// Field numbers from proto/telemetry.proto.
const (
	packetFieldType      = 1
	packetFieldTimestamp = 2
	packetFieldAPPS      = 3
	packetFieldBMS       = 4
	packetFieldInverter  = 5

	appsFieldState    = 1
	appsFieldThrottle = 2
	appsFieldCurrent  = 3
	appsFieldRPM      = 4

	segFieldBuckRail             = 1
	segFieldConnectedCellTaps    = 2
	segFieldDegradedCellTaps     = 3
	segFieldConnectedThermistors = 4
	segFieldCellVoltages         = 5
	segFieldTemperatures         = 6

	bmsFieldShutdownActivated = 1
	bmsFieldShutdownReason    = 2
	bmsFieldLVSRail           = 3
	bmsFieldPositiveCurrent   = 4
	bmsFieldNegativeCurrent   = 5
	bmsFieldSegments          = 6

	invFieldFaultCode        = 1
	invFieldERPM             = 2
	invFieldDutyCycle        = 3
	invFieldInputVoltage     = 4
	invFieldACMotorCurrent   = 5
	invFieldDCBatteryCurrent = 6
	invFieldControllerTemp   = 7
	invFieldMotorTemp        = 8
	invFieldDriveEnabled     = 9
	invFieldLimits           = 10

	limFieldCapacitorTemp   = 1
	limFieldDCCurrent       = 2
	limFieldDriveEnable     = 3
	limFieldIGBTAccel       = 4
	limFieldIGBTTemp        = 5
	limFieldInputVoltage    = 6
	limFieldMotorAccelTemp  = 7
	limFieldMotorTemp       = 8
	limFieldRPMMinimum      = 9
	limFieldRPMMaximum      = 10
	limFieldPower           = 11
)
