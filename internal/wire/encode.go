package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/york-fs/cleansend/internal/telemetry"
)

// Marshal encodes a packet into a protobuf frame. The payload pointer
// matching the packet type must be set.
func Marshal(p *Packet) ([]byte, error) {
	var payload []byte
	switch p.Type {
	case telemetry.PacketAPPS:
		if p.APPS == nil {
			return nil, fmt.Errorf("marshal %s packet: missing apps payload", p.Type)
		}
		payload = appendAPPS(nil, p.APPS)
	case telemetry.PacketBMS:
		if p.BMS == nil {
			return nil, fmt.Errorf("marshal %s packet: missing bms payload", p.Type)
		}
		payload = appendBMS(nil, p.BMS)
	case telemetry.PacketInverter:
		if p.Inverter == nil {
			return nil, fmt.Errorf("marshal %s packet: missing inverter payload", p.Type)
		}
		payload = appendInverter(nil, p.Inverter)
	default:
		return nil, fmt.Errorf("marshal: unknown packet type %d", int32(p.Type))
	}

	b := appendVarintField(nil, packetFieldType, uint64(p.Type))
	b = appendVarintField(b, packetFieldTimestamp, p.TimestampMs)
	b = appendMessage(b, payloadField(p.Type), payload)
	return b, nil
}

func payloadField(t telemetry.PacketType) protowire.Number {
	switch t {
	case telemetry.PacketBMS:
		return packetFieldBMS
	case telemetry.PacketInverter:
		return packetFieldInverter
	default:
		return packetFieldAPPS
	}
}

func appendAPPS(b []byte, d *telemetry.APPSData) []byte {
	b = appendVarintField(b, appsFieldState, uint64(d.State))
	b = appendFloat(b, appsFieldThrottle, d.ThrottlePercentage)
	b = appendFloat(b, appsFieldCurrent, d.MotorCurrentA)
	b = appendInt32(b, appsFieldRPM, d.MotorRPM)
	return b
}

func appendSegment(b []byte, s *telemetry.BMSSegment) []byte {
	b = appendFloat(b, segFieldBuckRail, s.BuckRailVoltage)
	b = appendVarintField(b, segFieldConnectedCellTaps, uint64(s.ConnectedCellTaps))
	b = appendVarintField(b, segFieldDegradedCellTaps, uint64(s.DegradedCellTaps))
	b = appendVarintField(b, segFieldConnectedThermistors, uint64(s.ConnectedThermistors))
	b = appendPackedFloats(b, segFieldCellVoltages, s.CellVoltages)
	b = appendPackedFloats(b, segFieldTemperatures, s.Temperatures)
	return b
}

func appendBMS(b []byte, d *telemetry.BMSData) []byte {
	b = appendBool(b, bmsFieldShutdownActivated, d.ShutdownActivated)
	b = appendVarintField(b, bmsFieldShutdownReason, uint64(d.ShutdownReason))
	b = appendFloat(b, bmsFieldLVSRail, d.LVSRailVoltage)
	b = appendFloat(b, bmsFieldPositiveCurrent, d.PositiveCurrentA)
	b = appendFloat(b, bmsFieldNegativeCurrent, d.NegativeCurrentA)
	for i := range d.Segments {
		b = appendMessage(b, bmsFieldSegments, appendSegment(nil, &d.Segments[i]))
	}
	return b
}

func appendInverter(b []byte, d *telemetry.InverterData) []byte {
	b = appendVarintField(b, invFieldFaultCode, uint64(d.FaultCode))
	b = appendInt32(b, invFieldERPM, d.ERPM)
	b = appendFloat(b, invFieldDutyCycle, d.DutyCycle)
	b = appendFloat(b, invFieldInputVoltage, d.InputDCVoltage)
	b = appendFloat(b, invFieldACMotorCurrent, d.ACMotorCurrentA)
	b = appendFloat(b, invFieldDCBatteryCurrent, d.DCBatteryCurrentA)
	b = appendFloat(b, invFieldControllerTemp, d.ControllerTempC)
	b = appendFloat(b, invFieldMotorTemp, d.MotorTempC)
	b = appendBool(b, invFieldDriveEnabled, d.DriveEnabled)
	b = appendMessage(b, invFieldLimits, appendLimits(nil, &d.Limits))
	return b
}

func appendLimits(b []byte, l *telemetry.InverterLimits) []byte {
	b = appendBool(b, limFieldCapacitorTemp, l.CapacitorTemperature)
	b = appendBool(b, limFieldDCCurrent, l.DCCurrent)
	b = appendBool(b, limFieldDriveEnable, l.DriveEnable)
	b = appendBool(b, limFieldIGBTAccel, l.IGBTAcceleration)
	b = appendBool(b, limFieldIGBTTemp, l.IGBTTemperature)
	b = appendBool(b, limFieldInputVoltage, l.InputVoltage)
	b = appendBool(b, limFieldMotorAccelTemp, l.MotorAccelTemperature)
	b = appendBool(b, limFieldMotorTemp, l.MotorTemperature)
	b = appendBool(b, limFieldRPMMinimum, l.RPMMinimum)
	b = appendBool(b, limFieldRPMMaximum, l.RPMMaximum)
	b = appendBool(b, limFieldPower, l.Power)
	return b
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendInt32 writes a negative value sign-extended to ten bytes, the way
// proto int32 fields encode on the wire.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	return appendVarintField(b, num, uint64(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarintField(b, num, protowire.EncodeBool(v))
}

func appendFloat(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(float32(v)))
}

func appendPackedFloats(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	packed := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		packed = protowire.AppendFixed32(packed, math.Float32bits(float32(v)))
	}
	return appendMessage(b, num, packed)
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}
