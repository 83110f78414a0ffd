package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/york-fs/cleansend/internal/telemetry"
)

// Unmarshal decodes a protobuf frame produced by Marshal. Unknown fields
// are skipped so newer senders stay readable.
func Unmarshal(b []byte) (*Packet, error) {
	p := &Packet{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case packetFieldType:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("packet type: %w", err)
			}
			p.Type = telemetry.PacketType(v)
			b = b[n:]
		case packetFieldTimestamp:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("packet timestamp: %w", err)
			}
			p.TimestampMs = v
			b = b[n:]
		case packetFieldAPPS:
			body, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("apps payload: %w", err)
			}
			apps, err := unmarshalAPPS(body)
			if err != nil {
				return nil, err
			}
			p.APPS = apps
			b = b[n:]
		case packetFieldBMS:
			body, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms payload: %w", err)
			}
			bms, err := unmarshalBMS(body)
			if err != nil {
				return nil, err
			}
			p.BMS = bms
			b = b[n:]
		case packetFieldInverter:
			body, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter payload: %w", err)
			}
			inv, err := unmarshalInverter(body)
			if err != nil {
				return nil, err
			}
			p.Inverter = inv
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return p, nil
}

func unmarshalAPPS(b []byte) (*telemetry.APPSData, error) {
	d := &telemetry.APPSData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case appsFieldState:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("apps state: %w", err)
			}
			d.State = telemetry.APPSState(v)
			b = b[n:]
		case appsFieldThrottle:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("apps throttle: %w", err)
			}
			d.ThrottlePercentage = v
			b = b[n:]
		case appsFieldCurrent:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("apps current: %w", err)
			}
			d.MotorCurrentA = v
			b = b[n:]
		case appsFieldRPM:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("apps rpm: %w", err)
			}
			d.MotorRPM = int32(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return d, nil
}

func unmarshalBMS(b []byte) (*telemetry.BMSData, error) {
	d := &telemetry.BMSData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case bmsFieldShutdownActivated:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms shutdown flag: %w", err)
			}
			d.ShutdownActivated = protowire.DecodeBool(v)
			b = b[n:]
		case bmsFieldShutdownReason:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms shutdown reason: %w", err)
			}
			d.ShutdownReason = telemetry.ShutdownReason(v)
			b = b[n:]
		case bmsFieldLVSRail:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms lvs rail: %w", err)
			}
			d.LVSRailVoltage = v
			b = b[n:]
		case bmsFieldPositiveCurrent:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms positive current: %w", err)
			}
			d.PositiveCurrentA = v
			b = b[n:]
		case bmsFieldNegativeCurrent:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms negative current: %w", err)
			}
			d.NegativeCurrentA = v
			b = b[n:]
		case bmsFieldSegments:
			body, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("bms segment: %w", err)
			}
			seg, err := unmarshalSegment(body)
			if err != nil {
				return nil, err
			}
			d.Segments = append(d.Segments, *seg)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return d, nil
}

func unmarshalSegment(b []byte) (*telemetry.BMSSegment, error) {
	s := &telemetry.BMSSegment{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case segFieldBuckRail:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("segment buck rail: %w", err)
			}
			s.BuckRailVoltage = v
			b = b[n:]
		case segFieldConnectedCellTaps:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("segment cell taps: %w", err)
			}
			s.ConnectedCellTaps = uint32(v)
			b = b[n:]
		case segFieldDegradedCellTaps:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("segment degraded taps: %w", err)
			}
			s.DegradedCellTaps = uint32(v)
			b = b[n:]
		case segFieldConnectedThermistors:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("segment thermistors: %w", err)
			}
			s.ConnectedThermistors = uint32(v)
			b = b[n:]
		case segFieldCellVoltages:
			vs, n, err := consumeFloats(b, typ, s.CellVoltages)
			if err != nil {
				return nil, fmt.Errorf("segment cell voltages: %w", err)
			}
			s.CellVoltages = vs
			b = b[n:]
		case segFieldTemperatures:
			vs, n, err := consumeFloats(b, typ, s.Temperatures)
			if err != nil {
				return nil, fmt.Errorf("segment temperatures: %w", err)
			}
			s.Temperatures = vs
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return s, nil
}

func unmarshalInverter(b []byte) (*telemetry.InverterData, error) {
	d := &telemetry.InverterData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case invFieldFaultCode:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter fault code: %w", err)
			}
			d.FaultCode = telemetry.FaultCode(v)
			b = b[n:]
		case invFieldERPM:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter erpm: %w", err)
			}
			d.ERPM = int32(v)
			b = b[n:]
		case invFieldDutyCycle:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter duty cycle: %w", err)
			}
			d.DutyCycle = v
			b = b[n:]
		case invFieldInputVoltage:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter input voltage: %w", err)
			}
			d.InputDCVoltage = v
			b = b[n:]
		case invFieldACMotorCurrent:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter ac current: %w", err)
			}
			d.ACMotorCurrentA = v
			b = b[n:]
		case invFieldDCBatteryCurrent:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter dc current: %w", err)
			}
			d.DCBatteryCurrentA = v
			b = b[n:]
		case invFieldControllerTemp:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter controller temp: %w", err)
			}
			d.ControllerTempC = v
			b = b[n:]
		case invFieldMotorTemp:
			v, n, err := consumeFloat(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter motor temp: %w", err)
			}
			d.MotorTempC = v
			b = b[n:]
		case invFieldDriveEnabled:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter drive enabled: %w", err)
			}
			d.DriveEnabled = protowire.DecodeBool(v)
			b = b[n:]
		case invFieldLimits:
			body, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, fmt.Errorf("inverter limits: %w", err)
			}
			lim, err := unmarshalLimits(body)
			if err != nil {
				return nil, err
			}
			d.Limits = *lim
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return d, nil
}

func unmarshalLimits(b []byte) (*telemetry.InverterLimits, error) {
	l := &telemetry.InverterLimits{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if num < limFieldCapacitorTemp || num > limFieldPower {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		v, n, err := consumeVarint(b, typ)
		if err != nil {
			return nil, fmt.Errorf("limit field %d: %w", num, err)
		}
		set := protowire.DecodeBool(v)
		b = b[n:]
		switch num {
		case limFieldCapacitorTemp:
			l.CapacitorTemperature = set
		case limFieldDCCurrent:
			l.DCCurrent = set
		case limFieldDriveEnable:
			l.DriveEnable = set
		case limFieldIGBTAccel:
			l.IGBTAcceleration = set
		case limFieldIGBTTemp:
			l.IGBTTemperature = set
		case limFieldInputVoltage:
			l.InputVoltage = set
		case limFieldMotorAccelTemp:
			l.MotorAccelTemperature = set
		case limFieldMotorTemp:
			l.MotorTemperature = set
		case limFieldRPMMinimum:
			l.RPMMinimum = set
		case limFieldRPMMaximum:
			l.RPMMaximum = set
		case limFieldPower:
			l.Power = set
		}
	}
	return l, nil
}

func consumeVarint(b []byte, typ protowire.Type) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("unexpected wire type %d, want varint", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeFloat(b []byte, typ protowire.Type) (float64, int, error) {
	if typ != protowire.Fixed32Type {
		return 0, 0, fmt.Errorf("unexpected wire type %d, want fixed32", typ)
	}
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return float64(math.Float32frombits(v)), n, nil
}

// consumeFloats handles both packed and unpacked encodings of a repeated
// float field.
func consumeFloats(b []byte, typ protowire.Type, dst []float64) ([]float64, int, error) {
	if typ == protowire.Fixed32Type {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return append(dst, float64(math.Float32frombits(v))), n, nil
	}
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("unexpected wire type %d, want packed fixed32", typ)
	}
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	if len(body)%4 != 0 {
		return nil, 0, fmt.Errorf("packed fixed32 body of %d bytes", len(body))
	}
	for len(body) > 0 {
		v, m := protowire.ConsumeFixed32(body)
		if m < 0 {
			return nil, 0, protowire.ParseError(m)
		}
		dst = append(dst, float64(math.Float32frombits(v)))
		body = body[m:]
	}
	return dst, n, nil
}

func consumeBytes(b []byte, typ protowire.Type) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("unexpected wire type %d, want bytes", typ)
	}
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return body, n, nil
}
