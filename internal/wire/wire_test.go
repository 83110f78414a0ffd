package wire

import (
	"reflect"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/york-fs/cleansend/internal/telemetry"
)

// Test values stay exactly representable as float32 so the fixed32
// round trip compares equal.

func appsPacket() *Packet {
	return &Packet{
		Type:        telemetry.PacketAPPS,
		TimestampMs: 1712345678901,
		APPS: &telemetry.APPSData{
			State:              telemetry.APPSRunning,
			ThrottlePercentage: 0.25,
			MotorCurrentA:      42.5,
			MotorRPM:           1250,
		},
	}
}

func TestRoundTripAPPS(t *testing.T) {
	in := appsPacket()
	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestRoundTripBMS(t *testing.T) {
	in := &Packet{
		Type:        telemetry.PacketBMS,
		TimestampMs: 99,
		BMS: &telemetry.BMSData{
			ShutdownActivated: true,
			ShutdownReason:    telemetry.ShutdownOvercurrent,
			LVSRailVoltage:    12.5,
			PositiveCurrentA:  36.5,
			NegativeCurrentA:  0.5,
			Segments: []telemetry.BMSSegment{
				{
					BuckRailVoltage:      3.25,
					ConnectedCellTaps:    0xFFF,
					ConnectedThermistors: 0x7FFFFF,
					CellVoltages:         []float64{3.75, 3.5, 4.25},
					Temperatures:         []float64{30.5, 31, 29.25},
				},
				{
					BuckRailVoltage:      3.5,
					ConnectedCellTaps:    0xFFF,
					DegradedCellTaps:     0x003,
					ConnectedThermistors: 0x7FFFFF,
					CellVoltages:         []float64{4, 3.25},
					Temperatures:         []float64{28.75},
				},
			},
		},
	}
	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestRoundTripInverter(t *testing.T) {
	in := &Packet{
		Type:        telemetry.PacketInverter,
		TimestampMs: 1,
		Inverter: &telemetry.InverterData{
			FaultCode:         telemetry.FaultControllerOvertemp,
			ERPM:              8750,
			DutyCycle:         0.75,
			InputDCVoltage:    84,
			ACMotorCurrentA:   120.5,
			DCBatteryCurrentA: 118.25,
			ControllerTempC:   92.5,
			MotorTempC:        74,
			DriveEnabled:      false,
			Limits: telemetry.InverterLimits{
				CapacitorTemperature: true,
				IGBTTemperature:      true,
				RPMMaximum:           true,
			},
		},
	}
	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestNegativeRPMSurvives(t *testing.T) {
	in := appsPacket()
	in.APPS.MotorRPM = -250
	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.APPS.MotorRPM != -250 {
		t.Errorf("expected rpm -250, got %d", out.APPS.MotorRPM)
	}
}

func TestMarshalRejectsMissingPayload(t *testing.T) {
	cases := map[string]*Packet{
		"apps":     {Type: telemetry.PacketAPPS},
		"bms":      {Type: telemetry.PacketBMS},
		"inverter": {Type: telemetry.PacketInverter},
		"unknown":  {Type: telemetry.PacketType(42)},
	}
	for name, p := range cases {
		if _, err := Marshal(p); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	in := appsPacket()
	b, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))

	out, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestUnmarshalAcceptsUnpackedFloats(t *testing.T) {
	var seg []byte
	seg = appendFloat(seg, segFieldBuckRail, 3.25)
	for _, v := range []float64{3.75, 3.5} {
		seg = appendFloat(seg, segFieldCellVoltages, v)
	}
	var body []byte
	body = appendMessage(body, bmsFieldSegments, seg)
	var frame []byte
	frame = appendVarintField(frame, packetFieldType, uint64(telemetry.PacketBMS))
	frame = appendMessage(frame, packetFieldBMS, body)

	out, err := Unmarshal(frame)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := []float64{3.75, 3.5}
	if len(out.BMS.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(out.BMS.Segments))
	}
	if !reflect.DeepEqual(out.BMS.Segments[0].CellVoltages, want) {
		t.Errorf("expected %v, got %v", want, out.BMS.Segments[0].CellVoltages)
	}
}

func TestUnmarshalRejectsTruncatedFrame(t *testing.T) {
	b, err := Marshal(appsPacket())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if _, err := Unmarshal(b[:len(b)-3]); err == nil {
		t.Error("expected error for truncated frame, got nil")
	}
}

func TestUnmarshalRejectsWrongWireType(t *testing.T) {
	var frame []byte
	frame = appendVarintField(frame, packetFieldType, uint64(telemetry.PacketAPPS))
	frame = appendFloat(frame, packetFieldTimestamp, 5)
	_, err := Unmarshal(frame)
	if err == nil {
		t.Fatal("expected error for fixed32 timestamp, got nil")
	}
	if !strings.Contains(err.Error(), "timestamp") {
		t.Errorf("expected timestamp in error, got %q", err)
	}
}
