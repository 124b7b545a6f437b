package recio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/phil-mansfield/batvtk/lib/eq"
)

var order = binary.ByteOrder(binary.LittleEndian)

// writeRecord writes one marker-bounded record, optionally with a lying
// closing marker.
func writeRecord(buf *bytes.Buffer, payload []byte, footDelta int32) {
	binary.Write(buf, order, int32(len(payload)))
	buf.Write(payload)
	binary.Write(buf, order, int32(len(payload)) + footDelta)
}

func TestReadRecord(t *testing.T) {
	buf := &bytes.Buffer{ }
	writeRecord(buf, []byte("hello"), 0)
	writeRecord(buf, []byte{ }, 0)

	out, err := ReadRecord(buf, order)
	if err != nil {
		t.Fatalf("Expected valid record read, got error '%s'", err.Error())
	}
	if string(out) != "hello" {
		t.Errorf("Expected payload 'hello', got '%s'", string(out))
	}

	out, err = ReadRecord(buf, order)
	if err != nil {
		t.Fatalf("Expected valid empty record read, got error '%s'",
			err.Error())
	}
	if len(out) != 0 {
		t.Errorf("Expected empty payload, got %d bytes", len(out))
	}
}

func TestReadRecordMarkerMismatch(t *testing.T) {
	buf := &bytes.Buffer{ }
	writeRecord(buf, []byte("hello"), 3)

	_, err := ReadRecord(buf, order)
	if err == nil {
		t.Errorf("Expected mismatched markers to fail, but they succeeded.")
	}
}

func TestReadSizedRecord(t *testing.T) {
	buf := &bytes.Buffer{ }
	writeRecord(buf, []byte{1, 2, 3, 4}, 0)

	_, err := ReadSizedRecord(buf, order, 8)
	if err == nil {
		t.Errorf("Expected a 4-byte record read as 8 bytes to fail, but " +
			"it succeeded.")
	}
}

func TestReadFloatRecord(t *testing.T) {
	exp := []float64{ 1.5, -2.25, 100.0 }

	buf := &bytes.Buffer{ }
	binary.Write(buf, order, int32(24))
	binary.Write(buf, order, exp)
	binary.Write(buf, order, int32(24))

	out, err := ReadFloatRecord(buf, order, 8, 3)
	if err != nil {
		t.Fatalf("Expected valid float record read, got error '%s'",
			err.Error())
	}
	if !eq.Float64s(out, exp) {
		t.Errorf("Expected %v, got %v", exp, out)
	}

	// The same values as 4-byte reals.
	x32 := []float32{ 1.5, -2.25, 100.0 }
	buf.Reset()
	binary.Write(buf, order, int32(12))
	binary.Write(buf, order, x32)
	binary.Write(buf, order, int32(12))

	out, err = ReadFloatRecord(buf, order, 4, 3)
	if err != nil {
		t.Fatalf("Expected valid real4 record read, got error '%s'",
			err.Error())
	}
	if !eq.Float64s(out, exp) {
		t.Errorf("Expected %v, got %v", exp, out)
	}
}

func TestReadInt32Record(t *testing.T) {
	exp := []int32{ 5, 6, 7, 8 }

	buf := &bytes.Buffer{ }
	binary.Write(buf, order, int32(16))
	binary.Write(buf, order, exp)
	binary.Write(buf, order, int32(16))

	out, err := ReadInt32Record(buf, order, 4)
	if err != nil {
		t.Fatalf("Expected valid int record read, got error '%s'",
			err.Error())
	}
	if !eq.Int32s(out, exp) {
		t.Errorf("Expected %v, got %v", exp, out)
	}
}

func TestDecodeFloatsBadWidth(t *testing.T) {
	_, err := DecodeFloats([]byte{1, 2, 3, 4}, order, 3)
	if err == nil {
		t.Errorf("Expected width 3 to fail, but it succeeded.")
	}
	_, err = DecodeFloats([]byte{1, 2, 3}, order, 4)
	if err == nil {
		t.Errorf("Expected a 3-byte block of 4-byte reals to fail, but it " +
			"succeeded.")
	}
}

func TestProbeInt32(t *testing.T) {
	probe, err := ProbeInt32([]byte("  1234 "), order)
	if err != nil {
		t.Fatalf("Expected valid text probe, got error '%s'", err.Error())
	}
	if probe.Binary {
		t.Errorf("Expected '1234' to parse as text, but it parsed as binary.")
	}
	if probe.Value != 1234 {
		t.Errorf("Expected 1234, got %d", probe.Value)
	}

	raw := make([]byte, 4)
	order.PutUint32(raw, uint32(300))
	probe, err = ProbeInt32(raw, order)
	if err != nil {
		t.Fatalf("Expected valid binary probe, got error '%s'", err.Error())
	}
	if !probe.Binary {
		t.Errorf("Expected raw bytes to parse as binary, but they parsed " +
			"as text.")
	}
	if probe.Value != 300 {
		t.Errorf("Expected 300, got %d", probe.Value)
	}

	_, err = ProbeInt32([]byte("ab"), order)
	if err == nil {
		t.Errorf("Expected a two-byte non-integer to fail, but it succeeded.")
	}
}

func TestParseFloats(t *testing.T) {
	out, err := ParseFloats([]string{"1.0", "-2.5", "3e2"})
	if err != nil {
		t.Fatalf("Expected valid parse, got error '%s'", err.Error())
	}
	if !eq.Float64s(out, []float64{1.0, -2.5, 300.0}) {
		t.Errorf("Expected [1 -2.5 300], got %v", out)
	}

	_, err = ParseFloats([]string{"1.0", "junk"})
	if err == nil {
		t.Errorf("Expected 'junk' to fail, but it succeeded.")
	}
}

func TestParseInts(t *testing.T) {
	out, err := ParseInts([]string{"1", "-2", "3"})
	if err != nil {
		t.Fatalf("Expected valid parse, got error '%s'", err.Error())
	}
	if !eq.Ints(out, []int{1, -2, 3}) {
		t.Errorf("Expected [1 -2 3], got %v", out)
	}

	_, err = ParseInts([]string{"1", "1.5"})
	if err == nil {
		t.Errorf("Expected '1.5' to fail as an int, but it succeeded.")
	}
}

func TestDecodeFloatsValues(t *testing.T) {
	buf := make([]byte, 8)
	order.PutUint64(buf, math.Float64bits(-12.375))

	out, err := DecodeFloats(buf, order, 8)
	if err != nil {
		t.Fatalf("Expected valid decode, got error '%s'", err.Error())
	}
	if !eq.Float64s(out, []float64{-12.375}) {
		t.Errorf("Expected [-12.375], got %v", out)
	}
}
