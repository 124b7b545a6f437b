package tecio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-kit/log"
	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/eq"
)

var order = binary.ByteOrder(binary.LittleEndian)

func parse(t *testing.T, data []byte) (*ZoneHeader, int64) {
	t.Helper()
	hd, resume, err := ParseZoneHeader(
		bytes.NewReader(data), order, log.NewNopLogger())
	if err != nil {
		t.Fatalf("Expected valid zone header, got error '%s'", err.Error())
	}
	return hd, resume
}

func TestQuadZone(t *testing.T) {
	data := []byte(`TITLE = "square"
VARIABLES = "X", "Y", "Rho"
ZONE T="only", NODES=4, ELEMENTS=1, ET=FEQUADRILATERAL
0.0 0.0 1.0
1.0 0.0 2.0
1.0 1.0 3.0
0.0 1.0 4.0
1 2 3 4
`)
	hd, resume := parse(t, data)

	if hd.Title != "square" {
		t.Errorf("Expected title 'square', got '%s'", hd.Title)
	}
	if !eq.Strings(hd.Names, []string{"X", "Y", "Rho"}) {
		t.Errorf("Expected names [X Y Rho], got %v", hd.Names)
	}
	if hd.Nodes != 4 || hd.Cells != 1 {
		t.Errorf("Expected (nodes, elements) = (4, 1), got (%d, %d)",
			hd.Nodes, hd.Cells)
	}
	if hd.NDim != 2 {
		t.Errorf("Expected 2D from FEQUADRILATERAL, got %dD", hd.NDim)
	}
	if hd.Binary {
		t.Errorf("Expected a text zone, but it was marked binary.")
	}

	vars, conn, err := ReadZoneData(bytes.NewReader(data), hd, resume, order)
	if err != nil {
		t.Fatalf("Expected valid zone data, got error '%s'", err.Error())
	}
	if !eq.Float64s(vars[2], []float64{1, 2, 3, 4}) {
		t.Errorf("Expected Rho [1 2 3 4], got %v", vars[2])
	}
	// 2D connectivity comes back 0-based but otherwise untouched.
	if !eq.Int32s(conn[0], []int32{0, 1, 2, 3}) {
		t.Errorf("Expected connectivity [0 1 2 3], got %v", conn[0])
	}
}

func TestMissingTitle(t *testing.T) {
	data := []byte(`VARIABLES = "X", "Y", "Rho"
ZONE N=4, E=1, ET=QUADRILATERAL
0 0 1
1 0 2
1 1 3
0 1 4
1 2 3 4
`)
	hd, _ := parse(t, data)
	if hd.Title != "" {
		t.Errorf("Expected an empty title, got '%s'", hd.Title)
	}
	if hd.Nodes != 4 || hd.Cells != 1 {
		t.Errorf("Expected (nodes, elements) = (4, 1), got (%d, %d)",
			hd.Nodes, hd.Cells)
	}
}

func TestZoneTitleFallback(t *testing.T) {
	data := []byte(`VARIABLES = "X", "Y", "Rho"
ZONE T="from the zone", N=4, E=1, ET=QUADRILATERAL
0 0 1
1 0 2
1 1 3
0 1 4
1 2 3 4
`)
	hd, _ := parse(t, data)
	if hd.Title != "from the zone" {
		t.Errorf("Expected the zone's T to fill the missing title, got '%s'",
			hd.Title)
	}
}

func TestMultilineVariables(t *testing.T) {
	data := []byte(`TITLE = "big"
VARIABLES = "X", "Y", "Z"
"Rho", "P"
"Bx", "By", "Bz"
ZONE N=8, E=1, ET=BRICK
`)
	hd, _ := parse(t, data)
	exp := []string{"X", "Y", "Z", "Rho", "P", "Bx", "By", "Bz"}
	if !eq.Strings(hd.Names, exp) {
		t.Errorf("Expected names %v, got %v", exp, hd.Names)
	}
	if hd.NDim != 3 {
		t.Errorf("Expected 3D from BRICK, got %dD", hd.NDim)
	}
}

func TestAuxData(t *testing.T) {
	data := []byte(`TITLE = "aux"
VARIABLES = "X", "Y", "Rho"
ZONE N=4, E=1, ET=QUADRILATERAL
AUXDATA TIMESIM = "1.25"
AUXDATA rCurrents = "3.5"
0 0 1
1 0 2
1 1 3
0 1 4
1 2 3 4
`)
	hd, resume := parse(t, data)

	if len(hd.Aux) != 2 {
		t.Fatalf("Expected 2 AUXDATA pairs, got %d", len(hd.Aux))
	}
	if hd.Aux[0].Key != "TIMESIM" || hd.Aux[1].Key != "rCurrents" {
		t.Errorf("Expected keys in file order [TIMESIM rCurrents], got " +
			"[%s %s]", hd.Aux[0].Key, hd.Aux[1].Key)
	}
	if val, ok := hd.AuxValue("rcurrents"); !ok || val != "3.5" {
		t.Errorf("Expected case-insensitive lookup of rCurrents = 3.5, " +
			"got ('%s', %v)", val, ok)
	}

	// AUXDATA lines move the resume point; the payload must still decode.
	vars, _, err := ReadZoneData(bytes.NewReader(data), hd, resume, order)
	if err != nil {
		t.Fatalf("Expected valid zone data, got error '%s'", err.Error())
	}
	if !eq.Float64s(vars[2], []float64{1, 2, 3, 4}) {
		t.Errorf("Expected Rho [1 2 3 4], got %v", vars[2])
	}
}

func TestMissingZone(t *testing.T) {
	data := []byte("TITLE = \"nothing here\"\nVARIABLES = \"X\"\n")
	_, _, err := ParseZoneHeader(
		bytes.NewReader(data), order, log.NewNopLogger())
	if !errors.Is(err, ErrMissingZoneInfo) {
		t.Errorf("Expected ErrMissingZoneInfo, got %v", err)
	}

	_, _, err = ParseZoneHeader(
		bytes.NewReader([]byte{ }), order, log.NewNopLogger())
	if !errors.Is(err, ErrMissingZoneInfo) {
		t.Errorf("Expected ErrMissingZoneInfo for an empty file, got %v", err)
	}
}

func TestBinaryZone(t *testing.T) {
	nodes, cells := 8, 1

	buf := &bytes.Buffer{ }
	buf.WriteString("TITLE = \"bin\"\n")
	buf.WriteString("VARIABLES = \"X\", \"Y\", \"Z\", \"Rho\"\n")
	buf.WriteString("ZONE T=\"bin\", N=")
	binary.Write(buf, order, int32(nodes))
	buf.WriteString(", E=")
	binary.Write(buf, order, int32(cells))
	buf.WriteString(", ET=BRICK\n")
	buf.WriteString("AUXDATA SAVEDATE = \"2026-08-29\"\n")

	headerLen := int64(buf.Len())

	vars := [][]float64{
		{0, 1, 0, 1, 0, 1, 0, 1},
		{0, 0, 1, 1, 0, 0, 1, 1},
		{0, 0, 0, 0, 1, 1, 1, 1},
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	for i := range vars {
		binary.Write(buf, order, int32(4*nodes))
		for _, x := range vars[i] { binary.Write(buf, order, float32(x)) }
		binary.Write(buf, order, int32(4*nodes))
	}
	binary.Write(buf, order, int32(4*8*cells))
	for i := int32(1); i <= 8; i++ { binary.Write(buf, order, i) }
	binary.Write(buf, order, int32(4*8*cells))

	data := buf.Bytes()
	hd, resume := parse(t, data)

	if !hd.Binary {
		t.Fatalf("Expected raw-byte counts to mark the zone binary.")
	}
	if hd.Nodes != nodes || hd.Cells != cells {
		t.Errorf("Expected (nodes, elements) = (%d, %d), got (%d, %d)",
			nodes, cells, hd.Nodes, hd.Cells)
	}
	if resume != headerLen {
		t.Errorf("Expected the payload to resume at %d, got %d",
			headerLen, resume)
	}
	if val, ok := hd.AuxValue("SAVEDATE"); !ok || val != "2026-08-29" {
		t.Errorf("Expected SAVEDATE = 2026-08-29, got ('%s', %v)", val, ok)
	}

	outVars, conn, err := ReadZoneData(bytes.NewReader(data), hd, resume, order)
	if err != nil {
		t.Fatalf("Expected valid binary zone data, got error '%s'",
			err.Error())
	}
	for i := range vars {
		if !eq.Float64s(outVars[i], vars[i]) {
			t.Errorf("Expected %s = %v, got %v",
				hd.Names[i], vars[i], outVars[i])
		}
	}
	if !eq.Int32s(conn[0], []int32{0, 1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("Expected connectivity [0..7], got %v", conn[0])
	}
}

func TestBinaryZoneWhitespaceCountByte(t *testing.T) {
	// 32 encodes as the raw bytes 20 00 00 00, whose low-order byte is an
	// ASCII space. The probe must see those bytes exactly as written.
	nodes, cells := 32, 1

	buf := &bytes.Buffer{ }
	buf.WriteString("TITLE = \"wide\"\n")
	buf.WriteString("VARIABLES = \"X\", \"Y\"\n")
	buf.WriteString("ZONE N=")
	binary.Write(buf, order, int32(nodes))
	buf.WriteString(", E=")
	binary.Write(buf, order, int32(cells))
	buf.WriteString(", ET=QUADRILATERAL\n")

	vars := make([][]float64, 2)
	for i := range vars {
		vars[i] = make([]float64, nodes)
		for n := range vars[i] { vars[i][n] = float64(i*nodes + n) }
		binary.Write(buf, order, int32(4*nodes))
		for _, x := range vars[i] { binary.Write(buf, order, float32(x)) }
		binary.Write(buf, order, int32(4*nodes))
	}
	binary.Write(buf, order, int32(4*4*cells))
	for _, idx := range []int32{ 1, 2, 3, 4 } {
		binary.Write(buf, order, idx)
	}
	binary.Write(buf, order, int32(4*4*cells))

	data := buf.Bytes()
	hd, resume := parse(t, data)

	if !hd.Binary {
		t.Fatalf("Expected raw-byte counts to mark the zone binary.")
	}
	if hd.Nodes != nodes || hd.Cells != cells {
		t.Errorf("Expected (nodes, elements) = (%d, %d), got (%d, %d)",
			nodes, cells, hd.Nodes, hd.Cells)
	}

	outVars, conn, err := ReadZoneData(bytes.NewReader(data), hd, resume, order)
	if err != nil {
		t.Fatalf("Expected valid binary zone data, got error '%s'",
			err.Error())
	}
	if !eq.Float64s(outVars[1], vars[1]) {
		t.Errorf("Expected %s = %v, got %v", hd.Names[1], vars[1], outVars[1])
	}
	if !eq.Int32s(conn[0], []int32{0, 1, 2, 3}) {
		t.Errorf("Expected connectivity [0 1 2 3], got %v", conn[0])
	}
}

func TestMalformedNodeLine(t *testing.T) {
	data := []byte(`TITLE = "bad"
VARIABLES = "X", "Y", "Rho"
ZONE N=2, E=0, ET=QUADRILATERAL
0 0 1
1 0
`)
	hd, resume := parse(t, data)
	_, _, err := ReadZoneData(bytes.NewReader(data), hd, resume, order)
	if err == nil {
		t.Errorf("Expected a short node line to fail, but it succeeded.")
	}
}
