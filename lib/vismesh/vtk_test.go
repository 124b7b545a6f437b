package vismesh

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteUnstructured(t *testing.T) {
	names, vars, conn := unitCube()
	m, err := Emit("cube", 3, names, vars, conn,
		[]KeyValue{{"TIMESIM", "1.25"}})
	if err != nil {
		t.Fatalf("Expected a valid mesh, got error '%s'", err.Error())
	}

	buf := &bytes.Buffer{ }
	err = WriteUnstructured(buf, m)
	if err != nil {
		t.Fatalf("Expected the write to succeed, got error '%s'", err.Error())
	}

	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "# vtk DataFile Version 3.0" {
		t.Errorf("Expected the VTK magic line first, got '%s'", lines[0])
	}
	if lines[1] != "cube; TIMESIM=1.25" {
		t.Errorf("Expected the metadata folded into the title, got '%s'",
			lines[1])
	}
	if lines[2] != "ASCII" || lines[3] != "DATASET UNSTRUCTURED_GRID" {
		t.Errorf("Expected ASCII + UNSTRUCTURED_GRID, got '%s', '%s'",
			lines[2], lines[3])
	}

	out := buf.String()
	for _, want := range []string{
		"POINTS 8 double\n",
		"CELLS 1 9\n",
		"8 0 2 1 3 4 6 5 7\n",
		"CELL_TYPES 1\n11\n",
		"POINT_DATA 8\n",
		"SCALARS Rho double 1\nLOOKUP_TABLE default\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected the output to contain %q.", want)
		}
	}
}

func TestWriteUnstructured2DCellType(t *testing.T) {
	names := []string{"X", "Y", "P"}
	vars := [][]float64{{0, 1, 1, 0}, {0, 0, 1, 1}, {1, 2, 3, 4}}
	conn := [][]int32{{0, 1, 2, 3}}

	m, err := Emit("", 2, names, vars, conn, nil)
	if err != nil {
		t.Fatalf("Expected a valid mesh, got error '%s'", err.Error())
	}

	buf := &bytes.Buffer{ }
	if err = WriteUnstructured(buf, m); err != nil {
		t.Fatalf("Expected the write to succeed, got error '%s'", err.Error())
	}

	out := buf.String()
	if !strings.Contains(out, "CELL_TYPES 1\n9\n") {
		t.Errorf("Expected quadrilateral cell type 9, got:\n%s", out)
	}
	if !strings.Contains(out, "\nbatvtk output\n") {
		t.Errorf("Expected the default title for an untitled mesh.")
	}
}

func TestWriteGrid(t *testing.T) {
	// 2x3 grid, fastest-varying index last.
	shape := []int{2, 3}
	coords := [][]float64{
		{0, 0, 0, 1, 1, 1},
		{0, 1, 2, 0, 1, 2},
	}
	names := []string{"Rho"}
	fields := [][]float64{{1, 2, 3, 4, 5, 6}}

	buf := &bytes.Buffer{ }
	err := WriteGrid(buf, "slice", shape, coords, names, fields)
	if err != nil {
		t.Fatalf("Expected the write to succeed, got error '%s'", err.Error())
	}

	out := buf.String()
	if !strings.Contains(out, "DATASET STRUCTURED_GRID\n") {
		t.Errorf("Expected a structured grid dataset.")
	}
	// The shape reverses so that the fastest-varying axis comes first.
	if !strings.Contains(out, "DIMENSIONS 3 2 1\n") {
		t.Errorf("Expected DIMENSIONS 3 2 1, got:\n%s", out)
	}
	if !strings.Contains(out, "POINTS 6 double\n") {
		t.Errorf("Expected 6 points.")
	}
	if !strings.Contains(out, "0 1 0\n") {
		t.Errorf("Expected the third coordinate zero-padded.")
	}
	if !strings.Contains(out, "POINT_DATA 6\nSCALARS Rho double 1\n") {
		t.Errorf("Expected the Rho scalar attribute, got:\n%s", out)
	}
}
