package vismesh

import (
	"bufio"
	"fmt"
	"io"
)

/* vtk.go writes meshes and grids in the legacy VTK text format: an
unstructured grid for element data and a structured grid for snapshot grid
data. The legacy format caps its title line at 255 characters, so AUXDATA
metadata is folded into the title best-effort and kept in full on the Mesh
for API consumers. */

const (
	vtkVoxel = 11
	vtkQuad = 9

	vtkTitleMax = 255
)

// WriteUnstructured writes m as a legacy VTK unstructured grid.
func WriteUnstructured(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	writeVTKPreamble(bw, m.Title, m.Meta)
	fmt.Fprintf(bw, "DATASET UNSTRUCTURED_GRID\n")

	fmt.Fprintf(bw, "POINTS %d double\n", m.Nodes)
	for n := 0; n < m.Nodes; n++ {
		fmt.Fprintf(bw, "%g %g %g\n",
			m.Points[3*n], m.Points[3*n+1], m.Points[3*n+2])
	}

	npc := m.NodesPerCell
	fmt.Fprintf(bw, "CELLS %d %d\n", m.Cells, m.Cells*(npc + 1))
	for c := 0; c < m.Cells; c++ {
		fmt.Fprintf(bw, "%d", npc)
		for _, idx := range m.Conn[c*npc : (c+1)*npc] {
			fmt.Fprintf(bw, " %d", idx)
		}
		fmt.Fprintf(bw, "\n")
	}

	cellType := vtkQuad
	if m.NDim == 3 { cellType = vtkVoxel }
	fmt.Fprintf(bw, "CELL_TYPES %d\n", m.Cells)
	for c := 0; c < m.Cells; c++ {
		fmt.Fprintf(bw, "%d\n", cellType)
	}

	writePointData(bw, m.Nodes, m.PointData)
	return bw.Flush()
}

// WriteGrid writes snapshot grid data as a legacy VTK structured grid. shape
// is the simulation's grid shape with the fastest-varying index last, so the
// VTK dimensions (fastest-varying first) are the shape reversed, padded with
// 1s to three axes. coords holds one array per dimension and fields one
// array per variable, all in the simulation's point order.
func WriteGrid(
	w io.Writer, title string, shape []int, coords [][]float64,
	names []string, fields [][]float64,
) error {
	bw := bufio.NewWriter(w)

	writeVTKPreamble(bw, title, nil)
	fmt.Fprintf(bw, "DATASET STRUCTURED_GRID\n")

	dims := [3]int{ 1, 1, 1 }
	for i := range shape {
		dims[i] = shape[len(shape)-1-i]
	}
	fmt.Fprintf(bw, "DIMENSIONS %d %d %d\n", dims[0], dims[1], dims[2])

	points := 1
	for _, nx := range shape { points *= nx }

	fmt.Fprintf(bw, "POINTS %d double\n", points)
	for p := 0; p < points; p++ {
		for d := 0; d < 3; d++ {
			if d > 0 { fmt.Fprintf(bw, " ") }
			if d < len(coords) {
				fmt.Fprintf(bw, "%g", coords[d][p])
			} else {
				fmt.Fprintf(bw, "0")
			}
		}
		fmt.Fprintf(bw, "\n")
	}

	writePointData(bw, points, BuildAttrs(names, fields))
	return bw.Flush()
}

// writeVTKPreamble writes the fixed two header lines of a legacy VTK file.
// Metadata pairs are folded into the title line up to the format's 255-byte
// limit.
func writeVTKPreamble(bw *bufio.Writer, title string, meta []KeyValue) {
	for _, kv := range meta {
		if title != "" { title += "; " }
		title += fmt.Sprintf("%s=%s", kv.Key, kv.Value)
	}
	if title == "" { title = "batvtk output" }
	if len(title) > vtkTitleMax { title = title[:vtkTitleMax] }

	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "ASCII\n")
}

func writePointData(bw *bufio.Writer, n int, attrs []Attr) {
	if len(attrs) == 0 { return }

	fmt.Fprintf(bw, "POINT_DATA %d\n", n)
	for _, a := range attrs {
		if a.Components == 3 {
			fmt.Fprintf(bw, "VECTORS %s double\n", a.Name)
			for p := 0; p < n; p++ {
				fmt.Fprintf(bw, "%g %g %g\n",
					a.Data[3*p], a.Data[3*p+1], a.Data[3*p+2])
			}
			continue
		}

		fmt.Fprintf(bw, "SCALARS %s double 1\n", a.Name)
		fmt.Fprintf(bw, "LOOKUP_TABLE default\n")
		for p := 0; p < n; p++ {
			fmt.Fprintf(bw, "%g\n", a.Data[p])
		}
	}
}
