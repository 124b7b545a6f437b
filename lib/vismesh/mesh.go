/*package vismesh builds visualization meshes from decoded zones and grids
and writes them in the legacy VTK text format. It owns the two pieces of
convention-bridging in the converter: remapping element node order from the
source's hexahedron convention to the output's voxel convention, and merging
component-suffixed variables (Bx/By/Bz, u_x/u_y/u_z) into single 3-component
vector attributes.
*/
package vismesh

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedConnectivity means an element references a node outside the
// zone, or has the wrong number of nodes for its element type.
var ErrMalformedConnectivity = errors.New("malformed connectivity")

// KeyValue is one entry of the mesh's global metadata, carried through from
// the zone's AUXDATA block without interpretation.
type KeyValue struct {
	Key, Value string
}

// Attr is one named point-data attribute: a scalar (Components == 1) or a
// 3-component vector (Components == 3). Vector data is interleaved, so
// Data[3*n+c] is component c at node n.
type Attr struct {
	Name string
	Components int
	Data []float64
}

// Component returns a copy of one component of the attribute as a flat
// array, undoing the interleaving.
func (a Attr) Component(c int) []float64 {
	n := len(a.Data) / a.Components
	out := make([]float64, n)
	for i := range out { out[i] = a.Data[i*a.Components + c] }
	return out
}

// Mesh is an unstructured visualization mesh: node positions, element
// connectivity, and named per-node data. It is built fresh for each
// conversion; the connectivity is reordered in place exactly once during
// Emit and never mutated afterward.
type Mesh struct {
	Title string
	NDim int
	Nodes, Cells int
	// Points holds 3 coordinates per node; 2D meshes have a zero third
	// coordinate.
	Points []float64
	NodesPerCell int
	// Conn holds NodesPerCell 0-based node indices per cell, already in the
	// output (voxel) convention.
	Conn []int32
	PointData []Attr
	Meta []KeyValue
}

// componentRule maps a variable-name suffix onto a vector component role.
// The table is the whole of the naming convention: a variable whose name
// ends in the component-0 suffix opens a vector, and the next two variables
// must carry the component-1 and component-2 suffixes on the same base name.
type componentRule struct {
	Suffix string
	Component int
}

var componentRules = []componentRule{
	{ "x", 0 },
	{ "y", 1 },
	{ "z", 2 },
}

// splitComponent matches name against the component rule table. The suffix
// is matched case-insensitively and an optional '_' separator before it is
// treated as part of the suffix, so both "Bx" and "B_x" have base "B".
func splitComponent(name string) (base string, component int, ok bool) {
	if len(name) < 2 { return "", 0, false }

	last := strings.ToLower(name[len(name)-1:])
	for _, rule := range componentRules {
		if last != rule.Suffix { continue }
		base = name[:len(name)-1]
		base = strings.TrimSuffix(base, "_")
		if base == "" { return "", 0, false }
		return base, rule.Component, true
	}
	return "", 0, false
}

// vectorBase returns the common base name if names[i], names[i+1], and
// names[i+2] form a component-suffixed x/y/z triple.
func vectorBase(names []string, i int) (string, bool) {
	if i + 2 >= len(names) { return "", false }

	base, c0, ok := splitComponent(names[i])
	if !ok || c0 != 0 { return "", false }
	base1, c1, ok := splitComponent(names[i+1])
	if !ok || c1 != 1 || base1 != base { return "", false }
	base2, c2, ok := splitComponent(names[i+2])
	if !ok || c2 != 2 || base2 != base { return "", false }

	return base, true
}

// BuildAttrs converts named arrays into point-data attributes, consuming
// x/y/z-suffixed triples as single 3-component vectors and everything else
// as scalars.
func BuildAttrs(names []string, arrays [][]float64) []Attr {
	attrs := []Attr{ }
	for i := 0; i < len(names); i++ {
		base, ok := vectorBase(names, i)
		if !ok {
			attrs = append(attrs, Attr{
				Name: names[i], Components: 1, Data: arrays[i],
			})
			continue
		}

		n := len(arrays[i])
		data := make([]float64, 3*n)
		for p := 0; p < n; p++ {
			data[3*p+0] = arrays[i][p]
			data[3*p+1] = arrays[i+1][p]
			data[3*p+2] = arrays[i+2][p]
		}
		attrs = append(attrs, Attr{ Name: base, Components: 3, Data: data })
		i += 2
	}
	return attrs
}

// HexToVoxel reorders one 8-node cell, in place, from the source hexahedron
// node convention to the output voxel convention. The two conventions differ
// by exactly one pair of row swaps, which makes the reorder its own inverse.
func HexToVoxel(cell []int32) {
	cell[1], cell[2] = cell[2], cell[1]
	cell[5], cell[6] = cell[6], cell[5]
}

// Emit builds a Mesh from a parsed zone. The first ndim variables are node
// coordinates and the rest become point data; conn rows are 0-based node
// indices in the source convention. For 3D zones the connectivity is
// reordered into the voxel convention; 2D quadrilaterals need no reorder.
func Emit(
	title string, ndim int, names []string, vars [][]float64,
	conn [][]int32, meta []KeyValue,
) (*Mesh, error) {
	if len(vars) < ndim {
		return nil, errors.Errorf("a %dD zone must have at least %d " +
			"variables for its coordinates, but only %s are present",
			ndim, ndim, names)
	}
	nodes := 0
	if len(vars) > 0 { nodes = len(vars[0]) }

	npc := 4
	if ndim == 3 { npc = 8 }

	m := &Mesh{
		Title: title, NDim: ndim, Nodes: nodes, Cells: len(conn),
		NodesPerCell: npc, Meta: meta,
	}

	// Node positions, third coordinate zero-padded for 2D.
	m.Points = make([]float64, 3*nodes)
	for n := 0; n < nodes; n++ {
		for d := 0; d < ndim; d++ {
			m.Points[3*n+d] = vars[d][n]
		}
	}

	// Connectivity: flatten, reorder, then bounds-check the result.
	m.Conn = make([]int32, 0, npc*len(conn))
	for c := range conn {
		if len(conn[c]) != npc {
			return nil, errors.Wrapf(ErrMalformedConnectivity, "element %d " +
				"has %d nodes, but every element of a %dD zone must have %d",
				c + 1, len(conn[c]), ndim, npc)
		}
		m.Conn = append(m.Conn, conn[c]...)
	}
	if ndim == 3 {
		for c := 0; c < len(conn); c++ {
			HexToVoxel(m.Conn[c*npc : (c+1)*npc])
		}
	}
	for i, idx := range m.Conn {
		if idx < 0 || int(idx) >= nodes {
			return nil, errors.Wrapf(ErrMalformedConnectivity, "element %d " +
				"references node %d, but the zone only has nodes 1 " +
				"through %d", i/npc + 1, idx + 1, nodes)
		}
	}

	m.PointData = BuildAttrs(names[ndim:], vars[ndim:])
	return m, nil
}
