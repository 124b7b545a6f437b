package tecio

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

/* zone_data.go decodes the numeric payload of a zone once the header parse
has pinned down where it starts and whether it is text or binary.

Text zones store one line per node carrying every variable, then one line per
element carrying its node indices. Binary zones store one marker-bounded
record per variable (4-byte reals) followed by a single marker-bounded record
of 32-bit connectivity. Element node indices are 1-based on disk in both
encodings and are returned 0-based. */

// ReadZoneData decodes the payload of hd, which begins at byte offset in rd.
// It returns one array per variable, each with hd.Nodes values, and the
// connectivity as hd.Cells rows of hd.NodesPerCell() 0-based node indices.
func ReadZoneData(
	rd io.ReadSeeker, hd *ZoneHeader, offset int64, order binary.ByteOrder,
) (vars [][]float64, conn [][]int32, err error) {
	_, err = rd.Seek(offset, io.SeekStart)
	if err != nil { return nil, nil, err }

	if hd.Binary {
		return readBinaryZoneData(rd, hd, order)
	}
	return readAsciiZoneData(rd, hd, offset)
}

func readAsciiZoneData(
	rd io.Reader, hd *ZoneHeader, offset int64,
) (vars [][]float64, conn [][]int32, err error) {
	lr := recio.NewLineReader(rd, offset)

	names := hd.Names
	vars = make([][]float64, len(names))

	for n := 0; n < hd.Nodes; n++ {
		line, err := readDataLine(lr, "node", n, hd.Nodes)
		if err != nil { return nil, nil, err }
		toks := strings.Fields(line)

		if len(vars) == 0 {
			// No VARIABLES line was found; fall back to the width of the
			// first node line and synthetic names.
			vars = make([][]float64, len(toks))
			for i := range vars {
				hd.Names = append(hd.Names, synthName(i))
			}
			names = hd.Names
		}
		if len(toks) != len(names) {
			return nil, nil, errors.Errorf("node line %d of the zone has " +
				"%d values, but the zone has %d variables",
				n + 1, len(toks), len(names))
		}

		vals, err := recio.ParseFloats(toks)
		if err != nil { return nil, nil, err }
		for i := range vals { vars[i] = append(vars[i], vals[i]) }
	}

	npc := hd.NodesPerCell()
	conn = make([][]int32, hd.Cells)
	for c := 0; c < hd.Cells; c++ {
		line, err := readDataLine(lr, "element", c, hd.Cells)
		if err != nil { return nil, nil, err }

		idxs, err := recio.ParseInts(strings.Fields(line))
		if err != nil { return nil, nil, err }
		if len(idxs) != npc {
			return nil, nil, errors.Errorf("element line %d of the zone " +
				"has %d node indices, but %s elements have %d",
				c + 1, len(idxs), hd.ZoneType, npc)
		}

		row := make([]int32, npc)
		for i := range idxs { row[i] = int32(idxs[i] - 1) }
		conn[c] = row
	}

	return vars, conn, nil
}

func readDataLine(lr *recio.LineReader, what string, i, n int) (string, error) {
	for {
		line, err := lr.ReadLine()
		if err != nil {
			return "", errors.Errorf("the zone ended at %s %d of %d",
				what, i + 1, n)
		}
		if strings.TrimSpace(line) != "" { return line, nil }
	}
}

func readBinaryZoneData(
	rd io.Reader, hd *ZoneHeader, order binary.ByteOrder,
) (vars [][]float64, conn [][]int32, err error) {
	if len(hd.Names) == 0 {
		return nil, nil, errors.New("a binary zone with no VARIABLES line " +
			"cannot be decoded: the variable count is unrecoverable")
	}

	vars = make([][]float64, len(hd.Names))
	for i := range vars {
		vars[i], err = recio.ReadFloatRecord(rd, order, 4, hd.Nodes)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bad record for the zone " +
				"variable '%s'", hd.Names[i])
		}
	}

	npc := hd.NodesPerCell()
	flat, err := recio.ReadInt32Record(rd, order, hd.Cells*npc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "bad connectivity record")
	}

	conn = make([][]int32, hd.Cells)
	for c := range conn {
		row := make([]int32, npc)
		for i := range row { row[i] = flat[c*npc + i] - 1 }
		conn[c] = row
	}
	return vars, conn, nil
}

func synthName(i int) string {
	return "V" + strconv.Itoa(i + 1)
}
