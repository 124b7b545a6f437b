package snapio

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

/* payload.go decodes the coordinate and field arrays that follow a header.
The two encodings do not share a layout: text files interleave every value of
one point onto one line, while binary files store the full coordinate block
as one record and then one whole-array record per field variable. The two
readers below must stay in sync with the size formulas in snapio.go. */

// allocArrays allocates the coordinate and field arrays for hd, dispatching
// on the dimensionality so that an unsupported dimensionality fails before
// any reading happens.
func allocArrays(hd *Header) (coords, fields [][]float64, err error) {
	p := hd.Points()
	switch hd.NDim {
	case 1, 2, 3:
		coords = make([][]float64, hd.NDim)
		for d := range coords { coords[d] = make([]float64, p) }
	default:
		return nil, nil, errors.Wrapf(ErrHeaderDecode, "cannot allocate a " +
			"grid with %d dimensions", hd.NDim)
	}

	fields = make([][]float64, hd.NW)
	for w := range fields { fields[w] = make([]float64, p) }
	return coords, fields, nil
}

// decodePayload decodes the payload that follows a freshly decoded header.
// For text files lr must be the LineReader that decoded the header; for
// binary files rd must be positioned immediately after the header.
func decodePayload(
	rd io.Reader, lr *recio.LineReader, hd *Header,
	enc Encoding, order binary.ByteOrder,
) (coords, fields [][]float64, err error) {
	coords, fields, err = allocArrays(hd)
	if err != nil { return nil, nil, err }

	if enc == Ascii {
		err = decodeAsciiPayload(lr, hd, coords, fields)
	} else {
		err = decodeBinaryPayload(rd, hd, enc.realWidth(), order,
			coords, fields)
	}
	if err != nil { return nil, nil, err }
	return coords, fields, nil
}

// decodeAsciiPayload reads one line per grid point, in the simulation's own
// row-major output order. The leading NDim values of each line are
// coordinates and the rest are field values.
func decodeAsciiPayload(
	lr *recio.LineReader, hd *Header, coords, fields [][]float64,
) error {
	nVals := hd.NDim + hd.NW
	for p := 0; p < hd.Points(); p++ {
		line, err := lr.ReadLine()
		if err != nil {
			return errors.Wrapf(ErrHeaderDecode, "the stream ended at grid " +
				"point %d of %d: %s", p + 1, hd.Points(), err.Error())
		}

		toks := strings.Fields(line)
		if len(toks) != nVals {
			return errors.Wrapf(ErrHeaderDecode, "grid point %d has %d " +
				"values, but the header requires %d coordinates and %d " +
				"fields per point", p + 1, len(toks), hd.NDim, hd.NW)
		}
		vals, err := recio.ParseFloats(toks)
		if err != nil { return errors.Wrap(ErrHeaderDecode, err.Error()) }

		for d := 0; d < hd.NDim; d++ { coords[d][p] = vals[d] }
		for w := 0; w < hd.NW; w++ { fields[w][p] = vals[hd.NDim + w] }
	}
	return nil
}

// decodeBinaryPayload reads the full coordinate block as one marker-bounded
// record (all first coordinates, then all second, then all third), followed
// by one marker-bounded record per field variable. Fields are NOT
// interleaved the way text lines are; assuming they were would misread every
// binary field array.
func decodeBinaryPayload(
	rd io.Reader, hd *Header, width int, order binary.ByteOrder,
	coords, fields [][]float64,
) error {
	p := hd.Points()

	flat, err := recio.ReadFloatRecord(rd, order, width, hd.NDim*p)
	if err != nil {
		return errors.Wrapf(ErrHeaderDecode, "bad coordinate record: %s",
			err.Error())
	}
	for d := 0; d < hd.NDim; d++ {
		copy(coords[d], flat[d*p : (d+1)*p])
	}

	for w := 0; w < hd.NW; w++ {
		vals, err := recio.ReadFloatRecord(rd, order, width, p)
		if err != nil {
			return errors.Wrapf(ErrHeaderDecode, "bad record for the " +
				"field variable '%s': %s", hd.Names[hd.NDim + w],
				err.Error())
		}
		copy(fields[w], vals)
	}
	return nil
}
