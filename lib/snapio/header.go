package snapio

import (
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

/* header.go decodes the per-snapshot header for each encoding. The decoders
leave the stream positioned immediately after the header and record the
header's exact byte length, so the payload size of one picture can be
computed without re-parsing. */

// Header is the decoded header of one snapshot. Every field is validated at
// construction time; a Header that exists is internally consistent.
type Header struct {
	// Headline is the free-form first line or record, usually a unit
	// description. Documentation only.
	Headline string
	// Step is the simulation's timestep counter for this snapshot.
	Step int
	// Time is the simulation time of this snapshot.
	Time float64
	// NDim is the grid dimensionality, 1 to 3, with the sign already
	// stripped. Gencoord records whether the stripped sign was negative,
	// which the simulation uses to flag generalized (curvilinear)
	// coordinates.
	NDim int
	Gencoord bool
	// NEqPar and NW are the equation-parameter and field-variable counts.
	NEqPar, NW int
	// GridShape has one extent per dimension; its product is the point count.
	GridShape []int
	// EqPar holds the NEqPar equation parameters.
	EqPar []float64
	// Names lists, in order, the coordinate names, the field names, and the
	// equation parameter names: NDim + NW + NEqPar entries in total.
	Names []string
	// ByteLen is the exact byte length of the header as stored on disk.
	ByteLen int64
}

// Points returns the total number of grid points.
func (hd *Header) Points() int {
	n := 1
	for _, nx := range hd.GridShape { n *= nx }
	return n
}

// newHeader builds a Header and fails fast on any violated invariant rather
// than letting an inconsistent header size the payload arrays.
func newHeader(
	headline string, step int, time float64, rawNDim, neqpar, nw int,
	shape []int, eqpar []float64, names []string, byteLen int64,
) (*Header, error) {
	ndim, gencoord := rawNDim, false
	if ndim < 0 { ndim, gencoord = -ndim, true }

	if ndim < 1 || ndim > 3 {
		return nil, errors.Wrapf(ErrHeaderDecode, "the header declares %d " +
			"dimensions, but only 1, 2, and 3 are possible", ndim)
	}
	if len(shape) != ndim {
		return nil, errors.Wrapf(ErrHeaderDecode, "the header declares %d " +
			"dimensions but a grid shape with %d extents", ndim, len(shape))
	}
	for _, nx := range shape {
		if nx <= 0 {
			return nil, errors.Wrapf(ErrHeaderDecode, "the header declares " +
				"the non-positive grid extent %d", nx)
		}
	}
	if len(eqpar) != neqpar {
		return nil, errors.Wrapf(ErrHeaderDecode, "the header declares %d " +
			"equation parameters but stores %d", neqpar, len(eqpar))
	}
	if len(names) != ndim + nw + neqpar {
		return nil, errors.Wrapf(ErrHeaderDecode, "the header names %d " +
			"variables, but %d dimensions + %d fields + %d parameters " +
			"requires %d", len(names), ndim, nw, neqpar, ndim + nw + neqpar)
	}

	return &Header{
		Headline: headline, Step: step, Time: time,
		NDim: ndim, Gencoord: gencoord, NEqPar: neqpar, NW: nw,
		GridShape: shape, EqPar: eqpar, Names: names, ByteLen: byteLen,
	}, nil
}

// decodeHeader decodes one snapshot header starting at the current position
// of rd. For text files the returned LineReader must be used for all further
// reading of this snapshot, since it buffers ahead of rd; for binary files
// it is nil and rd itself is positioned immediately after the header.
func decodeHeader(
	rd io.ReadSeeker, enc Encoding, order binary.ByteOrder,
) (*Header, *recio.LineReader, error) {
	if enc == Ascii {
		hd, lr, err := decodeAsciiHeader(rd)
		return hd, lr, err
	}
	hd, err := decodeBinaryHeader(rd, enc.realWidth(), order)
	return hd, nil, err
}

func decodeAsciiHeader(rd io.Reader) (*Header, *recio.LineReader, error) {
	lr := recio.NewLineReader(rd, 0)

	headline, err := lr.ReadLine()
	if err != nil { return nil, nil, asciiHeaderErr(err) }

	// it, t, ndim, neqpar, nw
	line, err := lr.ReadLine()
	if err != nil { return nil, nil, asciiHeaderErr(err) }
	toks := strings.Fields(line)
	if len(toks) != 5 {
		return nil, nil, errors.Wrapf(ErrHeaderDecode, "the parameter line " +
			"'%s' has %d values instead of the 5 (step, time, ndim, neqpar, " +
			"nw) it must have", line, len(toks))
	}
	params, err := recio.ParseFloats(toks)
	if err != nil { return nil, nil, errors.Wrap(ErrHeaderDecode, err.Error()) }
	step, time := int(params[0]), params[1]
	rawNDim, neqpar, nw := int(params[2]), int(params[3]), int(params[4])
	ndim := rawNDim
	if ndim < 0 { ndim = -ndim }

	// Grid shape.
	line, err = lr.ReadLine()
	if err != nil { return nil, nil, asciiHeaderErr(err) }
	shape, err := recio.ParseInts(strings.Fields(line))
	if err != nil { return nil, nil, errors.Wrap(ErrHeaderDecode, err.Error()) }

	// Equation parameters, only present when neqpar > 0.
	eqpar := []float64{ }
	if neqpar > 0 {
		line, err = lr.ReadLine()
		if err != nil { return nil, nil, asciiHeaderErr(err) }
		eqpar, err = recio.ParseFloats(strings.Fields(line))
		if err != nil {
			return nil, nil, errors.Wrap(ErrHeaderDecode, err.Error())
		}
	}

	// Variable names.
	line, err = lr.ReadLine()
	if err != nil { return nil, nil, asciiHeaderErr(err) }
	names := strings.Fields(line)

	hd, err := newHeader(headline, step, time, rawNDim, neqpar, nw,
		shape, eqpar, names, lr.Offset())
	if err != nil { return nil, nil, err }
	return hd, lr, nil
}

func asciiHeaderErr(err error) error {
	return errors.Wrapf(ErrHeaderDecode, "the stream ended inside a text " +
		"header: %s", err.Error())
}

// decodeBinaryHeader decodes the record sequence of a binary header:
// headline, parameters, grid shape, equation parameters (when present), and
// variable names. Every record length is checked against the layout before
// its payload is interpreted, so a wrong marker skip fails here rather than
// shifting every later offset in the file.
func decodeBinaryHeader(
	rd io.ReadSeeker, width int, order binary.ByteOrder,
) (*Header, error) {
	start, err := rd.Seek(0, io.SeekCurrent)
	if err != nil { return nil, err }

	headlineBuf, err := recio.ReadRecord(rd, order)
	if err != nil { return nil, errors.Wrap(ErrHeaderDecode, err.Error()) }
	headline := strings.TrimSpace(string(headlineBuf))

	// The parameter record is four 4-byte ints and one real. The offsets
	// below are tied 1:1 to that layout: step, then the real time, then
	// ndim, neqpar, nw behind it.
	paramLen := 16 + width
	buf, err := recio.ReadSizedRecord(rd, order, paramLen)
	if err != nil { return nil, errors.Wrap(ErrHeaderDecode, err.Error()) }

	step := int(int32(order.Uint32(buf[0:])))
	time := decodeReal(buf[4:], width, order)
	rawNDim := int(int32(order.Uint32(buf[4+width:])))
	neqpar := int(int32(order.Uint32(buf[8+width:])))
	nw := int(int32(order.Uint32(buf[12+width:])))

	ndim := rawNDim
	if ndim < 0 { ndim = -ndim }
	if ndim < 1 || ndim > 3 {
		return nil, errors.Wrapf(ErrHeaderDecode, "the parameter record " +
			"declares %d dimensions, but only 1, 2, and 3 are possible",
			ndim)
	}

	shape32, err := recio.ReadInt32Record(rd, order, ndim)
	if err != nil { return nil, errors.Wrap(ErrHeaderDecode, err.Error()) }
	shape := make([]int, ndim)
	for i := range shape { shape[i] = int(shape32[i]) }

	eqpar := []float64{ }
	if neqpar > 0 {
		eqpar, err = recio.ReadFloatRecord(rd, order, width, neqpar)
		if err != nil { return nil, errors.Wrap(ErrHeaderDecode, err.Error()) }
	}

	nameBuf, err := recio.ReadRecord(rd, order)
	if err != nil { return nil, errors.Wrap(ErrHeaderDecode, err.Error()) }
	names := strings.Fields(string(nameBuf))

	end, err := rd.Seek(0, io.SeekCurrent)
	if err != nil { return nil, err }

	return newHeader(headline, step, time, rawNDim, neqpar, nw,
		shape, eqpar, names, end - start)
}

// decodeReal decodes a single real of the given width from the front of buf.
func decodeReal(buf []byte, width int, order binary.ByteOrder) float64 {
	if width == 4 {
		return float64(math.Float32frombits(order.Uint32(buf)))
	}
	return math.Float64frombits(order.Uint64(buf))
}
