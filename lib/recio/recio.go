/*package recio contains the low-level record primitives shared by the
snapshot and Tecplot readers: Fortran unformatted record markers, raw numeric
array reads, and byte-offset-tracked line reading for text headers.

A "record" here is the Fortran unformatted I/O convention: a 4-byte length
tag, the payload, and the same 4-byte length tag again. The tags are framing,
never data; every read in this package checks that the opening and closing
tags agree and that the payload has the size the caller expects, so that a
bad skip is caught at the record where it happens instead of corrupting every
later offset in the file.
*/
package recio

import (
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TagSize is the size of one Fortran record marker.
const TagSize = 4

// ReadTag reads a single 4-byte record marker.
func ReadTag(rd io.Reader, order binary.ByteOrder) (int32, error) {
	tag := int32(0)
	err := binary.Read(rd, order, &tag)
	if err != nil { return 0, err }
	return tag, nil
}

// ReadRecord reads one marker-bounded record and returns its payload. The
// opening and closing tags must agree; if they don't, the file is corrupted
// (or the caller has desynchronized from the record layout) and an error is
// returned immediately.
func ReadRecord(rd io.Reader, order binary.ByteOrder) ([]byte, error) {
	head, err := ReadTag(rd, order)
	if err != nil { return nil, err }
	if head < 0 {
		return nil, errors.Errorf("a record claims to contain %d bytes, " +
			"which is negative and cannot be a valid Fortran record marker",
			head)
	}

	buf := make([]byte, head)
	_, err = io.ReadFull(rd, buf)
	if err != nil { return nil, err }

	foot, err := ReadTag(rd, order)
	if err != nil { return nil, err }
	if head != foot {
		return nil, errors.Errorf("the opening marker of a record, %d, and " +
			"its closing marker, %d, don't match: either the file is " +
			"corrupted or an earlier record was skipped with the wrong " +
			"offset", head, foot)
	}

	return buf, nil
}

// ReadSizedRecord reads one record whose payload must contain exactly n
// bytes. It should be preferred over ReadRecord whenever the expected size is
// known, since it turns a silent desynchronization into a loud error.
func ReadSizedRecord(rd io.Reader, order binary.ByteOrder, n int) ([]byte, error) {
	buf, err := ReadRecord(rd, order)
	if err != nil { return nil, err }
	if len(buf) != n {
		return nil, errors.Errorf("a record was expected to contain %d " +
			"bytes, but contains %d", n, len(buf))
	}
	return buf, nil
}

// ReadFloatRecord reads a record containing n reals of the given byte width
// (4 or 8) and returns them widened to float64.
func ReadFloatRecord(
	rd io.Reader, order binary.ByteOrder, width, n int,
) ([]float64, error) {
	buf, err := ReadSizedRecord(rd, order, width*n)
	if err != nil { return nil, err }
	return DecodeFloats(buf, order, width)
}

// ReadInt32Record reads a record containing n 32-bit integers.
func ReadInt32Record(
	rd io.Reader, order binary.ByteOrder, n int,
) ([]int32, error) {
	buf, err := ReadSizedRecord(rd, order, 4*n)
	if err != nil { return nil, err }

	out := make([]int32, n)
	for i := range out {
		out[i] = int32(order.Uint32(buf[4*i:]))
	}
	return out, nil
}

// DecodeFloats decodes a raw byte slice as reals of the given width (4 or 8),
// widened to float64. The slice length must be a multiple of the width.
func DecodeFloats(buf []byte, order binary.ByteOrder, width int) ([]float64, error) {
	if width != 4 && width != 8 {
		return nil, errors.Errorf("reals must be 4 or 8 bytes wide, not %d",
			width)
	}
	if len(buf) % width != 0 {
		return nil, errors.Errorf("a block of %d-byte reals contains %d " +
			"bytes, which is not a multiple of the real size", width, len(buf))
	}

	out := make([]float64, len(buf)/width)
	for i := range out {
		if width == 4 {
			out[i] = float64(math.Float32frombits(order.Uint32(buf[4*i:])))
		} else {
			out[i] = math.Float64frombits(order.Uint64(buf[8*i:]))
		}
	}
	return out, nil
}

// IntProbe is the result of attempting to read a 32-bit integer that may be
// stored either as decimal text or as raw bytes. Binary is true when the text
// parse failed and the raw-byte interpretation was used instead.
type IntProbe struct {
	Value  int32
	Binary bool
}

// ProbeInt32 first attempts to parse b as decimal text. If that fails, the
// leading four bytes of b are reinterpreted as a raw integer in the given
// byte order. This is an explicit two-step probe: which branch fired is part
// of the result, since callers use it to decide whether a whole file is
// binary.
func ProbeInt32(b []byte, order binary.ByteOrder) (IntProbe, error) {
	s := strings.TrimSpace(string(b))
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return IntProbe{ Value: int32(n) }, nil
	}

	if len(b) < 4 {
		return IntProbe{ }, errors.Errorf("the bytes %q are neither a " +
			"decimal integer nor long enough to hold a raw 32-bit integer", b)
	}
	return IntProbe{ Value: int32(order.Uint32(b)), Binary: true }, nil
}

// ParseFloats parses every token in toks as a float64.
func ParseFloats(toks []string) ([]float64, error) {
	out := make([]float64, len(toks))
	for i := range toks {
		x, err := strconv.ParseFloat(toks[i], 64)
		if err != nil {
			return nil, errors.Errorf("the token '%s' is not a valid real " +
				"number", toks[i])
		}
		out[i] = x
	}
	return out, nil
}

// ParseInts parses every token in toks as an int.
func ParseInts(toks []string) ([]int, error) {
	out := make([]int, len(toks))
	for i := range toks {
		n, err := strconv.Atoi(toks[i])
		if err != nil {
			return nil, errors.Errorf("the token '%s' is not a valid " +
				"integer", toks[i])
		}
		out[i] = n
	}
	return out, nil
}
