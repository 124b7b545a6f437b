package snapio

import (
	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

/* locate.go turns a 1-based snapshot index into a byte offset. The
per-picture byte length is derived once when the file is opened and assumed
constant across every snapshot in the file; multi-resolution files would
break that assumption and are not supported. */

// asciiNumberWidth is the character width the simulation uses for one number
// in a text payload line. It is a property of this format version, not a
// universal truth, so measureAsciiLine checks it against a real line and
// falls back to the measured width when they disagree.
const asciiNumberWidth = 18

// measureAsciiLine reads the first payload line through lr and returns its
// raw byte length, newline included. nVals is the number of values on one
// line (coordinates plus fields). uniform reports whether the line has a
// fixed per-number width, which is what makes seeking between snapshots
// possible at all: a ragged text file can only ever expose its first
// snapshot.
func measureAsciiLine(lr *recio.LineReader, nVals int) (raw int64, uniform bool, err error) {
	_, err = lr.ReadLine()
	if err != nil {
		return 0, false, errors.Wrapf(ErrHeaderDecode, "the stream ended " +
			"before the first payload line: %s", err.Error())
	}

	raw = lr.Offset() - lr.LineStart()
	if raw == int64(asciiNumberWidth*nVals) + 1 { return raw, true, nil }

	uniform = (raw - 1) % int64(nVals) == 0
	return raw, uniform, nil
}

// locate returns the byte offset of the 1-based snapshot i. Offsets are
// multiples of BytesPerSnapshot from the start of the file.
func (f *File) locate(i int) (int64, error) {
	if i < 1 || i > f.desc.SnapshotCount {
		return 0, errors.Wrapf(ErrSnapshotIndexOutOfRange, "snapshot %d of " +
			"%s was requested, but the file holds snapshots 1 through %d",
			i, f.desc.Path, f.desc.SnapshotCount)
	}
	return f.desc.BytesPerSnapshot * int64(i - 1), nil
}
