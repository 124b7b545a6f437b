package snapio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

/* sniff.go classifies an open stream as one of the snapshot encodings purely
from byte patterns. Nothing about the file name is trusted except the ".log"
suffix, which Open handles before the sniffer runs. */

const (
	// headlineRecLen is the length of the headline record in binary
	// snapshot files.
	headlineRecLen = 79
	// longHeadlineRecLen marks the legacy long-headline binary variant.
	longHeadlineRecLen = 500

	// paramRecLen4 and paramRecLen8 are the lengths of the parameter record
	// (four 4-byte ints plus one real) for 4- and 8-byte reals. They are the
	// tag values that disambiguate the two binary sub-formats.
	paramRecLen4 = 20
	paramRecLen8 = 24
)

// sniff determines the encoding of the stream. The first four bytes are read
// as a record marker: anything other than the two known headline lengths
// means the file is text. Otherwise the marker of the second record (skipped
// to, never parsed as data) picks between the 4-byte and 8-byte real
// sub-formats. The stream is rewound to the start before returning.
//
// If the second marker matches neither candidate the classification fails
// loudly with ErrUnrecognizedFormat. Guessing here would only defer the
// failure into silently corrupt payload offsets.
func sniff(
	rd io.ReadSeeker, order binary.ByteOrder,
) (enc Encoding, headlineLen int32, err error) {
	defer rd.Seek(0, io.SeekStart)

	tag, err := recio.ReadTag(rd, order)
	if err != nil {
		// Too short to hold a record marker, so it cannot be binary.
		return Ascii, 0, nil
	}

	if tag != headlineRecLen && tag != longHeadlineRecLen {
		return Ascii, 0, nil
	}

	// Skip the headline payload and its closing marker, then read the
	// opening marker of the parameter record.
	_, err = rd.Seek(int64(tag) + recio.TagSize, io.SeekCurrent)
	if err != nil { return 0, 0, err }

	paramTag, err := recio.ReadTag(rd, order)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrUnrecognizedFormat, "the stream " +
			"starts with a %d-byte headline record but ends before the " +
			"parameter record", tag)
	}

	switch paramTag {
	case paramRecLen4:
		return Real4, tag, nil
	case paramRecLen8:
		return Binary, tag, nil
	}

	return 0, 0, errors.Wrapf(ErrUnrecognizedFormat, "the stream starts " +
		"with a %d-byte headline record, but its parameter record claims " +
		"%d bytes where only %d (4-byte reals) or %d (8-byte reals) are " +
		"possible", tag, paramTag, paramRecLen4, paramRecLen8)
}
