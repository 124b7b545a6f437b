/*package snapio reads simulation snapshot files: coordinate grids plus field
variables written by the simulation in plain text or in raw Fortran
unformatted binary, possibly with several snapshots ("pictures") concatenated
into one file. Opening a file classifies its encoding, decodes the first
header, and measures the byte length of one picture; individual snapshots can
then be decoded by 1-based index.

Files are read fully into memory when opened, so the file handle is held only
for the duration of a single read and nothing in this package keeps
process-wide state. Converting many files in parallel just means opening them
from independent goroutines.
*/
package snapio

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

var (
	// ErrUnrecognizedFormat means the sniffer could not classify a stream as
	// any supported encoding.
	ErrUnrecognizedFormat = errors.New("unrecognized snapshot format")
	// ErrSnapshotIndexOutOfRange means a snapshot index fell outside
	// [1, SnapshotCount].
	ErrSnapshotIndexOutOfRange = errors.New("snapshot index out of range")
	// ErrHeaderDecode means a header or data record did not have the layout
	// its encoding promises: record marker mismatch, wrong token count, or
	// inconsistent sizes.
	ErrHeaderDecode = errors.New("snapshot decode failed")
)

// Encoding identifies the on-disk layout of a snapshot file.
type Encoding int

const (
	// Ascii files store one whitespace-separated text line per grid point.
	Ascii Encoding = iota
	// Binary files store 8-byte reals in Fortran unformatted records.
	Binary
	// Real4 files store 4-byte reals in Fortran unformatted records.
	Real4
	// Log files are line-oriented: a header line, a variable-name line, and
	// one numeric row per line after that.
	Log
)

func (e Encoding) String() string {
	switch e {
	case Ascii: return "ascii"
	case Binary: return "binary"
	case Real4: return "real4"
	case Log: return "log"
	}
	return "unknown"
}

// realWidth returns the byte width of a real number in the given binary
// encoding.
func (e Encoding) realWidth() int {
	if e == Real4 { return 4 }
	return 8
}

// FileDescriptor describes a snapshot file after a single read-only scan. It
// is computed once when the file is opened and never mutated.
type FileDescriptor struct {
	Path string
	Encoding Encoding
	// HeadlineLen is the length of the headline record for binary files: 79,
	// or 500 for the legacy long-headline variant. Zero for text files.
	HeadlineLen int32
	TotalBytes int64
	SnapshotCount int
	BytesPerSnapshot int64
}

// Dataset is one decoded snapshot: its header plus the coordinate and field
// arrays. Coords[d][p] is the d-th coordinate of point p and Fields[w][p] is
// the w-th field variable at point p, with points in the simulation's own
// row-major output order (fastest-varying index last). The arrays are owned
// by the caller and alias nothing.
type Dataset struct {
	Header *Header
	Coords [][]float64
	Fields [][]float64
}

// File is an open snapshot file. The underlying bytes are immutable once
// Open returns, so a File may be read from freely.
type File struct {
	desc FileDescriptor
	data []byte
	order binary.ByteOrder
}

// Open reads the snapshot file at path, classifies its encoding, and
// computes the per-picture byte length needed to locate snapshots. Files
// ending in ".zst" are decompressed into memory first. The byte order is the
// one the simulation wrote with, which is almost always the native order of
// the machine that ran it.
func Open(path string, order binary.ByteOrder) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("the file %s does not exist or cannot " +
			"be accessed: %s", path, err.Error())
	}

	name := path
	if strings.HasSuffix(name, ".zst") {
		data, err = zstd.Decompress(nil, data)
		if err != nil {
			return nil, errors.Errorf("the file %s ends in .zst but could " +
				"not be decompressed: %s", path, err.Error())
		}
		name = strings.TrimSuffix(name, ".zst")
	}

	f := &File{ data: data, order: order }
	f.desc = FileDescriptor{ Path: path, TotalBytes: int64(len(data)) }

	if strings.HasSuffix(name, ".log") {
		f.desc.Encoding = Log
		f.desc.SnapshotCount = 1
		f.desc.BytesPerSnapshot = int64(len(data))
		return f, nil
	}

	enc, headlineLen, err := sniff(bytes.NewReader(data), order)
	if err != nil { return nil, errors.Wrap(err, path) }
	f.desc.Encoding, f.desc.HeadlineLen = enc, headlineLen

	err = f.measure()
	if err != nil { return nil, errors.Wrap(err, path) }

	return f, nil
}

// Descriptor returns the file's descriptor.
func (f *File) Descriptor() FileDescriptor { return f.desc }

// measure decodes the first header and fills in BytesPerSnapshot and
// SnapshotCount. The formulas here mirror the decode pattern in payload.go
// exactly: one marker pair per written array plus the payload itself. If the
// two ever disagree, seeking desynchronizes silently, which is the classic
// corruption bug in this format family.
func (f *File) measure() error {
	rd := bytes.NewReader(f.data)
	hd, lr, err := decodeHeader(rd, f.desc.Encoding, f.order)
	if err != nil { return err }

	d, w, p := hd.NDim, hd.NW, int64(hd.Points())

	bps := hd.ByteLen
	switch f.desc.Encoding {
	case Ascii:
		lineBytes, uniform, err := measureAsciiLine(lr, d+w)
		if err != nil { return err }
		if !uniform {
			// Ragged text lines make seeking between snapshots impossible,
			// so only the first snapshot is reachable.
			f.desc.BytesPerSnapshot = f.desc.TotalBytes
			f.desc.SnapshotCount = 1
			return nil
		}
		bps += lineBytes * p
	default:
		width := int64(f.desc.Encoding.realWidth())
		// One coordinate record and one record per field variable, each with
		// an 8-byte marker pair.
		bps += 8*int64(1+w) + width*int64(d+w)*p
	}

	// A text file's final line may be missing its newline, which shorts the
	// file by one byte against the formula.
	if bps <= 0 || bps > f.desc.TotalBytes + 1 {
		return errors.Wrapf(ErrHeaderDecode, "the header of %s describes a " +
			"%d-byte snapshot, but the file only has %d bytes",
			f.desc.Path, bps, f.desc.TotalBytes)
	}

	f.desc.BytesPerSnapshot = bps
	f.desc.SnapshotCount = int((f.desc.TotalBytes + 1) / bps)
	return nil
}

// ReadHeader decodes and returns the header of the 1-based snapshot i.
func (f *File) ReadHeader(i int) (*Header, error) {
	if f.desc.Encoding == Log {
		ds, err := readLog(f.data)
		if err != nil { return nil, err }
		return ds.Header, nil
	}

	offset, err := f.locate(i)
	if err != nil { return nil, err }

	rd := bytes.NewReader(f.data[offset:])
	hd, _, err := decodeHeader(rd, f.desc.Encoding, f.order)
	if err != nil { return nil, err }
	return hd, nil
}

// Snapshot decodes the 1-based snapshot i into a Dataset.
func (f *File) Snapshot(i int) (*Dataset, error) {
	if f.desc.Encoding == Log {
		if i != 1 {
			return nil, errors.Wrapf(ErrSnapshotIndexOutOfRange, "log " +
				"files hold a single dataset, so snapshot %d of %s cannot " +
				"be read", i, f.desc.Path)
		}
		return readLog(f.data)
	}

	offset, err := f.locate(i)
	if err != nil { return nil, err }

	rd := bytes.NewReader(f.data[offset:])
	hd, lr, err := decodeHeader(rd, f.desc.Encoding, f.order)
	if err != nil { return nil, err }

	coords, fields, err := decodePayload(rd, lr, hd, f.desc.Encoding, f.order)
	if err != nil { return nil, err }

	return &Dataset{ Header: hd, Coords: coords, Fields: fields }, nil
}
