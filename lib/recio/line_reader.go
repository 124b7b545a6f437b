package recio

import (
	"bufio"
	"io"
	"strings"
)

/* line_reader.go tracks exact byte offsets while reading text lines. Both
header parsers need to hand precise payload offsets to the numeric decoders,
so every line read must account for the bytes it consumed, including the
newline that ReadString strips. */

// LineReader reads newline-terminated lines from a stream while tracking the
// exact byte offset of its read position. The offset is what a Seek on the
// underlying stream would need to land immediately after (or, via LineStart,
// immediately before) the most recent line.
type LineReader struct {
	buf *bufio.Reader
	offset, lineStart int64
}

// NewLineReader creates a LineReader that starts counting at offset start,
// which must be the current position of rd.
func NewLineReader(rd io.Reader, start int64) *LineReader {
	return &LineReader{ buf: bufio.NewReader(rd), offset: start }
}

// ReadLine reads one line, strips the trailing newline (and carriage return,
// if any), and advances the offset by the full raw length of the line. The
// final line of a stream need not be newline-terminated. Returns io.EOF only
// when no bytes at all remain.
func (lr *LineReader) ReadLine() (string, error) {
	lr.lineStart = lr.offset

	line, err := lr.buf.ReadString('\n')
	if err == io.EOF && len(line) > 0 { err = nil }
	if err != nil { return "", err }

	lr.offset += int64(len(line))
	line = strings.TrimRight(line, "\r\n")
	return line, nil
}

// Offset returns the byte offset immediately after the last line read.
func (lr *LineReader) Offset() int64 { return lr.offset }

// LineStart returns the byte offset of the first byte of the last line read.
func (lr *LineReader) LineStart() int64 { return lr.lineStart }

// IsText reports whether every byte of line could plausibly come from a text
// file: printable ASCII, tab, or whitespace. Binary payload bytes that happen
// to land in a "line" fail this test almost immediately, which is how the
// zone header scan knows it has run off the end of a binary header.
func IsText(line string) bool {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c >= 0x20 && c < 0x7f { continue }
		if c == '\t' { continue }
		return false
	}
	return true
}
