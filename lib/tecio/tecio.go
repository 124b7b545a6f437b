/*package tecio parses single-zone Tecplot files: a self-describing text
header (TITLE, VARIABLES, and a ZONE block with optional AUXDATA metadata)
followed by node coordinates, per-node values, and element connectivity.

Whether a given file's payload is text or binary is not declared anywhere;
it is discovered during the header parse, when the node and element counts
are probed first as decimal text and then, if that fails, as raw 32-bit
integers. The header parser therefore also returns the byte offset where the
payload begins, since the end of a header can only be recognized in
hindsight.
*/
package tecio

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

// ErrMissingZoneInfo means no ZONE line was found, or the ZONE line did not
// carry usable node/element counts. A missing title is survivable; a missing
// zone is not, because nothing downstream can size the payload.
var ErrMissingZoneInfo = errors.New("missing or unusable ZONE information")

// AuxPair is one AUXDATA key/value entry. Pairs are kept in file order and
// passed through opaquely to the output grid's global metadata.
type AuxPair struct {
	Key, Value string
}

// ZoneHeader is the parsed header of a single Tecplot zone.
type ZoneHeader struct {
	Title string
	// Names lists the zone's variables in file order: coordinates first,
	// then per-node values.
	Names []string
	Nodes, Cells int
	// NDim is 2 or 3, inferred from the zone-type token.
	NDim int
	// ZoneType is the raw ET/ZONETYPE token, upper-cased.
	ZoneType string
	Aux []AuxPair
	// Binary records whether the node/element counts parsed as raw integers
	// rather than text. This is the authoritative text/binary determination
	// for the payload, independent of the file's extension.
	Binary bool
}

// NodesPerCell returns the connectivity row width for the zone: 8 nodes per
// 3D brick cell, 4 per 2D quadrilateral.
func (hd *ZoneHeader) NodesPerCell() int {
	if hd.NDim == 3 { return 8 }
	return 4
}

// AuxValue looks up an AUXDATA value by key, case-insensitively.
func (hd *ZoneHeader) AuxValue(key string) (string, bool) {
	for i := range hd.Aux {
		if strings.EqualFold(hd.Aux[i].Key, key) {
			return hd.Aux[i].Value, true
		}
	}
	return "", false
}

// ParseZoneHeader incrementally parses the zone header starting at the
// current position of rd and returns the header along with the byte offset
// at which the numeric payload begins.
//
// The parse runs in three phases. A missing TITLE or VARIABLES line is
// reported through logger and parsing continues, since those lines are
// documentation; a missing ZONE line is fatal. Inside the ZONE block the
// parser records a resume offset before every line it consumes, because the
// line that finally terminates the block (the first line with no '=', or the
// first line of non-text bytes in a binary zone) is already payload and must
// be re-readable.
func ParseZoneHeader(
	rd io.ReadSeeker, order binary.ByteOrder, logger log.Logger,
) (*ZoneHeader, int64, error) {
	lr := recio.NewLineReader(rd, 0)
	hd := &ZoneHeader{ }

	line, err := lr.ReadLine()
	if err != nil {
		return nil, 0, errors.Wrap(ErrMissingZoneInfo, "the file is empty")
	}

	// Phase 1: TITLE.
	pending, havePending := "", false
	if u := upperTrim(line); strings.HasPrefix(u, "TITLE") {
		hd.Title = unquote(valueOf(line))
	} else {
		level.Warn(logger).Log("msg", "zone file has no TITLE line")
		pending, havePending = line, true
	}

	// Phase 2: VARIABLES, possibly continued across several lines until the
	// ZONE keyword shows up.
	haveVars := false
	for {
		var cur string
		if havePending {
			cur, havePending = pending, false
		} else {
			cur, err = lr.ReadLine()
			if err != nil {
				return nil, 0, errors.Wrap(ErrMissingZoneInfo,
					"the file ended before any ZONE line")
			}
		}

		u := upperTrim(cur)
		if strings.HasPrefix(u, "ZONE") {
			pending = cur
			break
		}
		if strings.HasPrefix(u, "VARIABLES") {
			haveVars = true
			hd.Names = append(hd.Names, quotedTokens(valueOf(cur))...)
			continue
		}
		if haveVars && strings.Contains(cur, "\"") {
			// Continuation of the VARIABLES list.
			hd.Names = append(hd.Names, quotedTokens(cur)...)
			continue
		}
		// Some other pre-zone line; nothing downstream needs it.
	}
	if !haveVars {
		level.Warn(logger).Log("msg", "zone file has no VARIABLES line")
	}

	// Phase 3: the ZONE block itself. Only the left side of the line may be
	// trimmed: a raw count at the end of the line could end in a byte that
	// looks like trailing whitespace.
	err = hd.parsePairs(strings.TrimLeft(pending, " \t")[len("ZONE"):], order)
	if err != nil { return nil, 0, err }

	resume := lr.Offset()
scan:
	for {
		resume = lr.Offset()
		line, err = lr.ReadLine()
		if err != nil { break }

		if !recio.IsText(line) {
			// Ran off the end of a binary header into payload bytes.
			break
		}
		u := upperTrim(line)
		switch {
		case strings.HasPrefix(u, "AUXDATA"):
			hd.parseAux(strings.TrimSpace(line)[len("AUXDATA"):])
		case strings.HasPrefix(u, "DT"):
			// Per-variable datatype declarations; the payload decoders don't
			// need them.
		case !strings.Contains(line, "="):
			// First payload line of a text zone.
			break scan
		default:
			err = hd.parsePairs(line, order)
			if err != nil { return nil, 0, err }
		}
	}

	if hd.Nodes <= 0 || hd.Cells < 0 {
		return nil, 0, errors.Wrapf(ErrMissingZoneInfo, "the ZONE block " +
			"declares %d nodes and %d elements", hd.Nodes, hd.Cells)
	}

	hd.inferNDim(logger)
	return hd, resume, nil
}

// parsePairs parses the comma-separated key=value pairs on one ZONE-block
// line. Count values are handed to the probe byte-for-byte as they follow
// the '=': a raw binary count can begin or end with bytes that happen to be
// ASCII whitespace, so trimming here would corrupt it.
func (hd *ZoneHeader) parsePairs(s string, order binary.ByteOrder) error {
	for _, tok := range splitQuoted(s, ',') {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 { continue }
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		val := kv[1]

		switch key {
		case "T":
			if hd.Title == "" { hd.Title = unquote(strings.TrimSpace(val)) }
		case "N", "NODES":
			n, err := hd.probeCount(val, order)
			if err != nil { return err }
			hd.Nodes = n
		case "E", "ELEMENTS":
			n, err := hd.probeCount(val, order)
			if err != nil { return err }
			hd.Cells = n
		case "ET", "ZONETYPE":
			hd.ZoneType = strings.ToUpper(unquote(strings.TrimSpace(val)))
		}
	}
	return nil
}

// probeCount reads a node or element count that may be stored as decimal
// text or as raw bytes, and marks the zone binary when the raw-byte branch
// fires.
func (hd *ZoneHeader) probeCount(val string, order binary.ByteOrder) (int, error) {
	probe, err := recio.ProbeInt32([]byte(val), order)
	if err != nil {
		return 0, errors.Wrapf(ErrMissingZoneInfo, "the ZONE value '%s' is " +
			"neither a decimal nor a raw 32-bit count", val)
	}
	if probe.Binary { hd.Binary = true }
	return int(probe.Value), nil
}

// parseAux parses the remainder of one AUXDATA line ("KEY = value").
func (hd *ZoneHeader) parseAux(s string) {
	kv := strings.SplitN(s, "=", 2)
	if len(kv) != 2 { return }
	key := strings.TrimSpace(kv[0])
	val := unquote(strings.TrimSpace(kv[1]))
	if key == "" { return }
	hd.Aux = append(hd.Aux, AuxPair{ Key: key, Value: val })
}

// inferNDim maps the zone-type token onto a dimensionality.
func (hd *ZoneHeader) inferNDim(logger log.Logger) {
	switch {
	case strings.Contains(hd.ZoneType, "BRICK"):
		hd.NDim = 3
	case strings.Contains(hd.ZoneType, "QUAD"):
		hd.NDim = 2
	default:
		level.Warn(logger).Log("msg", "unrecognized zone type, assuming " +
			"3D brick elements", "zonetype", hd.ZoneType)
		hd.NDim = 3
	}
}

func upperTrim(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// valueOf returns whatever follows the first '=' on a line, or "" if there
// is no '='.
func valueOf(line string) string {
	i := strings.Index(line, "=")
	if i == -1 { return "" }
	return strings.TrimSpace(line[i+1:])
}

// unquote strips one layer of surrounding double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// quotedTokens extracts every double-quoted token from s. Separator junk
// between quotes is discarded.
func quotedTokens(s string) []string {
	toks := []string{ }
	for {
		i := strings.Index(s, "\"")
		if i == -1 { return toks }
		j := strings.Index(s[i+1:], "\"")
		if j == -1 { return toks }
		tok := s[i+1 : i+1+j]
		if tok != "" { toks = append(toks, tok) }
		s = s[i+j+2:]
	}
}

// splitQuoted splits s on sep, ignoring separators inside double quotes.
func splitQuoted(s string, sep byte) []string {
	parts := []string{ }
	start, inQuote := 0, false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == sep && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
