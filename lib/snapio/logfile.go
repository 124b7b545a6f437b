package snapio

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/recio"
)

/* logfile.go reads line-oriented .log files: one header line, one line of
whitespace-separated variable names, and one numeric row per remaining line.
The result is a Dataset with no coordinate arrays and one field column per
named variable. */

func readLog(data []byte) (*Dataset, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 1<<16), 1<<20)

	if !sc.Scan() {
		return nil, errors.Wrap(ErrHeaderDecode, "the log file is empty")
	}
	headline := strings.TrimSpace(sc.Text())

	if !sc.Scan() {
		return nil, errors.Wrap(ErrHeaderDecode, "the log file ends before " +
			"its variable-name line")
	}
	names := strings.Fields(sc.Text())
	if len(names) == 0 {
		return nil, errors.Wrap(ErrHeaderDecode, "the log file's " +
			"variable-name line is empty")
	}

	fields := make([][]float64, len(names))
	rows := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" { continue }

		toks := strings.Fields(line)
		if len(toks) != len(names) {
			return nil, errors.Wrapf(ErrHeaderDecode, "row %d of the log " +
				"file has %d values, but %d variables are named",
				rows + 1, len(toks), len(names))
		}
		vals, err := recio.ParseFloats(toks)
		if err != nil {
			return nil, errors.Wrap(ErrHeaderDecode, err.Error())
		}
		for w := range vals { fields[w] = append(fields[w], vals[w]) }
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(ErrHeaderDecode, err.Error())
	}

	hd := &Header{
		Headline: headline, NW: len(names),
		GridShape: []int{ rows }, EqPar: []float64{ }, Names: names,
	}
	return &Dataset{ Header: hd, Fields: fields }, nil
}
