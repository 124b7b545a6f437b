package lib

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

/* resolve.go turns the configured directory and file pattern into exactly
one input path. Anything other than exactly one match is fatal: silently
picking one of several matching snapshot files is how the wrong timestep
ends up in a paper. */

var (
	// ErrNoMatch means no file matched the configured name or pattern.
	ErrNoMatch = errors.New("no input file matches")
	// ErrAmbiguousMatch means more than one file matched the pattern.
	ErrAmbiguousMatch = errors.New("more than one input file matches")
)

// Resolve returns the single path selected by dir and pattern. An exact,
// existing file name short-circuits; otherwise pattern is matched against
// the directory listing and must match exactly one entry.
func Resolve(dir, pattern string) (string, error) {
	if pattern == "" {
		return "", errors.Wrap(ErrNoMatch, "no input file was specified")
	}
	if dir == "" { dir = "." }

	exact := filepath.Join(dir, pattern)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Errorf("the directory %s cannot be read: %s",
			dir, err.Error())
	}

	matches := []string{ }
	for _, entry := range entries {
		if entry.IsDir() { continue }
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return "", errors.Errorf("'%s' is not a valid file pattern: %s",
				pattern, err.Error())
		}
		if ok { matches = append(matches, entry.Name()) }
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", errors.Wrapf(ErrNoMatch, "nothing in %s matches '%s'",
			dir, pattern)
	case 1:
		return filepath.Join(dir, matches[0]), nil
	}
	return "", errors.Wrapf(ErrAmbiguousMatch, "'%s' matches all of: %s",
		pattern, strings.Join(matches, ", "))
}
