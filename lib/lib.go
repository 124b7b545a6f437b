/*package lib wires the batvtk command together: configuration and argument
handling, input file resolution, and the run drivers for each mode. Almost
all of the heavy lifting is done by lib's subpackages; this package mostly
moves data between them.
*/
package lib

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	// Version is the version of the software. This can potentially be used
	// to differentiate between breaking changes to the output format.
	Version uint64 = 0x1
)

// Mode identifies which batvtk mode is being run.
type Mode int

const (
	ModeHelp Mode = iota
	ModeInfo
	ModeConvert
	ModeStats
)

// ParseMode maps a mode name from the command line onto a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "help": return ModeHelp, true
	case "info": return ModeInfo, true
	case "convert": return ModeConvert, true
	case "stats": return ModeStats, true
	}
	return ModeHelp, false
}

// NewLogger creates the logger used across one run. With verbose set, debug
// records pass the filter; otherwise only info and above do.
func NewLogger(verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}
