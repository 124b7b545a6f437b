package lib

import (
	"flag"
	"os"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"
)

/* args.go handles batvtk's configuration surface. Values come from an
optional INI-style config file and from command-line flags, with flags
winning. The expected command shape is:

    batvtk <mode> [config file] [--Flag value ...]
*/

// RawArgs stores the unprocessed values which the user assigned to each
// config variable. The struct doubles as the gcfg schema of the config file:
//
//     [input]
//     dir = /data/run42
//     file = z=0_mhd_2_*.out
//     snapshot = 3
//     binary = false
//
//     [output]
//     name = 3DBATSRUS
//
//     [run]
//     verbose = true
type RawArgs struct {
	Input struct {
		// Dir is the directory searched for the input file.
		Dir string
		// File is an exact file name or a single-match glob pattern.
		File string
		// Snapshot is the 1-based snapshot index to extract.
		Snapshot int
		// Binary forces Tecplot input to be treated as binary when
		// auto-detection is insufficient.
		Binary bool
	}
	Output struct {
		// Name is the base name of the output mesh file.
		Name string
	}
	Run struct {
		Verbose bool
	}
}

// DefaultRawArgs returns a RawArgs with every default filled in.
func DefaultRawArgs() *RawArgs {
	raw := &RawArgs{ }
	raw.Input.Snapshot = 1
	raw.Output.Name = "3DBATSRUS"
	return raw
}

// Args stores configuration information. It is a post-processed version of
// RawArgs.
type Args struct {
	Dir, File string
	Snapshot int
	ForceBinary bool
	OutName string
	Verbose bool
	Logger log.Logger
}

// ParseCommandLine parses the command-line arguments and returns the mode
// batvtk is being run in, the name of the config file (possibly empty), and
// a function which applies the flag overrides to a RawArgs. The overrides
// are applied as a function so that only flags the user actually set
// overwrite config-file values.
func ParseCommandLine() (mode, configFile string, apply func(*RawArgs)) {
	fs := flag.NewFlagSet("batvtk", flag.ExitOnError)
	dir := fs.String("Dir", "", "directory searched for the input file")
	file := fs.String("File", "",
		"input file name or single-match glob pattern")
	snapshot := fs.Int("Snapshot", 1, "1-based snapshot index to extract")
	binary := fs.Bool("Binary", false,
		"force Tecplot input to be read as binary")
	out := fs.String("Out", "", "base name of the output mesh file")
	verbose := fs.Bool("Verbose", false, "enable diagnostic logging")

	args := os.Args[1:]
	if len(args) == 0 { return "help", "", func(*RawArgs) { } }

	mode, rest := args[0], args[1:]
	if len(rest) > 0 && rest[0] != "" && rest[0][0] != '-' {
		configFile, rest = rest[0], rest[1:]
	}
	fs.Parse(rest)

	apply = func(raw *RawArgs) {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "Dir": raw.Input.Dir = *dir
			case "File": raw.Input.File = *file
			case "Snapshot": raw.Input.Snapshot = *snapshot
			case "Binary": raw.Input.Binary = *binary
			case "Out": raw.Output.Name = *out
			case "Verbose": raw.Run.Verbose = *verbose
			}
		})
	}
	return mode, configFile, apply
}

// ParseConfigFile parses arguments from an INI-style config file into raw.
func ParseConfigFile(fileName string, raw *RawArgs) error {
	err := gcfg.ReadFileInto(raw, fileName)
	if err != nil {
		return errors.Errorf("the config file %s could not be parsed: %s",
			fileName, err.Error())
	}
	return nil
}

// Process converts the raw user input to a format which is more useful for
// internal functions. Only validation that doesn't touch external files is
// done here.
func (raw *RawArgs) Process() (*Args, error) {
	if raw.Input.Snapshot < 1 {
		return nil, errors.Errorf("the snapshot index %d is invalid: " +
			"snapshots are numbered from 1", raw.Input.Snapshot)
	}
	if raw.Output.Name == "" {
		return nil, errors.New("the output name cannot be empty")
	}

	return &Args{
		Dir: raw.Input.Dir, File: raw.Input.File,
		Snapshot: raw.Input.Snapshot,
		ForceBinary: raw.Input.Binary,
		OutName: raw.Output.Name,
		Verbose: raw.Run.Verbose,
		Logger: NewLogger(raw.Run.Verbose),
	}, nil
}
