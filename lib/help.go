package lib

import (
	"fmt"
)

const helpText = `batvtk converts simulation snapshot files and Tecplot zone
files into legacy VTK mesh files.

Usage:
    batvtk <mode> [config file] [--Flag value ...]

The valid modes are:
    help       print this message
    info       print the encoding, snapshot layout, and header of a file
    convert    convert one snapshot or zone file into a .vtk mesh file
    stats      print per-variable summary statistics for a snapshot

The recognized flags (each may also be set in the config file) are:
    --Dir       directory searched for the input file
    --File      input file name or single-match glob pattern
    --Snapshot  1-based snapshot index to extract (default 1)
    --Binary    force Tecplot input to be read as binary
    --Out       base name of the output mesh file (default 3DBATSRUS)
    --Verbose   enable diagnostic logging

Snapshot files may be plain text or Fortran unformatted binary with 4- or
8-byte reals; the encoding is detected from the bytes, not the file name.
Tecplot input is recognized by the .dat, .tec, and .tcp extensions; files
ending in .zst are decompressed transparently. Log files (.log) are
supported by the info and stats modes.
`

// helpString assembles the full help message, version line included.
func helpString() string {
	return fmt.Sprintf("batvtk, version %d\n\n%s", Version, helpText)
}

// PrintHelp prints the command-line help text.
func PrintHelp() {
	fmt.Print(helpString())
}
