package lib

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/batvtk/lib/snapio"
)

/* stats.go implements the "stats" mode: per-variable summary statistics for
one decoded snapshot or log file. Mostly useful as a fast sanity check that a
decode produced physical-looking numbers before a long visualization run. */

// Stats decodes the selected snapshot of the resolved input file and prints
// the minimum, maximum, mean, and standard deviation of every coordinate and
// field variable.
func Stats(args *Args) error {
	path, err := Resolve(args.Dir, args.File)
	if err != nil { return err }

	if isZoneFile(path) {
		return errors.Errorf("the file %s is a Tecplot zone file, which " +
			"the stats mode does not summarize; the convert mode can turn " +
			"it into a mesh instead", path)
	}

	f, err := snapio.Open(path, byteOrder)
	if err != nil { return err }

	ds, err := f.Snapshot(args.Snapshot)
	if err != nil { return err }
	hd := ds.Header

	fmt.Printf("%s: %d points\n", path, hd.Points())
	fmt.Printf("%-12s %14s %14s %14s %14s\n",
		"variable", "min", "max", "mean", "stddev")

	for d := 0; d < hd.NDim; d++ {
		printStats(hd.Names[d], ds.Coords[d])
	}
	for w := 0; w < hd.NW; w++ {
		printStats(hd.Names[hd.NDim + w], ds.Fields[w])
	}
	return nil
}

func printStats(name string, x []float64) {
	if len(x) == 0 {
		fmt.Printf("%-12s %14s %14s %14s %14s\n", name, "-", "-", "-", "-")
		return
	}
	mean, std := stat.MeanStdDev(x, nil)
	fmt.Printf("%-12s %14.6g %14.6g %14.6g %14.6g\n",
		name, floats.Min(x), floats.Max(x), mean, std)
}
