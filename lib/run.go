package lib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/phil-mansfield/batvtk/lib/snapio"
	"github.com/phil-mansfield/batvtk/lib/tecio"
	"github.com/phil-mansfield/batvtk/lib/vismesh"
)

/* run.go contains the drivers for the "info" and "convert" modes. Each run
handles exactly one input file and shares no state with any other run, so
callers that want to convert a directory's worth of files in parallel can
just run the drivers from independent goroutines. */

// byteOrder is the order the simulations we read are written with. The
// simulation writes native-endian and every supported platform is
// little-endian.
var byteOrder = binary.ByteOrder(binary.LittleEndian)

// isZoneFile reports whether path names a Tecplot zone file rather than a
// snapshot file.
func isZoneFile(path string) bool {
	name := strings.TrimSuffix(path, ".zst")
	switch {
	case strings.HasSuffix(name, ".dat"): return true
	case strings.HasSuffix(name, ".tec"): return true
	case strings.HasSuffix(name, ".tcp"): return true
	}
	return false
}

// readInput reads a whole input file, decompressing it when the name ends
// in ".zst".
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("the file %s does not exist or cannot " +
			"be accessed: %s", path, err.Error())
	}
	if strings.HasSuffix(path, ".zst") {
		data, err = zstd.Decompress(nil, data)
		if err != nil {
			return nil, errors.Errorf("the file %s ends in .zst but could " +
				"not be decompressed: %s", path, err.Error())
		}
	}
	return data, nil
}

// Info prints what batvtk can tell about the resolved input file without
// decoding a payload: its encoding, snapshot layout, and the selected
// snapshot's header.
func Info(args *Args) error {
	path, err := Resolve(args.Dir, args.File)
	if err != nil { return err }

	if isZoneFile(path) { return zoneInfo(args, path) }

	f, err := snapio.Open(path, byteOrder)
	if err != nil { return err }
	desc := f.Descriptor()

	fmt.Printf("file:               %s\n", desc.Path)
	fmt.Printf("encoding:           %s\n", desc.Encoding)
	fmt.Printf("size:               %s\n", humanize.Bytes(uint64(desc.TotalBytes)))
	fmt.Printf("snapshots:          %d\n", desc.SnapshotCount)
	fmt.Printf("bytes per snapshot: %s\n",
		humanize.Bytes(uint64(desc.BytesPerSnapshot)))

	hd, err := f.ReadHeader(args.Snapshot)
	if err != nil { return err }

	fmt.Printf("headline:           %s\n", hd.Headline)
	fmt.Printf("step:               %d\n", hd.Step)
	fmt.Printf("time:               %g\n", hd.Time)
	fmt.Printf("grid:               %dD %v (gencoord: %v)\n",
		hd.NDim, hd.GridShape, hd.Gencoord)
	fmt.Printf("variables:          %s\n", strings.Join(hd.Names, " "))
	if hd.NEqPar > 0 {
		fmt.Printf("eqpar:              %v\n", hd.EqPar)
	}
	return nil
}

func zoneInfo(args *Args, path string) error {
	data, err := readInput(path)
	if err != nil { return err }

	hd, _, err := tecio.ParseZoneHeader(
		bytes.NewReader(data), byteOrder, args.Logger)
	if err != nil { return err }
	if args.ForceBinary { hd.Binary = true }

	fmt.Printf("file:      %s\n", path)
	fmt.Printf("title:     %s\n", hd.Title)
	fmt.Printf("zone type: %s (%dD)\n", hd.ZoneType, hd.NDim)
	fmt.Printf("binary:    %v\n", hd.Binary)
	fmt.Printf("nodes:     %d\n", hd.Nodes)
	fmt.Printf("elements:  %d\n", hd.Cells)
	fmt.Printf("variables: %s\n", strings.Join(hd.Names, " "))
	for _, kv := range hd.Aux {
		fmt.Printf("auxdata:   %s = %s\n", kv.Key, kv.Value)
	}
	return nil
}

// Convert converts the resolved input file into a legacy VTK mesh file
// named <OutName>.vtk.
func Convert(args *Args) error {
	path, err := Resolve(args.Dir, args.File)
	if err != nil { return err }

	outPath := args.OutName + ".vtk"
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Errorf("the output file %s cannot be created: %s",
			outPath, err.Error())
	}
	defer out.Close()

	if isZoneFile(path) {
		err = convertZone(args, path, out)
	} else {
		err = convertSnapshot(args, path, out)
	}
	if err != nil {
		os.Remove(outPath)
		return err
	}

	level.Info(args.Logger).Log("msg", "wrote mesh", "path", outPath)
	return nil
}

func convertZone(args *Args, path string, out *os.File) error {
	data, err := readInput(path)
	if err != nil { return err }
	level.Debug(args.Logger).Log("msg", "read zone file", "path", path,
		"size", humanize.Bytes(uint64(len(data))))

	rd := bytes.NewReader(data)
	hd, resume, err := tecio.ParseZoneHeader(rd, byteOrder, args.Logger)
	if err != nil { return err }
	if args.ForceBinary && !hd.Binary {
		level.Debug(args.Logger).Log("msg",
			"binary read forced by configuration")
		hd.Binary = true
	}
	level.Debug(args.Logger).Log("msg", "parsed zone header",
		"nodes", hd.Nodes, "elements", hd.Cells, "binary", hd.Binary,
		"payload_offset", resume)

	vars, conn, err := tecio.ReadZoneData(rd, hd, resume, byteOrder)
	if err != nil { return err }

	meta := make([]vismesh.KeyValue, len(hd.Aux))
	for i := range hd.Aux {
		meta[i] = vismesh.KeyValue{ Key: hd.Aux[i].Key, Value: hd.Aux[i].Value }
	}

	mesh, err := vismesh.Emit(hd.Title, hd.NDim, hd.Names, vars, conn, meta)
	if err != nil { return err }

	return vismesh.WriteUnstructured(out, mesh)
}

func convertSnapshot(args *Args, path string, out *os.File) error {
	f, err := snapio.Open(path, byteOrder)
	if err != nil { return err }
	desc := f.Descriptor()
	level.Debug(args.Logger).Log("msg", "opened snapshot file",
		"path", path, "encoding", desc.Encoding,
		"size", humanize.Bytes(uint64(desc.TotalBytes)),
		"snapshots", desc.SnapshotCount)

	if desc.Encoding == snapio.Log {
		return errors.Errorf("the file %s is a log file, which carries no " +
			"grid to convert; the 'stats' mode can summarize it instead",
			path)
	}

	ds, err := f.Snapshot(args.Snapshot)
	if err != nil { return err }
	hd := ds.Header
	level.Debug(args.Logger).Log("msg", "decoded snapshot",
		"snapshot", args.Snapshot, "step", hd.Step, "time", hd.Time,
		"points", hd.Points())

	fieldNames := hd.Names[hd.NDim : hd.NDim + hd.NW]
	return vismesh.WriteGrid(out, hd.Headline, hd.GridShape, ds.Coords,
		fieldNames, ds.Fields)
}
