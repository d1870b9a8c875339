package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/myronyliu/Rainbow-Cow/internal/archive"
	"github.com/myronyliu/Rainbow-Cow/internal/config"
	"github.com/myronyliu/Rainbow-Cow/internal/document"
	"github.com/myronyliu/Rainbow-Cow/internal/mesh"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// parseArgs parses fs flags given before, between or after the positional
// arguments and returns the positionals in order. Numeric tokens such as -1
// are positional, and everything after "--" is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var flags, pos []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			pos = append(pos, args[i+1:]...)
			break
		}
		if !isFlag(a) {
			pos = append(pos, a)
			continue
		}
		flags = append(flags, a)
		name, _, inline := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if f := fs.Lookup(name); f != nil && !inline && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	return pos, nil
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func positionals(fs *flag.FlagSet, args []string) []string {
	pos, err := parseArgs(fs, args)
	if err != nil {
		fatalf("%s: %v", fs.Name(), err)
	}
	return pos
}

func isFlag(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err != nil
}

func openDocument(cfg *config.Config, path string) *document.Document {
	d, err := document.Open(path, cfg)
	if err != nil {
		fatalf("%v", err)
	}
	return d
}

func printSummary(d *document.Document) {
	fmt.Printf("%s %s (%s)\n", bold("Mesh:"), d.Path(), d.Kind())
	fmt.Printf("  Vertices:   %s live of %d\n", green(d.LiveVertexCount()), d.VertexCount())
	fmt.Printf("  Faces:      %s live of %d\n", green(d.LiveFaceCount()), d.FaceCount())
	if d.Progressive() {
		lo, hi := d.ComplexityRange()
		fmt.Printf("  Complexity: %s in [%g, %g]\n", cyan(fmt.Sprintf("%g", d.Complexity())), lo, hi)
	} else {
		fmt.Printf("  Candidates: %s\n", cyan(d.CandidateCount()))
	}
	b := d.Bounds()
	if !b.IsEmpty() {
		fmt.Printf("  Bounds:     [%g %g %g] - [%g %g %g]\n",
			b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	}
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		usagef("pmtool info <mesh>")
	}
	printSummary(openDocument(cfg, args[0]))
}

func cmdSimplify(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("simplify", flag.ExitOnError)
	out := fs.String("o", "", "Output progressive mesh (default: input with .offpm or .pmb)")
	target := fs.Int("target", 0, "Stop at this many live vertices (0 = simplify fully)")
	steps := fs.Int("steps", 0, "Run exactly this many quadric steps")
	pos := positionals(fs, args)

	if len(pos) < 1 {
		usagef("pmtool simplify [-o out] [-target n | -steps n] <mesh>")
	}
	d := openDocument(cfg, pos[0])

	var n int
	var err error
	switch {
	case *steps > 0:
		n, err = d.SimplifyN(*steps)
	case *target > 0:
		n, err = d.SimplifyTo(*target)
	default:
		n, err = d.SimplifyAll()
	}
	if err != nil && !errors.Is(err, mesh.ErrNoCandidates) && !errors.Is(err, mesh.ErrTooFewVertices) {
		fatalf("simplify: %v", err)
	}

	path := *out
	if path == "" {
		path = d.DefaultOutputPath()
	}
	if err := d.WriteProgressiveMeshFile(path); err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Pairs collapsed: %s\n", green(n))
	printSummary(d)
	fmt.Printf("Wrote %s\n", cyan(path))
}

func cmdRandom(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("random", flag.ExitOnError)
	count := fs.Int("n", 0, "Collapse count (0 = one percent of the live vertices)")
	out := fs.String("o", "", "Export the result as OFF or STL")
	pos := positionals(fs, args)

	if len(pos) < 1 {
		usagef("pmtool random [-n count] [-o out] <mesh>")
	}
	d := openDocument(cfg, pos[0])

	done := 0
	if *count <= 0 {
		n, err := d.RandomBatch()
		done = n
		if err != nil {
			fatalf("random: %v", err)
		}
	} else {
		for ; done < *count; done++ {
			if err := d.CollapseRandomEdge(mesh.Midpoint); err != nil {
				fatalf("random: %v", err)
			}
		}
	}

	fmt.Printf("Random edge midpoint collapses: %s\n", green(done))
	printSummary(d)
	if *out != "" {
		export(d, *out)
	}
}

func cmdCollapse(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("collapse", flag.ExitOnError)
	out := fs.String("o", "", "Write the result (OFF, STL, OFFPM or PMB by extension)")
	pos := positionals(fs, args)

	if len(pos) < 3 {
		usagef("pmtool collapse [-o out] <mesh> <v0> <v1>")
	}
	v0, err0 := strconv.Atoi(pos[1])
	v1, err1 := strconv.Atoi(pos[2])
	if err := errors.Join(err0, err1); err != nil {
		fatalf("vertex ids: %v", err)
	}

	d := openDocument(cfg, pos[0])
	if err := d.Collapse(v0, v1, d.Method()); err != nil {
		fatalf("%v", err)
	}
	printSummary(d)
	if *out != "" {
		export(d, *out)
	}
}

func cmdPick(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	complexity := fs.Float64("c", -1, "Complexity to pick at (progressive meshes)")
	pos := positionals(fs, args)

	if len(pos) < 7 {
		usagef("pmtool pick [-c complexity] <mesh> ox oy oz dx dy dz")
	}
	var xyz [6]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(pos[i+1], 64)
		if err != nil {
			fatalf("ray: %v", err)
		}
		xyz[i] = v
	}

	d := openDocument(cfg, pos[0])
	if *complexity >= 0 {
		if err := d.CollapseTo(*complexity); err != nil {
			fatalf("%v", err)
		}
	}
	ray := pmath.NewRay(mgl64.Vec3{xyz[0], xyz[1], xyz[2]}, mgl64.Vec3{xyz[3], xyz[4], xyz[5]})
	hit, ok := d.Pick(ray)
	if !ok {
		fmt.Println("No hit")
		os.Exit(2)
	}
	p := hit.Point
	fmt.Printf("Vertex:   %s\n", green(hit.Vertex))
	fmt.Printf("Triangle: %d %d %d\n", hit.Corners[0], hit.Corners[1], hit.Corners[2])
	fmt.Printf("Point:    %g %g %g (distance %g)\n", p[0], p[1], p[2], hit.Distance)
}

func cmdLOD(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("lod", flag.ExitOnError)
	complexity := fs.Float64("c", -1, "Target complexity (vertex count, fractions interpolate)")
	out := fs.String("o", "", "Export the level of detail as OFF or STL")
	pos := positionals(fs, args)

	if len(pos) < 1 || *complexity < 0 {
		usagef("pmtool lod -c complexity [-o out] <pm>")
	}
	d := openDocument(cfg, pos[0])
	if err := d.CollapseTo(*complexity); err != nil {
		fatalf("%v", err)
	}
	printSummary(d)
	if *out != "" {
		export(d, *out)
	}
}

func cmdConvert(cfg *config.Config, args []string) {
	if len(args) < 2 {
		usagef("pmtool convert <in> <out>")
	}
	d := openDocument(cfg, args[0])
	export(d, args[1])
}

// export writes d to path in the format its extension names.
func export(d *document.Document, path string) {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		err = d.ExportSTL(path)
	case ".offpm", ".pmb":
		err = d.WriteProgressiveMeshFile(path)
	default:
		err = d.ExportOFF(path)
	}
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Wrote %s\n", cyan(path))
}

func cmdArchive(cfg *config.Config, args []string) {
	if len(args) < 1 {
		usagef("pmtool archive <put|get|list|rm> [args]")
	}

	a, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.Close()

	sub, rest := args[0], args[1:]
	switch sub {
	case "put":
		if len(rest) < 2 {
			usagef("pmtool archive put <name> <mesh>")
		}
		d := openDocument(cfg, rest[1])
		pm, err := d.EncodePM()
		if err != nil {
			fatalf("%v", err)
		}
		e, err := a.Put(rest[0], pm)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Archived %s: %d collapses, %d bytes\n", green(e.Name), e.Collapses, len(e.Data))

	case "get":
		if len(rest) < 2 {
			usagef("pmtool archive get <name> <out.offpm|out.pmb>")
		}
		pm, _, err := a.Get(rest[0])
		if err != nil {
			fatalf("%v", err)
		}
		if strings.EqualFold(filepath.Ext(rest[1]), ".pmb") {
			err = formats.WritePMBFile(rest[1], pm)
		} else {
			err = formats.WritePMFile(rest[1], pm)
		}
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Wrote %s\n", cyan(rest[1]))

	case "list", "ls":
		entries, err := a.List()
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("%-24s %10s %10s %10s  %s\n", bold("NAME"), "VERTICES", "BASE", "COLLAPSES", "UPDATED")
		for _, e := range entries {
			fmt.Printf("%-24s %10d %10d %10d  %s\n", e.Name, e.FullVertices, e.BaseVertices,
				e.Collapses, e.UpdatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(os.Stderr, "\n(%d entries in %s)\n", len(entries), a.Path())

	case "rm", "delete":
		if len(rest) < 1 {
			usagef("pmtool archive rm <name>")
		}
		if err := a.Delete(rest[0]); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Deleted %s\n", rest[0])

	default:
		fmt.Fprintf(os.Stderr, "Unknown archive command: %s\n", sub)
		os.Exit(1)
	}
}
