// pmtool simplifies triangle meshes into progressive meshes and navigates
// their levels of detail.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/config"
	"github.com/myronyliu/Rainbow-Cow/internal/logger"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger.Debug("config loaded", zap.Any("config", cfg))

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		cmdInfo(cfg, rest)
	case "simplify", "s":
		cmdSimplify(cfg, rest)
	case "random":
		cmdRandom(cfg, rest)
	case "collapse":
		cmdCollapse(cfg, rest)
	case "lod":
		cmdLOD(cfg, rest)
	case "pick":
		cmdPick(cfg, rest)
	case "convert":
		cmdConvert(cfg, rest)
	case "archive", "ar":
		cmdArchive(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pmtool - progressive mesh simplification utility

Usage:
  pmtool [global options] <command> [options]

Commands:
  info <mesh>                                 Show mesh or progressive mesh statistics
  simplify [-o out] [-target n | -steps n] <mesh>
                                              Simplify and write a progressive mesh
  random [-n count] [-o out.off] <mesh>       Collapse random edges at their midpoints
  collapse [-o out] <mesh> <v0> <v1>          Merge vertex v1 into v0
  lod -c complexity [-o out] <pm>             Export a level of detail
  pick [-c complexity] <mesh> ox oy oz dx dy dz
                                              Find the vertex a ray hits first
  convert <in> <out>                          Convert between OFF, STL, OFFPM and PMB
  archive put <name> <mesh>                   Store a progressive mesh in the archive
  archive get <name> <out>                    Write an archived progressive mesh
  archive list                                List archived progressive meshes
  archive rm <name>                           Delete an archived progressive mesh

Command options may also follow the positional arguments.

Global options:
  -config, -debug, -method, -threshold, -edges-only, -allow-fins,
  -aggressive, -seed, -format, -archive, -log-file

Examples:
  pmtool simplify models/cow.off
  pmtool -format binary simplify -target 500 models/cow.off
  pmtool lod -c 1200.5 -o cow-1200.stl models/cow.offpm
  pmtool archive put cow models/cow.offpm`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), fmt.Sprintf(format, args...))
	logger.Sync()
	os.Exit(1)
}

func usagef(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Usage: "+format+"\n", args...)
	os.Exit(1)
}
