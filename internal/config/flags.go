package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and invariant checks")
	flagMethod     = flag.String("method", "", "Collapse placement: binary, midpoint or quadric")
	flagThreshold  = flag.Float64("threshold", 0, "Pair distance threshold (0 keeps the configured value)")
	flagEdgesOnly  = flag.Bool("edges-only", false, "Only collapse mesh edges, ignoring the distance threshold")
	flagAllowFins  = flag.Bool("allow-fins", false, "Keep fins instead of removing them")
	flagAggressive = flag.Bool("aggressive", false, "Collapse infinite-cost pairs toward the boundary")
	flagSeed       = flag.Int64("seed", 0, "Random edge seed (0 keeps the configured value)")
	flagFormat     = flag.String("format", "", "Progressive mesh output: text or binary")
	flagArchive    = flag.String("archive", "", "Path to the progressive mesh archive")
	flagLogFile    = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Simplify.Debug = true
	}
	if *flagMethod != "" {
		cfg.Simplify.Method = *flagMethod
	}
	if *flagThreshold != 0 {
		cfg.Simplify.Threshold = *flagThreshold
	}
	if *flagEdgesOnly {
		cfg.Simplify.Threshold = -1
	}
	if *flagAllowFins {
		cfg.Simplify.AllowFins = true
	}
	if *flagAggressive {
		cfg.Simplify.Aggressive = true
	}
	if *flagSeed != 0 {
		cfg.Simplify.Seed = *flagSeed
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagArchive != "" {
		cfg.Archive.Path = *flagArchive
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
