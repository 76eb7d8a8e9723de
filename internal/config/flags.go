package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log", "", "Write logs to this file as well")
	flagMaxVerts    = flag.Int("max-verts", 0, "Largest face a reader accepts (3-16)")
	flagOversize    = flag.String("oversize", "", "Oversized face policy: reject, truncate or split")
	flagCoplanarTol = flag.Float64("coplanar-tol", -1, "Coplanarity tolerance (distance)")
	flagConvexTol   = flag.Float64("convex-tol", -1, "Convexity tolerance (sine of turn angle)")
	flagCoalesceTol = flag.Float64("coalesce-tol", -1, "Distance within which vertices are merged")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
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
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagMaxVerts > 0 {
		cfg.Formats.MaxVertsPerFace = *flagMaxVerts
	}
	if *flagOversize != "" {
		cfg.Formats.Oversize = *flagOversize
	}
	if *flagCoplanarTol >= 0 {
		cfg.Mesh.Tolerances.Coplanarity = float32(*flagCoplanarTol)
	}
	if *flagConvexTol >= 0 {
		cfg.Mesh.Tolerances.Convexity = float32(*flagConvexTol)
	}
	if *flagCoalesceTol >= 0 {
		cfg.Mesh.CoalesceTolerance = float32(*flagCoalesceTol)
	}
}
