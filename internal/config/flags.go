package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagLoop   = flag.String("loop", "", "Loop mode: wrap or clamp")
	flagSpeed  = flag.Float64("speed", 0, "Playback speed multiplier")
	flagStep   = flag.Float64("step", 0, "Seconds per sample step")
	flagSteps  = flag.Int("steps", 0, "Number of sample steps")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
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
	if *flagLoop != "" {
		cfg.Playback.Loop = *flagLoop
	}
	if *flagSpeed > 0 {
		cfg.Playback.Speed = float32(*flagSpeed)
	}
	if *flagStep > 0 {
		cfg.Playback.TimeStep = float32(*flagStep)
	}
	if *flagSteps > 0 {
		cfg.Playback.Steps = *flagSteps
	}
}
