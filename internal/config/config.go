// Package config handles animtool configuration loading and management.
package config

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/anim"
)

// Config holds all tool settings.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PlaybackConfig holds sampling settings shared by every command.
type PlaybackConfig struct {
	TimeStep  float32 `yaml:"time_step"` // Seconds advanced per printed sample
	Steps     int     `yaml:"steps"`     // Number of samples printed
	Speed     float32 `yaml:"speed"`     // Playback rate multiplier
	Loop      string  `yaml:"loop"`      // "wrap" or "clamp"
	Precision int     `yaml:"precision"` // Decimals in printed poses
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			TimeStep:  1.0 / 30.0,
			Steps:     30,
			Speed:     1,
			Loop:      "wrap",
			Precision: 3,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}

// LoopMode converts the configured loop policy.
func (p PlaybackConfig) LoopMode() (anim.LoopMode, error) {
	switch p.Loop {
	case "wrap", "":
		return anim.LoopWrap, nil
	case "clamp":
		return anim.LoopClamp, nil
	default:
		return anim.LoopWrap, fmt.Errorf("playback.loop: unknown mode %q (want wrap or clamp)", p.Loop)
	}
}

// PlayerOptions returns the player options described by the playback settings.
func (p PlaybackConfig) PlayerOptions() ([]anim.PlayerOption, error) {
	mode, err := p.LoopMode()
	if err != nil {
		return nil, err
	}
	return []anim.PlayerOption{anim.WithLoopMode(mode), anim.WithSpeed(p.Speed)}, nil
}

// FileConfig returns the logger file settings, or a zero FileConfig when
// file logging is disabled.
func (l LoggingConfig) FileConfig() logger.FileConfig {
	if l.LogFile == "" {
		return logger.FileConfig{}
	}
	fc := logger.DefaultFileConfig(l.LogFile)
	if l.MaxSizeMB > 0 {
		fc.MaxSizeMB = l.MaxSizeMB
	}
	if l.MaxBackups > 0 {
		fc.MaxBackups = l.MaxBackups
	}
	return fc
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !(c.Playback.TimeStep > 0) {
		return fmt.Errorf("playback.time_step must be positive, got %v", c.Playback.TimeStep)
	}
	if !(c.Playback.Speed > 0) || math32.IsInf(c.Playback.Speed, 1) {
		return fmt.Errorf("playback.speed must be positive and finite, got %v", c.Playback.Speed)
	}
	if c.Playback.Steps < 1 {
		return fmt.Errorf("playback.steps must be at least 1, got %d", c.Playback.Steps)
	}
	if c.Playback.Precision < 0 || c.Playback.Precision > 9 {
		return fmt.Errorf("playback.precision must be in [0, 9], got %d", c.Playback.Precision)
	}
	if _, err := c.Playback.LoopMode(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
