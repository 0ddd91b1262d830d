// animtool is a CLI utility for inspecting, sampling and blending skeletal
// animation clip libraries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/cliplib"
	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, cfg.Logging.FileConfig(), true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, args := args[0], args[1:]
	logger.Debug("running command",
		zap.String("command", command),
		zap.Strings("args", args),
		zap.String("loop", cfg.Playback.Loop),
		zap.Float32("speed", cfg.Playback.Speed))
	switch command {
	case "info":
		err = cmdInfo(args)
	case "validate", "check":
		err = cmdValidate(args)
	case "sample":
		err = cmdSample(cfg, args)
	case "blend":
		err = cmdBlend(cfg, args)
	case "watch":
		err = cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`animtool - skeletal animation clip utility

Usage:
  animtool [flags] <command> [args]

Commands:
  info <lib.yaml>               Show skeleton, clips and layers
  validate <lib.yaml>           Check a library and its blend layers
  sample <lib.yaml> <clip>      Print a clip's pose at each step
  blend <lib.yaml>              Print the layered blend pose at each step
  watch <lib.yaml>              Re-validate the library whenever it changes

Flags:
  -config <path>   Config file (default ./animtool.yaml or user config dir)
  -debug           Enable debug logging
  -loop wrap|clamp Loop mode for players
  -speed <x>       Playback speed multiplier
  -step <sec>      Seconds between printed samples
  -steps <n>       Number of printed samples

Examples:
  animtool info hero.yaml
  animtool -steps 5 -step 0.25 sample hero.yaml walk
  animtool -loop clamp blend hero.yaml`)
}

func usage(line string) error {
	fmt.Fprintln(os.Stderr, "Usage: animtool "+line)
	return errUsage
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return usage("info <lib.yaml>")
	}
	lib, err := cliplib.Load(args[0], cliplib.WithLogger(logger.Named("cliplib")))
	if err != nil {
		return err
	}
	writeInfo(os.Stdout, lib)
	return nil
}

func cmdValidate(args []string) error {
	if len(args) < 1 {
		return usage("validate <lib.yaml>")
	}
	lib, err := cliplib.Load(args[0], cliplib.WithLogger(logger.Named("cliplib")))
	if err != nil {
		return err
	}
	if _, err := lib.BuildTree(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fmt.Printf("OK: %s (%d joints, %d clips, %d layers)\n",
		args[0], lib.Skeleton.JointCount(), len(lib.ClipNames()), len(lib.Layers))
	return nil
}

func cmdSample(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return usage("sample <lib.yaml> <clip>")
	}
	lib, err := cliplib.Load(args[0], cliplib.WithLogger(logger.Named("cliplib")))
	if err != nil {
		return err
	}
	clip, ok := lib.Clip(args[1])
	if !ok {
		return fmt.Errorf("clip %q: %w", args[1], cliplib.ErrUnknownClip)
	}

	opts, err := cfg.Playback.PlayerOptions()
	if err != nil {
		return err
	}
	opts = append(opts, anim.WithLogger(logger.Named("player")))
	player, err := anim.NewPlayer(clip, lib.Skeleton, opts...)
	if err != nil {
		return err
	}
	player.Seek(0)

	prec := cfg.Playback.Precision
	fmt.Printf("Clip: %s (duration %s, loop %s, speed %s)\n",
		clip.Name, formatFloat(clip.Duration, prec), player.LoopMode(), formatFloat(player.Speed(), prec))
	for i := 0; i < cfg.Playback.Steps; i++ {
		if i > 0 {
			player.Update(cfg.Playback.TimeStep)
		}
		fmt.Printf("t=%s\n", formatFloat(player.Time(), prec))
		writePose(os.Stdout, lib.Skeleton, player.Pose(), nil, prec)
	}
	return nil
}

func cmdBlend(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usage("blend <lib.yaml>")
	}
	lib, err := cliplib.Load(args[0], cliplib.WithLogger(logger.Named("cliplib")))
	if err != nil {
		return err
	}
	if len(lib.Layers) == 0 {
		return fmt.Errorf("%s: no layers to blend", args[0])
	}

	opts, err := cfg.Playback.PlayerOptions()
	if err != nil {
		return err
	}
	tree, err := lib.BuildTree(
		anim.WithTreeLogger(logger.Named("blend")),
		anim.WithPlayerOptions(opts...),
	)
	if err != nil {
		return err
	}

	prec := cfg.Playback.Precision
	var world []math.Mat4
	elapsed := float32(0)
	for i := 0; i < cfg.Playback.Steps; i++ {
		dt := float32(0)
		if i > 0 {
			dt = cfg.Playback.TimeStep
		}
		tree.Update(dt)
		elapsed += dt
		if err := tree.Apply(lib.Skeleton); err != nil {
			return err
		}
		world = lib.Skeleton.WorldMatrices(world)

		fmt.Printf("elapsed=%s\n", formatFloat(elapsed, prec))
		writePose(os.Stdout, lib.Skeleton, tree.Pose(), world, prec)
	}
	return nil
}

func cmdWatch(args []string) error {
	if len(args) < 1 {
		return usage("watch <lib.yaml>")
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	w, err := cliplib.NewWatcher(logger.Named("watch"), filepath.Dir(path))
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := func() {
		lib, err := cliplib.Load(path, cliplib.WithLogger(logger.Named("cliplib")))
		if err == nil {
			_, err = lib.BuildTree()
		}
		if err != nil {
			logger.Warn("library invalid", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("library loaded",
			zap.String("path", path),
			zap.Int("joints", lib.Skeleton.JointCount()),
			zap.Strings("clips", lib.ClipNames()),
			zap.Int("layers", len(lib.Layers)))
	}

	reload()
	logger.Info("watching for changes", zap.String("dir", filepath.Dir(path)))
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			if abs, err := filepath.Abs(name); err == nil && abs == path {
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}
