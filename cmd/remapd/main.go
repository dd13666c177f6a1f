// remapd - event-withholding and hook-triggering core for input-event
// remapping.
//
//	remapd run      Run the processing pipeline (framed events on stdin)
//	remapd version  Print the version
//
// The run command decodes kernel input_event records from stdin, runs
// them through the configured pipeline, and prints the emitted events
// on stdout. Hooks and withhold filters are wired programmatically by
// embedders; the bare binary acts as a pass-through diagnostic.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"remapd/internal/config"
	"remapd/internal/devwatch"
	"remapd/internal/logging"
	"remapd/internal/pipeline"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		if err := cmdRun(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "remapd: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("remapd %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "remapd: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: remapd <command> [options]

Commands:
  run      Run the processing pipeline (framed events on stdin)
  version  Print the version

Run options:
  -config path   Configuration file (.toml, .yaml)
`)
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyEnvOverrides()
	}

	log, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer log.Close()
	logging.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Devices.WatchHotplug {
		watcher, err := devwatch.New(cfg.Devices.WatchDir)
		if err != nil {
			log.Warn("hotplug watching unavailable", "error", err)
		} else if err := watcher.Start(); err != nil {
			log.Warn("hotplug watching unavailable", "error", err)
			watcher.Close()
		} else {
			defer watcher.Close()
			go func() {
				for ev := range watcher.Events() {
					log.Info("input device "+ev.Op.String(), "path", ev.Path)
				}
			}()
		}
	}

	src := newStdinSource(os.Stdin, cfg.Engine.BatchCapacity, log.Logger)
	src.Start()
	sink := newStdoutSink(os.Stdout)

	p := pipeline.New(log.Logger)

	log.Info("pipeline running", "hold_window", cfg.Engine.HoldWindow.String())
	err = p.Run(ctx, src, sink)
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}

func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		Component: "remapd",
	})
}
