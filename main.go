package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/scalerwatch/cmd"
	"github.com/smazurov/scalerwatch/internal/api"
	"github.com/smazurov/scalerwatch/internal/config"
	"github.com/smazurov/scalerwatch/internal/console"
	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/logging"
	"github.com/smazurov/scalerwatch/internal/metrics"
	"github.com/smazurov/scalerwatch/internal/metrics/exporters"
	"github.com/smazurov/scalerwatch/internal/monitor"
	"github.com/smazurov/scalerwatch/internal/recorder"
	"github.com/smazurov/scalerwatch/internal/stream"
	"github.com/smazurov/scalerwatch/internal/systemd"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// Exit codes.
const (
	exitFatal    = 1
	exitUsage    = 2
	exitNoHeader = 3
)

// stopTimeout bounds how long a signal waits for the monitor to wind down.
const stopTimeout = 3 * time.Second

func main() {
	var cli humacli.CLI
	var target cmd.Target

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if err := config.LoadConfig(opts, cli.Root()); err != nil {
			fmt.Fprintln(os.Stderr, "scalerwatch:", err)
			os.Exit(exitUsage)
		}
		s, err := opts.parse()
		if err != nil {
			fmt.Fprintln(os.Stderr, "scalerwatch:", err)
			os.Exit(exitUsage)
		}
		target = cmd.Target{Device: opts.Device, Base: s.base, Length: ascal.MapLength}

		logging.Initialize(s.logging)
		logger := logging.GetLogger("main")

		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})

		hooks.OnStart(func() {
			code := run(ctx, opts, s, logger)
			close(finished)
			if code != 0 {
				os.Exit(code)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			cancel()
			select {
			case <-finished:
			case <-time.After(stopTimeout):
				logger.Warn("Monitor did not stop in time")
			}
		})
	})

	cli.Root().Use = "scalerwatch"
	cli.Root().Short = "Watch the MiSTer scaler framebuffer for changes and color"

	targetFn := func() cmd.Target { return target }
	cli.Root().AddCommand(cmd.CreateProbeCmd(targetFn))
	cli.Root().AddCommand(cmd.CreateDumpCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}

// run maps the scaler, wires every report consumer to the bus and polls
// until ctx ends. It returns the process exit code.
func run(ctx context.Context, opts *Options, s settings, logger *slog.Logger) int {
	region, err := ascal.Open(opts.Device, s.base, ascal.MapLength)
	if err != nil {
		logger.Error("Failed to map scaler memory", "device", opts.Device, "base", fmt.Sprintf("%#x", s.base), "error", err)
		return exitFatal
	}
	defer region.Close()

	bus := events.New()
	mon, err := monitor.New(region.Bytes(), s.monitor, logging.GetLogger("monitor"), bus)
	if errors.Is(err, monitor.ErrHeaderNotFound) {
		logger.Error("Scaler header not found", "base", fmt.Sprintf("%#x", s.base))
		return exitNoHeader
	}
	if err != nil {
		logger.Error("Failed to start monitor", "error", err)
		return exitFatal
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	defer wg.Wait()

	printer := console.NewPrinter(os.Stdout, s.style)
	defer printer.Finish()
	defer printer.Attach(bus)()
	defer metrics.Attach(bus)()

	if opts.Record != "" {
		rec, err := recorder.Create(opts.Record, opts.RecordChanges)
		if err != nil {
			logger.Error("Failed to open recording", "path", opts.Record, "error", err)
			return exitFatal
		}
		recLogger := logging.GetLogger("recorder")
		defer func() {
			if err := rec.Close(); err != nil {
				recLogger.Warn("Failed to close recording", "error", err)
			}
			recLogger.Info("Recording closed", "path", opts.Record, "records", rec.Count())
		}()
		defer rec.Attach(bus, recLogger)()
	}

	var serverErr error
	if opts.Listen != "" {
		hub := stream.NewHub(logging.GetLogger("stream"), mon.Latest)
		server := api.NewServer(&api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Source:       mon,
			Counters: func(l ascal.Layout) [3]uint8 {
				return ascal.BufferCounters(region.Bytes(), l)
			},
			StreamHandler:     hub,
			PrometheusHandler: exporters.HTTPHandler(),
		})

		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Run(ctx, bus)
		}()
		go func() {
			defer wg.Done()
			if err := server.Run(ctx, opts.Listen); err != nil {
				logger.Error("API server failed", "addr", opts.Listen, "error", err)
				serverErr = err
				cancel()
			}
		}()
	}

	if opts.Watch {
		if w := watchConfig(ctx, opts.Config, mon, s.logging); w != nil {
			defer w.Stop()
		}
	}

	notifier := systemd.NewNotifier(logging.GetLogger("systemd"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		notifier.Run(ctx, bus)
	}()
	notifier.Ready()

	err = mon.Run(ctx)
	notifier.Stopping()
	cancel()
	wg.Wait()

	switch {
	case err != nil:
		logger.Error("Monitor stopped", "error", err)
		return exitFatal
	case serverErr != nil:
		return exitFatal
	}
	return 0
}

// watchConfig hot-applies the [monitor] and [logging] tables. It returns
// nil when there is no config file to watch.
func watchConfig(ctx context.Context, path string, mon *monitor.Monitor, base logging.Config) *config.Watcher[config.Reloadable] {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	logger := logging.GetLogger("config")
	w := config.NewConfigWatcher(path, config.LoadReloadable, logger)
	w.OnReload(func(r config.Reloadable) {
		tuning, err := r.Monitor.Apply(mon.Tuning())
		if err != nil {
			logger.Warn("Ignoring invalid monitor settings", "error", err)
		} else if err := mon.UpdateTuning(tuning); err != nil {
			logger.Warn("Failed to apply monitor settings", "error", err)
		}
		logging.ApplyLevels(r.LoggingOver(base))
	})
	if err := w.Start(ctx); err != nil {
		logger.Warn("Config watcher unavailable", "path", path, "error", err)
		return nil
	}
	return w
}
