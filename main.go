package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/app"
	"github.com/llehouerou/mpv-sponsorblock/internal/config"
	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
	"github.com/llehouerou/mpv-sponsorblock/internal/logger"
	"github.com/llehouerou/mpv-sponsorblock/internal/metrics"
	"github.com/llehouerou/mpv-sponsorblock/internal/mpv"
	"github.com/llehouerou/mpv-sponsorblock/internal/notify"
	"github.com/llehouerou/mpv-sponsorblock/internal/stats"
)

const dialRetry = 250 * time.Millisecond

func main() {
	var (
		socket     = flag.String("socket", "", "mpv IPC socket path (overrides config)")
		configPath = flag.String("config", "", "configuration file (default: search XDG and current directory)")
		wait       = flag.Duration("wait", 10*time.Second, "how long to wait for the mpv socket to appear")
	)
	flag.Parse()

	if err := run(*configPath, *socket, *wait); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, socket string, wait time.Duration) error {
	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	if socket != "" {
		cfg.Socket = socket
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if cfgErr != nil {
		log.Warn(errmsg.Format(errmsg.OpLoadConfig, cfgErr) + ", falling back to defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.Options{Logger: log}

	if cfg.Stats.Enabled {
		rec, closeStats, err := openStats(cfg, log)
		if err != nil {
			log.Warn(errmsg.Format(errmsg.OpOpenStats, err))
		} else {
			defer closeStats()
			opts.Recorder = rec
		}
	}

	if cfg.UseDesktop() {
		n, err := notify.New()
		if err != nil {
			log.Warn(errmsg.Format(errmsg.OpNotice, err))
		} else {
			desktop := notify.NewDesktopSink(n, log.With("component", "notify"))
			defer desktop.Close()
			opts.Desktop = desktop
		}
	}

	if cfg.HasMetrics() {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, log.With("component", "metrics")); err != nil {
				log.Error(errmsg.Format(errmsg.OpServeMetric, err))
			}
		}()
	}

	client, err := dial(ctx, cfg.Socket, wait, log)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpConnect, cfg.Socket, err))
	}
	defer client.Close()
	log.Info("connected to mpv", "socket", cfg.Socket)

	a, err := app.New(cfg, client, opts)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

// dial retries until the socket accepts a connection or wait elapses.
// mpv creates the socket only once it has started.
func dial(ctx context.Context, path string, wait time.Duration, log *slog.Logger) (*mpv.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	for {
		client, err := mpv.Dial(ctx, path, log.With("component", "mpv"))
		if err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(dialRetry):
		}
	}
}

func openStats(cfg *config.Config, log *slog.Logger) (*stats.Recorder, func(), error) {
	path := cfg.Stats.Path
	if path == "" {
		var err error
		if path, err = stats.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}

	store, err := stats.Open(path)
	if err != nil {
		return nil, nil, err
	}

	rec := stats.NewRecorder(store, 0, log.With("component", "stats"))
	return rec, func() {
		rec.Close()
		store.Close()
	}, nil
}
