package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"stratus-hq/skywatch/pkg/acquire"
	"stratus-hq/skywatch/pkg/cli"
	"stratus-hq/skywatch/pkg/config"
	"stratus-hq/skywatch/pkg/journal"
	"stratus-hq/skywatch/pkg/notify"
	"stratus-hq/skywatch/pkg/scheduler"
	"stratus-hq/skywatch/pkg/store"
	"stratus-hq/skywatch/pkg/telemetry/health"
	"stratus-hq/skywatch/pkg/telemetry/logging"
	"stratus-hq/skywatch/pkg/telemetry/metrics"
)

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Skywatch acquisition daemon",
	Long: `Start the acquisition loops with the specified configuration.

Each enabled loop wakes on its interval boundaries, acquires one artifact
for the aligned time index, and stores it under the loop's retention policy.
The daemon runs until SIGINT or SIGTERM.

Examples:
  # Start with default config
  skywatch run

  # Start with custom config
  skywatch run --config /etc/skywatch/config.yaml

  # Validate config without starting the loops
  skywatch run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the loops")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		printPlan(cfg)
		return nil
	}

	fmt.Printf("Skywatch v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	checker := health.New(0)

	// Cycle journal
	var (
		jnl      *journal.Journal
		recorder scheduler.Recorder
	)
	if cfg.Journal.Enabled {
		jnl, err = journal.Open(journal.Config{
			Path:        cfg.Journal.Path,
			BusyTimeout: cfg.Journal.BusyTimeout,
		})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open journal: %w", err))
		}
		defer jnl.Close()
		recorder = jnl
		fmt.Printf("✓ Cycle journal at %s\n", cfg.Journal.Path)
	}

	// Artifact event emitter
	var emitter notify.Emitter = notify.Nop{}
	if cfg.Notify.WebhookURL != "" {
		webhook, err := notify.NewWebhook(notify.WebhookConfig{
			URL:     cfg.Notify.WebhookURL,
			Timeout: cfg.Notify.Timeout,
		})
		if err != nil {
			return cli.NewConfigError("notify.webhook_url", err.Error())
		}
		emitter = webhook
		fmt.Printf("✓ Artifact events to %s\n", cfg.Notify.WebhookURL)
	}

	var (
		loops   []*scheduler.Loop
		targets []scheduler.SweepTarget
		rolling *store.Rolling
	)

	// Remote-tile loop
	if cfg.Tile.Enabled {
		locator, err := acquire.ParseLocator(cfg.Tile.Locator)
		if err != nil {
			return cli.NewConfigError("tile.locator", err.Error())
		}
		fetcher := acquire.NewTileFetcher(locator, acquire.TileConfig{
			Timeout:   cfg.Tile.Timeout,
			MaxBytes:  cfg.Tile.MaxBytes,
			UserAgent: cfg.Tile.UserAgent,
		})
		defer fetcher.Close()

		latest, err := store.NewLatest(cfg.Tile.Store.Dir, cfg.Tile.Store.Filename)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open tile store: %w", err))
		}

		loop, err := scheduler.NewLoop(scheduler.LoopConfig{
			Name:     "tile",
			Interval: cfg.Tile.Interval,
			Window:   cfg.Tile.Window,
		}, scheduler.TileCycle(fetcher, latest), collector, recorder)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		loops = append(loops, loop)
		checker.RegisterCheck("tile", loopCheck(loop, cfg.Tile.Interval))
		fmt.Printf("✓ Tile loop every %s into %s\n", cfg.Tile.Interval, latest.Path())
	}

	// Local-camera loop
	if cfg.Camera.Enabled {
		capturer, err := acquire.NewCommandCapturer(acquire.CameraConfig{
			Command:  cfg.Camera.Command,
			Args:     cfg.Camera.Args,
			Settings: cfg.Camera.Settings,
			Timeout:  cfg.Camera.Timeout,
		})
		if err != nil {
			return cli.NewConfigError("camera.command", err.Error())
		}

		rolling, err = store.NewRolling(
			cfg.Camera.Store.Dir,
			cfg.Camera.Store.Prefix,
			cfg.Camera.Store.Extension,
			store.Policy{
				MaxCount: cfg.Camera.Store.MaxCount,
				Pin:      store.PinNamePrefix(cfg.Camera.Store.PinPrefix),
			},
		)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open camera store: %w", err))
		}

		loop, err := scheduler.NewLoop(scheduler.LoopConfig{
			Name:     "camera",
			Interval: cfg.Camera.Interval,
			Window:   cfg.Camera.Window,
		}, scheduler.CameraCycle(capturer, rolling, emitter), collector, recorder)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		loops = append(loops, loop)
		targets = append(targets, scheduler.SweepTarget{Name: "camera", Store: rolling})
		checker.RegisterCheck("camera", loopCheck(loop, cfg.Camera.Interval))
		fmt.Printf("✓ Camera loop every %s into %s\n", cfg.Camera.Interval, cfg.Camera.Store.Dir)
	}

	ctx := cli.SetupSignalHandler()

	// Scheduled deep retention sweep
	sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
		Schedule:         cfg.Sweep.Schedule,
		JournalRetention: cfg.Sweep.JournalRetention,
	}, targets, jnl, collector)
	if err := sweeper.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sweeper.Stop()

	// Telemetry HTTP surface
	var telemetrySrv *http.Server
	if cfg.Telemetry.ListenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", checker.LivenessHandler())
		mux.Handle("/readyz", checker.ReadinessHandler())
		if cfg.Telemetry.Metrics.Enabled {
			mux.Handle("/metrics", collector.Handler())
		}

		telemetrySrv = &http.Server{
			Addr:              cfg.Telemetry.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := telemetrySrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("telemetry server failed", "error", err)
			}
		}()
		fmt.Printf("✓ Telemetry on http://%s (/healthz /readyz", cfg.Telemetry.ListenAddress)
		if cfg.Telemetry.Metrics.Enabled {
			fmt.Print(" /metrics")
		}
		fmt.Println(")")
	}

	// Retention hot reload: rewrite the config file to change the rolling
	// store's policy without a restart.
	if rolling != nil {
		startRetentionReload(ctx, cfgFile, rolling)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	var wg sync.WaitGroup
	for _, loop := range loops {
		wg.Add(1)
		go func(l *scheduler.Loop) {
			defer wg.Done()
			l.Run(ctx)
		}(loop)
	}

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
	wg.Wait()

	if telemetrySrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetrySrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}

	fmt.Println("✓ Skywatch stopped")
	return nil
}

// loopCheck builds the readiness check for one loop: healthy while the loop
// has stored an artifact within three intervals, or is idle behind a closed
// window, or simply has not run yet.
func loopCheck(l *scheduler.Loop, interval time.Duration) health.CheckFunc {
	return func(ctx context.Context) error {
		outcome, at := l.LastOutcome()
		if at.IsZero() {
			return nil
		}
		if outcome == scheduler.OutcomeSkippedClosed {
			return nil
		}
		if last := l.LastSuccess(); !last.IsZero() && time.Since(last) < 3*interval {
			return nil
		}
		return fmt.Errorf("no stored artifact within %s (last outcome %s)", 3*interval, outcome)
	}
}

// startRetentionReload watches the config file and applies changed retention
// settings to the rolling store. Everything else requires a restart.
func startRetentionReload(ctx context.Context, path string, rolling *store.Rolling) {
	watcher, err := config.NewWatcher(path, 0)
	if err != nil {
		slog.Warn("retention hot reload unavailable", "error", err)
		return
	}

	go func() {
		err := watcher.Watch(ctx, func(next *config.Config) {
			policy := store.Policy{
				MaxCount: next.Camera.Store.MaxCount,
				Pin:      store.PinNamePrefix(next.Camera.Store.PinPrefix),
			}
			if err := rolling.SetPolicy(policy); err != nil {
				slog.Warn("retention policy not applied", "error", err)
				return
			}
			slog.Info("retention policy reloaded", "max_count", policy.MaxCount)
		})
		if err != nil {
			slog.Warn("config watcher stopped", "error", err)
		}
	}()
}

// printPlan summarizes what a run would do, for --dry-run.
func printPlan(cfg *config.Config) {
	if cfg.Tile.Enabled {
		fmt.Printf("  tile: every %s from %s\n", cfg.Tile.Interval, cfg.Tile.Locator)
		fmt.Printf("        window %s, snapshot %s/%s\n", cfg.Tile.Window.String(), cfg.Tile.Store.Dir, cfg.Tile.Store.Filename)
	}
	if cfg.Camera.Enabled {
		fmt.Printf("  camera: every %s via %q\n", cfg.Camera.Interval, cfg.Camera.Command)
		fmt.Printf("          window %s, rolling %s (keep %d)\n", cfg.Camera.Window.String(), cfg.Camera.Store.Dir, cfg.Camera.Store.MaxCount)
	}
	if cfg.Sweep.Schedule != "" {
		fmt.Printf("  sweep: %q\n", cfg.Sweep.Schedule)
	}
}
