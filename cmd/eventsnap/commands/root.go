package commands

import (
	"context"
	"errors"
	"eventsnap/internal/config"
	"eventsnap/lib/serviceutil"
	"eventsnap/lib/telemetry"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var verbose bool
var providers telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:   "eventsnap",
	Short: "eventsnap snapshots ticketed events and loads them into a relational store.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(verbose)
		initTelemetry(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stats := telemetry.RecordPerfStats(cmd.Context())
		slog.Debug("perf stats",
			"cpu_percent", stats.CpuPercent,
			"allocated_mb", stats.AllocatedMb,
			"goroutines", stats.Goroutines,
		)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := providers.Shutdown(ctx)
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level.")
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger.With("run", uuid.NewString()))
}

// initTelemetry installs otlp exporters if a telemetry.json5 can be found,
// otherwise the global noop providers stay in place.
func initTelemetry(ctx context.Context) {
	t, err := telemetry.SetupFromEnv(ctx, "eventsnap")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("telemetry.json5 not found, traces and metrics are disabled")
		return
	}
	if err != nil {
		slog.Warn("setup telemetry", "err", err)
	}
	providers = t
}

// loadConfig reads the config file and the environment, a broken config
// file is fatal.
func loadConfig() (config.Config, config.Env) {
	cfg, err := config.Load()
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	env, err := config.LoadEnv()
	if err != nil {
		serviceutil.Fatal("failed to read environment", err)
	}
	if env.DB != "" {
		cfg.Paths.DB = env.DB
	}
	return cfg, env
}

func orDefault(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
