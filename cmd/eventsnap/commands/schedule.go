package commands

import (
	"eventsnap/internal/components/chrono"
	"eventsnap/internal/components/telemetry"
	"eventsnap/internal/pipeline"
	"eventsnap/lib/serviceutil"
	"eventsnap/lib/sqliteutil"
	"log/slog"

	"github.com/spf13/cobra"
)

var scheduleSpec string
var scheduleThenRun bool

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "0 6 * * *", "When to fetch, in cron syntax (UTC).")
	scheduleCmd.Flags().BoolVar(&scheduleThenRun, "then-run", false, "Transform and load after every fetch.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--cron <spec>] [--then-run]",
	Short: "Fetches a snapshot on a schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg, env := loadConfig()

		fetcher, err := newFetcher(cfg, env, fetchOptions{})
		if err != nil {
			serviceutil.Fatal("failed to create fetcher", err)
		}

		cron := chrono.NewStandardCron(telemetry.SlogAPI{}, chrono.NewStandardImpl().Location())
		err = cron.Cron(scheduleSpec, func() {
			err := fetch(ctx, fetcher, cfg.Paths.History)
			if err != nil {
				slog.ErrorContext(ctx, "scheduled fetch failed", "err", err)
				return
			}
			if !scheduleThenRun {
				return
			}
			_, err = pipeline.Run(ctx, pipeline.Options{
				DataPath: cfg.Paths.History,
				DBPath:   sqliteutil.WithAuthToken(cfg.Paths.DB, env.DBAuthToken),
				OutDir:   cfg.Paths.TransformedDir,
				Clean:    true,
			})
			if err != nil {
				slog.ErrorContext(ctx, "scheduled pipeline failed", "err", err)
			}
		})
		if err != nil {
			serviceutil.Fatal("invalid cron spec", err)
		}

		slog.Info("waiting for schedule", "cron", scheduleSpec)
		<-ctx.Done()
		cron.Stop()
	},
}
