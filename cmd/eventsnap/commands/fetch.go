package commands

import (
	"context"
	"eventsnap/internal/components/chrono"
	"eventsnap/internal/components/telemetry"
	"eventsnap/internal/config"
	"eventsnap/internal/snapshot"
	"eventsnap/internal/ticketmaster"
	"eventsnap/lib/restyutil"
	"eventsnap/lib/serviceutil"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var fetchOut string
var fetchDumpHttp string
var fetchCountry string

func init() {
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "The historical dataset to append to (default paths.history).")
	fetchCmd.Flags().StringVar(&fetchDumpHttp, "dump-http", "", "Write every request/response pair into this directory.")
	fetchCmd.Flags().StringVar(&fetchCountry, "country", "", "Only fetch events in this country code (default api.country_code).")
	rootCmd.AddCommand(fetchCmd)
}

type fetchOptions struct {
	out      string
	dumpHttp string
	country  string
}

func newFetcher(cfg config.Config, env config.Env, opts fetchOptions) (snapshot.Fetcher, error) {
	var output restyutil.InstrumentOutput
	if opts.dumpHttp != "" {
		fsout, err := restyutil.NewFilesystemOutput(opts.dumpHttp)
		if err != nil {
			return snapshot.Fetcher{}, fmt.Errorf("dump http: %w", err)
		}
		output = fsout
	}

	tel := telemetry.SlogAPI{}
	client, err := ticketmaster.NewClient(ticketmaster.ClientOptions{
		BaseUrl:      cfg.Api.BaseUrl,
		ApiKey:       env.ApiKey,
		Timeout:      cfg.Api.Timeout(),
		RequestDelay: cfg.Api.RequestDelay(),
		Output:       output,
	}, tel)
	if err != nil {
		return snapshot.Fetcher{}, err
	}

	country := cfg.Api.CountryCode
	if opts.country != "" {
		country = opts.country
	}
	return snapshot.NewFetcher(client, chrono.NewStandardImpl(), tel, snapshot.Options{
		Classification: cfg.Api.Classification,
		CountryCode:    country,
		PageSize:       cfg.Api.PageSize,
		Horizon:        cfg.Api.Horizon(),
	}), nil
}

func fetch(ctx context.Context, fetcher snapshot.Fetcher, out string) error {
	result, err := fetcher.Run(ctx, out)
	if err != nil {
		return err
	}
	if result.Fetched == 0 {
		return nil
	}
	slog.InfoContext(ctx, "saved snapshot",
		"snapshot_date", result.SnapshotDate,
		"fetched", result.Fetched,
		"new_rows", result.Added,
		"total_rows", result.Total,
		"path", out,
	)
	return nil
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--out <path/to/history.parquet>] [--dump-http <dir>]",
	Short: "Fetches upcoming events and appends today's snapshot to the historical dataset.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, env := loadConfig()
		opts := fetchOptions{
			out:      orDefault(fetchOut, cfg.Paths.History),
			dumpHttp: fetchDumpHttp,
			country:  fetchCountry,
		}

		fetcher, err := newFetcher(cfg, env, opts)
		if err != nil {
			serviceutil.Fatal("failed to create fetcher", err)
		}
		err = fetch(cmd.Context(), fetcher, opts.out)
		if err != nil {
			serviceutil.Fatal("failed to fetch", err)
		}
	},
}
