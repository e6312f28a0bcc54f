package pipeline

import (
	"context"
	"eventsnap/internal/history"
	"eventsnap/internal/loader"
	"eventsnap/internal/normalize"
	"eventsnap/internal/tables"
	"eventsnap/lib/sqliteutil"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("eventsnap/pipeline")

// Transform reads the historical dataset at `dataPath` and writes the
// normalized table files into `outDir`.
func Transform(ctx context.Context, dataPath, outDir string) (normalize.Tables, error) {
	ctx, span := tracer.Start(ctx, "Transform")
	defer span.End()

	rows, err := history.Read(ctx, dataPath)
	if err != nil {
		return normalize.Tables{}, fmt.Errorf("read dataset: %w", err)
	}
	t := normalize.Transform(rows)
	err = tables.WriteAll(outDir, t)
	if err != nil {
		return normalize.Tables{}, err
	}

	slog.InfoContext(ctx, "wrote transformed tables",
		"dir", outDir,
		"venues", len(t.Venues),
		"artists", len(t.Artists),
		"events", len(t.Events),
		"event_price_history", len(t.PriceHistory),
	)
	return t, nil
}

// Load reads the table files in `inDir` and upserts them into the store at
// `dbPath`, which is a local file or a libsql url.
func Load(ctx context.Context, dbPath, inDir string) (loader.Counts, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	t, err := tables.ReadAll(inDir)
	if err != nil {
		return loader.Counts{}, err
	}

	database, err := sqliteutil.OpenDB("", dbPath)
	if err != nil {
		return loader.Counts{}, err
	}
	defer database.Close()

	return loader.Load(ctx, database, t)
}

type Options struct {
	DataPath string
	DBPath   string
	OutDir   string
	// Clean removes the intermediate table files after a successful load.
	Clean bool
}

// Run transforms then loads. The table files must all exist between the two
// steps, a missing one fails the run with tables.MissingFileError.
func Run(ctx context.Context, opts Options) (loader.Counts, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	slog.InfoContext(ctx, "transform", "data", opts.DataPath, "outdir", opts.OutDir)
	_, err := Transform(ctx, opts.DataPath, opts.OutDir)
	if err != nil {
		return loader.Counts{}, fmt.Errorf("transform: %w", err)
	}

	err = tables.CheckExist(opts.OutDir)
	if err != nil {
		return loader.Counts{}, fmt.Errorf("transform failed: %w", err)
	}

	slog.InfoContext(ctx, "load", "db", opts.DBPath, "indir", opts.OutDir)
	counts, err := Load(ctx, opts.DBPath, opts.OutDir)
	if err != nil {
		return loader.Counts{}, fmt.Errorf("load: %w", err)
	}

	if opts.Clean {
		tables.Remove(opts.OutDir)
		slog.InfoContext(ctx, "cleaned intermediate tables", "dir", opts.OutDir)
	}
	return counts, nil
}
