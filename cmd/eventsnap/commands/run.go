package commands

import (
	"eventsnap/internal/pipeline"
	"eventsnap/lib/serviceutil"
	"eventsnap/lib/sqliteutil"

	"github.com/spf13/cobra"
)

var runData string
var runDb string
var runClean bool

func init() {
	runCmd.Flags().StringVar(&runData, "data", "", "The historical dataset to read (default paths.history).")
	runCmd.Flags().StringVar(&runDb, "db", "", "The database file or libsql url to load into (default paths.db).")
	runCmd.Flags().BoolVar(&runClean, "clean", false, "Delete the intermediate table files after loading.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--data <path/to/history.parquet>] [--db <path/to/events.db>] [--clean]",
	Short: "Transforms the historical dataset and loads it in one go.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, env := loadConfig()
		_, err := pipeline.Run(cmd.Context(), pipeline.Options{
			DataPath: orDefault(runData, cfg.Paths.History),
			DBPath:   sqliteutil.WithAuthToken(orDefault(runDb, cfg.Paths.DB), env.DBAuthToken),
			OutDir:   cfg.Paths.TransformedDir,
			Clean:    runClean,
		})
		if err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}
	},
}
