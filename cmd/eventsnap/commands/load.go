package commands

import (
	"eventsnap/internal/pipeline"
	"eventsnap/lib/serviceutil"
	"eventsnap/lib/sqliteutil"

	"github.com/spf13/cobra"
)

var loadDb string
var loadInDir string

func init() {
	loadCmd.Flags().StringVar(&loadDb, "db", "", "The database file or libsql url to load into (default paths.db).")
	loadCmd.Flags().StringVar(&loadInDir, "indir", "", "Where to read the table files from (default paths.transformed_dir).")
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load [--db <path/to/events.db>] [--indir <dir>]",
	Short: "Upserts the transformed tables into the relational store.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, env := loadConfig()
		target := sqliteutil.WithAuthToken(orDefault(loadDb, cfg.Paths.DB), env.DBAuthToken)
		inDir := orDefault(loadInDir, cfg.Paths.TransformedDir)

		_, err := pipeline.Load(cmd.Context(), target, inDir)
		if err != nil {
			serviceutil.Fatal("failed to load", err)
		}
	},
}
