package commands

import (
	"eventsnap/internal/pipeline"
	"eventsnap/lib/serviceutil"

	"github.com/spf13/cobra"
)

var transformData string
var transformOutDir string

func init() {
	transformCmd.Flags().StringVar(&transformData, "data", "", "The historical dataset to read (default paths.history).")
	transformCmd.Flags().StringVar(&transformOutDir, "outdir", "", "Where to write the table files (default paths.transformed_dir).")
	rootCmd.AddCommand(transformCmd)
}

var transformCmd = &cobra.Command{
	Use:   "transform [--data <path/to/history.parquet>] [--outdir <dir>]",
	Short: "Normalizes the historical dataset into venues, artists, events and price history tables.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _ := loadConfig()
		data := orDefault(transformData, cfg.Paths.History)
		outDir := orDefault(transformOutDir, cfg.Paths.TransformedDir)

		_, err := pipeline.Transform(cmd.Context(), data, outDir)
		if err != nil {
			serviceutil.Fatal("failed to transform", err)
		}
	},
}
