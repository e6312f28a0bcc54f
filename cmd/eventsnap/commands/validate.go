package commands

import (
	"eventsnap/internal/validate"
	"eventsnap/lib/serviceutil"
	"eventsnap/lib/sqliteutil"
	"os"

	"github.com/spf13/cobra"
)

var validateDb string

func init() {
	validateCmd.Flags().StringVar(&validateDb, "db", "", "The database file or libsql url to inspect (default paths.db).")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [--db <path/to/events.db>]",
	Short: "Prints row counts, null rates, key uniqueness, orphan rates and price sanity of the store.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, env := loadConfig()
		target := sqliteutil.WithAuthToken(orDefault(validateDb, cfg.Paths.DB), env.DBAuthToken)
		database, err := sqliteutil.OpenReadOnly(target)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		report, err := validate.Run(cmd.Context(), database)
		if err != nil {
			serviceutil.Fatal("failed to validate", err)
		}
		validate.Render(os.Stdout, report)
	},
}
