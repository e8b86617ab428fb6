package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "salescope",
	Short: "CLI for the salescope customer activity tracker",
	Long: `salescope tracks companies, contacts, projects and the sales activity
around them on a SQLite backend. Recording an activity entry creates any
company, contact or project it names, so there is no setup step before
logging work against a new customer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides SALESCOPE_DB_PATH)")
	rootCmd.PersistentFlags().String("as", "", "Username to perform action as (overrides SALESCOPE_USER)")
}
