package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"salescope/internal/config"
	"salescope/internal/db"
)

var rootAdmCmd = &cobra.Command{
	Use:   "salescopeadm",
	Short: "Administrative CLI for the salescope database",
	Long: `salescopeadm is the administrative companion to salescope. It handles
schema migration, account registration and approval, duplicate-entity
merging, and soft-delete recovery. These operations should not be exposed
to everyday users.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to database file (overrides SALESCOPE_DB_PATH)")
	rootAdmCmd.PersistentFlags().String("as", "", "Username to perform action as (overrides SALESCOPE_USER)")
}

// openDBAdmin opens the database without the pending-migration check, since
// running migrations is what half these commands are for.
func openDBAdmin(cmd *cobra.Command) (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return cfg, database, nil
}
