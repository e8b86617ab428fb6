package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateAdmCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run any pending database migrations",
	Long: `Migrate applies any pending SQL migrations to the database.

Migrations are embedded in the binary and tracked via the schema_migrations
table; each migration file is applied exactly once, so this command is safe
to run repeatedly.

Use --status to show the current migration status without applying anything.`,
	RunE: runMigrateAdm,
}

var migrateStatus bool

func init() {
	rootAdmCmd.AddCommand(migrateAdmCmd)
	migrateAdmCmd.Flags().BoolVar(&migrateStatus, "status", false, "Show current migration status")
}

func runMigrateAdm(cmd *cobra.Command, args []string) error {
	_, database, err := openDBAdmin(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if migrateStatus {
		applied, pending, err := database.MigrationStatus()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range applied {
			fmt.Fprintf(out, "applied  %s\n", m)
		}
		for _, m := range pending {
			fmt.Fprintf(out, "pending  %s\n", m)
		}
		if len(applied) == 0 && len(pending) == 0 {
			fmt.Fprintln(out, "No migrations found")
		}
		return nil
	}

	applied, err := database.Migrate()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date. No migrations to apply.")
		return nil
	}
	for _, m := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", m)
	}
	return nil
}
