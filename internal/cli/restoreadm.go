package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var restoreAdmCmd = &cobra.Command{
	Use:   "restore <kind> <id>",
	Short: "Restore a soft-deleted entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDBAdmin(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RequiresMigrationError(); err != nil {
			return err
		}

		user, err := resolveCurrentUser(database, cfg, cmd)
		if err != nil {
			return err
		}

		if err := domain.ValidateEntityKind(args[0]); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		s := store.New(database)
		if err := s.RestoreEntity(user.UserID, domain.EntityKind(args[0]), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s %d\n", args[0], id)
		return nil
	},
}

func init() {
	rootAdmCmd.AddCommand(restoreAdmCmd)
}
