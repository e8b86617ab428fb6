package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/merge"
)

var mergeAdmCmd = &cobra.Command{
	Use:   "merge <kind> <source-id> <target-id>",
	Short: "Merge a duplicate entity into a canonical one",
	Long: `Merge absorbs the source entity into the target: everything that pointed
at the source (tasks, invoices, contacts, link rows) is repointed to the
target, link rows that would duplicate an existing target link are dropped,
and the source row is removed. Kind is one of: company, contact, project,
product.

Example:
  salescopeadm merge company 12 7`,
	Args: cobra.ExactArgs(3),
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
		sourceID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q", args[1])
		}
		targetID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid target id %q", args[2])
		}

		repointed, err := merge.Merge(database, user.UserID, domain.EntityKind(args[0]), sourceID, targetID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Merged %s %d into %d (%d row(s) repointed)\n",
			args[0], sourceID, targetID, repointed)
		return nil
	},
}

func init() {
	rootAdmCmd.AddCommand(mergeAdmCmd)
}
