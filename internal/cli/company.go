package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage companies",
}

func init() {
	rootCmd.AddCommand(companyCmd)
	companyCmd.AddCommand(companyAddCmd)
	companyCmd.AddCommand(companyLsCmd)
	companyCmd.AddCommand(companySetCmd)
	companyCmd.AddCommand(companyRmCmd)
}

var companyAddCmd = &cobra.Command{
	Use:   "add <name> [key=value]...",
	Short: "Create a company",
	Long: `Creates a company directly. Fails if a live company with the same name
exists; use 'task add' when you just want the company to exist.

Example:
  salescope company add "Acme Corp" nationality=USA employee_count=250`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		user, err := resolveCurrentUser(database, cfg, cmd)
		if err != nil {
			return err
		}

		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}

		s := store.New(database)
		id, err := s.Companies.Create(user.UserID, args[0], fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created company %d: %s\n", id, args[0])
		return nil
	},
}

var companyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List companies with activity counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		s := store.New(database)
		summaries, err := s.CompanySummaries()
		if err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No companies found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNATION\tCONTACTS\tTASKS\tLAST ACTION")
		for _, c := range summaries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
				c.CompanyID, c.CompanyName, orDash(c.Nationality),
				c.ContactCount, c.TaskCount, orDash(c.LastAction))
		}
		w.Flush()
		return nil
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set <company-id> <key=value>...",
	Short: "Update company fields",
	Args:  cobra.MinimumNArgs(2),
	RunE:  makeSetCmd(domain.KindCompany),
}

var companyRmHard bool

var companyRmCmd = &cobra.Command{
	Use:   "rm <company-id>",
	Short: "Remove a company (soft delete unless --hard)",
	Args:  cobra.ExactArgs(1),
	RunE:  makeRmCmd(domain.KindCompany, &companyRmHard),
}

func init() {
	companyRmCmd.Flags().BoolVar(&companyRmHard, "hard", false, "Physically delete instead of soft delete")
}

// makeSetCmd builds the shared update handler for <kind> set commands
func makeSetCmd(kind domain.EntityKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		user, err := resolveCurrentUser(database, cfg, cmd)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s id %q", kind, args[0])
		}
		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}

		s := store.New(database)
		if err := s.UpdateEntity(user.UserID, kind, id, fields); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", kind, id)
		return nil
	}
}

// makeRmCmd builds the shared delete handler for <kind> rm commands
func makeRmCmd(kind domain.EntityKind, hard *bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		user, err := resolveCurrentUser(database, cfg, cmd)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s id %q", kind, args[0])
		}

		s := store.New(database)
		if err := s.DeleteEntity(user.UserID, kind, id, *hard); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %d\n", kind, id)
		return nil
	}
}
