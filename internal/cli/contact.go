package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage contacts",
}

func init() {
	rootCmd.AddCommand(contactCmd)
	contactCmd.AddCommand(contactAddCmd)
	contactCmd.AddCommand(contactLsCmd)
	contactCmd.AddCommand(contactSetCmd)
	contactCmd.AddCommand(contactRmCmd)
}

var contactAddCompany string

var contactAddCmd = &cobra.Command{
	Use:   "add <name> [key=value]...",
	Short: "Create a contact under a company",
	Long: `Creates a contact under the named company.

Example:
  salescope contact add "Kim Minsoo" -c "Acme Corp" email=kim@acme.example position=CTO`,
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

		s := store.New(database)
		company, err := s.Companies.GetByName(contactAddCompany)
		if err != nil {
			return err
		}

		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}

		id, err := s.Contacts.Create(user.UserID, company.CompanyID, args[0], fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created contact %d: %s at %s\n", id, args[0], company.CompanyName)
		return nil
	},
}

func init() {
	contactAddCmd.Flags().StringVarP(&contactAddCompany, "company", "c", "", "Company name (required)")
	contactAddCmd.MarkFlagRequired("company")
}

var contactLsCompany string

var contactLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List contacts at a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		s := store.New(database)
		company, err := s.Companies.GetByName(contactLsCompany)
		if err != nil {
			return err
		}

		contacts, err := s.Contacts.ListByCompany(company.CompanyID)
		if err != nil {
			return err
		}
		if len(contacts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No contacts found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPOSITION\tEMAIL\tPHONE")
		for _, c := range contacts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				c.ContactID, c.ContactName, orDash(c.Position), orDash(c.Email), orDash(c.Phone))
		}
		w.Flush()
		return nil
	},
}

func init() {
	contactLsCmd.Flags().StringVarP(&contactLsCompany, "company", "c", "", "Company name (required)")
	contactLsCmd.MarkFlagRequired("company")
}

var contactSetCmd = &cobra.Command{
	Use:   "set <contact-id> <key=value>...",
	Short: "Update contact fields",
	Args:  cobra.MinimumNArgs(2),
	RunE:  makeSetCmd(domain.KindContact),
}

var contactRmHard bool

var contactRmCmd = &cobra.Command{
	Use:   "rm <contact-id>",
	Short: "Remove a contact (soft delete unless --hard)",
	Args:  cobra.ExactArgs(1),
	RunE:  makeRmCmd(domain.KindContact, &contactRmHard),
}

func init() {
	contactRmCmd.Flags().BoolVar(&contactRmHard, "hard", false, "Physically delete instead of soft delete")
}
