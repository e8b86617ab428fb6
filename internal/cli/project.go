package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectLsCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.AddCommand(projectRmCmd)
	projectCmd.AddCommand(projectParticipantCmd)
	projectCmd.AddCommand(projectLinkCmd)
}

var projectAddCompany string

var projectAddCmd = &cobra.Command{
	Use:   "add <name> [key=value]...",
	Short: "Create a project under a company",
	Args:  cobra.MinimumNArgs(1),
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
		company, err := s.Companies.GetByName(projectAddCompany)
		if err != nil {
			return err
		}

		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}

		id, err := s.Projects.Create(user.UserID, company.CompanyID, args[0], fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s under %s\n", id, args[0], company.CompanyName)
		return nil
	},
}

func init() {
	projectAddCmd.Flags().StringVarP(&projectAddCompany, "company", "c", "", "Company name (required)")
	projectAddCmd.MarkFlagRequired("company")
}

var projectLsCompany string

var projectLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List projects under a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		s := store.New(database)
		company, err := s.Companies.GetByName(projectLsCompany)
		if err != nil {
			return err
		}

		projects, err := s.Projects.ListByCompany(company.CompanyID)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTART\tEND")
		for _, p := range projects {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				p.ProjectID, p.ProjectName, orDash(p.Status), orDash(p.StartDate), orDash(p.EndDate))
		}
		w.Flush()
		return nil
	},
}

func init() {
	projectLsCmd.Flags().StringVarP(&projectLsCompany, "company", "c", "", "Company name (required)")
	projectLsCmd.MarkFlagRequired("company")
}

var projectSetCmd = &cobra.Command{
	Use:   "set <project-id> <key=value>...",
	Short: "Update project fields",
	Args:  cobra.MinimumNArgs(2),
	RunE:  makeSetCmd(domain.KindProject),
}

var projectRmHard bool

var projectRmCmd = &cobra.Command{
	Use:   "rm <project-id>",
	Short: "Remove a project (soft delete unless --hard)",
	Args:  cobra.ExactArgs(1),
	RunE:  makeRmCmd(domain.KindProject, &projectRmHard),
}

func init() {
	projectRmCmd.Flags().BoolVar(&projectRmHard, "hard", false, "Physically delete instead of soft delete")
}

var projectParticipantCmd = &cobra.Command{
	Use:   "participant",
	Short: "Manage project participants",
}

var participantRole string

var projectParticipantAddCmd = &cobra.Command{
	Use:   "add <project-id> <contact-id>",
	Short: "Add a contact to a project",
	Args:  cobra.ExactArgs(2),
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

		projectID, contactID, err := parseIDPair(args)
		if err != nil {
			return err
		}

		s := store.New(database)
		if err := s.Projects.AddParticipant(user.UserID, projectID, contactID, participantRole); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added contact %d to project %d\n", contactID, projectID)
		return nil
	},
}

var projectParticipantRmCmd = &cobra.Command{
	Use:   "rm <project-id> <contact-id>",
	Short: "Remove a contact from a project",
	Args:  cobra.ExactArgs(2),
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

		projectID, contactID, err := parseIDPair(args)
		if err != nil {
			return err
		}

		s := store.New(database)
		if err := s.Projects.RemoveParticipant(user.UserID, projectID, contactID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed contact %d from project %d\n", contactID, projectID)
		return nil
	},
}

func init() {
	projectParticipantCmd.AddCommand(projectParticipantAddCmd)
	projectParticipantCmd.AddCommand(projectParticipantRmCmd)
	projectParticipantAddCmd.Flags().StringVar(&participantRole, "role", "", "Role label (e.g. technical, purchasing)")
}

var projectLinkCmd = &cobra.Command{
	Use:   "link <project-id> <product-name>",
	Short: "Mark a product as in scope for a project",
	Args:  cobra.ExactArgs(2),
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

		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}

		s := store.New(database)
		if err := s.Projects.LinkProduct(user.UserID, projectID, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked %q to project %d\n", args[1], projectID)
		return nil
	},
}

func parseIDPair(args []string) (int64, int64, error) {
	first, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid id %q", args[0])
	}
	second, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid id %q", args[1])
	}
	return first, second, nil
}
