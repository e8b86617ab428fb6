package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"salescope/internal/reconcile"
	"salescope/internal/snapshot"
	"salescope/internal/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and reconcile editable activity snapshots",
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotApplyCmd)
}

var (
	snapshotCompany string
	snapshotOut     string
)

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a company's activity as an editable YAML snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		s := store.New(database)
		tasks, err := s.TasksByCompanyName(snapshotCompany)
		if err != nil {
			return err
		}

		doc := snapshot.FromRows(tasks)
		if snapshotOut == "" || snapshotOut == "-" {
			data, err := doc.Marshal()
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(data)
			return nil
		}
		if err := doc.Write(snapshotOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d task(s) to %s\n", len(doc.Tasks), snapshotOut)
		return nil
	},
}

func init() {
	snapshotExportCmd.Flags().StringVarP(&snapshotCompany, "company", "c", "", "Company name (required)")
	snapshotExportCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Output file (default stdout)")
	snapshotExportCmd.MarkFlagRequired("company")
}

var snapshotDryRun bool

var snapshotApplyCmd = &cobra.Command{
	Use:   "apply <original.yaml> <edited.yaml>",
	Short: "Apply an edited snapshot back to the database",
	Long: `Diffs the edited snapshot against the original and applies the change set
in one transaction: removed entries are soft-deleted, changed entries
updated, new entries (no id) recorded. Every row is validated before
anything is written; any invalid row blocks the whole set.`,
	Args: cobra.ExactArgs(2),
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

		original, err := snapshot.Load(args[0])
		if err != nil {
			return err
		}
		edited, err := snapshot.Load(args[1])
		if err != nil {
			return err
		}

		diff := snapshot.Compare(original, edited)
		if diff.Empty() {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes")
			return nil
		}

		if snapshotDryRun {
			rendered, err := reconcile.RenderDiff(original, edited)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			s := store.New(database)
			if report := reconcile.Validate(s, diff); report != nil {
				return report
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Would add %d, update %d, delete %d\n",
				len(diff.Added), len(diff.Modified), len(diff.Deleted))
			return nil
		}

		s := store.New(database)
		result, err := reconcile.Apply(s, user.UserID, diff)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d, updated %d, deleted %d\n",
			result.Added, result.Updated, result.Deleted)
		return nil
	},
}

func init() {
	snapshotApplyCmd.Flags().BoolVar(&snapshotDryRun, "dry-run", false, "Show the diff and validate without writing")
}
