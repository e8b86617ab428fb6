package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"salescope/internal/export"
	"salescope/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export listings to CSV or XLSX files",
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportTasksCmd)
	exportCmd.AddCommand(exportCompaniesCmd)
}

var (
	exportFormat  string
	exportDir     string
	exportCompany string
)

var exportTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Export tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		dir := exportDir
		if dir == "" {
			dir = cfg.ExportDir
		}

		s := store.New(database)
		var tasks []*store.TaskRow
		if exportCompany != "" {
			tasks, err = s.TasksByCompanyName(exportCompany)
		} else {
			tasks, err = s.IncompleteTasks()
		}
		if err != nil {
			return err
		}

		var path string
		switch exportFormat {
		case "csv":
			path, err = export.TasksCSV(dir, tasks)
		case "xlsx":
			path, err = export.TasksXLSX(dir, tasks)
		default:
			return fmt.Errorf("unknown format %q (csv or xlsx)", exportFormat)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", len(tasks), path)
		return nil
	},
}

var exportCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Export the company overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		dir := exportDir
		if dir == "" {
			dir = cfg.ExportDir
		}

		s := store.New(database)
		summaries, err := s.CompanySummaries()
		if err != nil {
			return err
		}

		if exportFormat != "csv" {
			return fmt.Errorf("company export supports csv only")
		}
		path, err := export.CompaniesCSV(dir, summaries)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d company(ies) to %s\n", len(summaries), path)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{exportTasksCmd, exportCompaniesCmd} {
		c.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or xlsx")
		c.Flags().StringVar(&exportDir, "dir", "", "Output directory (default from config)")
	}
	exportTasksCmd.Flags().StringVarP(&exportCompany, "company", "c", "", "Limit to one company")
}
