package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Record and manage activity entries",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an activity entry",
	Long: `Records one activity entry. The named company, contact and project are
created on the fly if they do not exist yet.

Examples:
  salescope task add -c "Acme Corp" -d 2026-03-02 -T meeting -a "Kickoff call"
  salescope task add -c "Acme Corp" -n "Kim" -T first_contact --channel exhibition
  salescope task add -c "Acme Corp" -p "Edge PoC" -T trial --product "NPU-X" --start 2026-03-10`,
	RunE: runTaskAdd,
}

var taskAddParams store.RecordParams

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskLsCmd)

	f := taskAddCmd.Flags()
	f.StringVarP(&taskAddParams.CompanyName, "company", "c", "", "Company name (required)")
	f.StringVarP(&taskAddParams.ContactName, "contact", "n", "", "Contact name")
	f.StringVarP(&taskAddParams.ProjectName, "project", "p", "", "Project name")
	f.StringVarP(&taskAddParams.ActionDate, "date", "d", "", "Action date YYYY-MM-DD (required)")
	f.StringVarP(&taskAddParams.TaskType, "type", "T", "", "Task type: meeting, contact, quote, trial, tech_inquiry, first_contact, delayed")
	f.StringVarP(&taskAddParams.Agenda, "agenda", "a", "", "What the entry is about")
	f.StringVar(&taskAddParams.ActionItem, "action-item", "", "Follow-up action")
	f.StringVar(&taskAddParams.DueDate, "due", "", "Follow-up due date YYYY-MM-DD")
	f.IntVar(&taskAddParams.Priority, "priority", domain.PriorityNormal, "Priority: 0 low, 1 normal, 2 high")
	f.StringVarP(&taskAddParams.Memo, "memo", "m", "", "Free-form memo")

	f.StringVar(&taskAddParams.ContactType, "contact-type", "", "first_contact: inbound or outbound")
	f.StringVar(&taskAddParams.Channel, "channel", "", "first_contact: email, call, exhibition, referral...")
	f.StringSliceVar(&taskAddParams.InterestedProducts, "interested", nil, "first_contact: products of interest (seeds a project)")

	f.StringVar(&taskAddParams.ProductName, "product", "", "trial/tech_inquiry: product name")
	f.StringVar(&taskAddParams.StartDate, "start", "", "trial: start date YYYY-MM-DD")
	f.StringVar(&taskAddParams.EndDate, "end", "", "trial: end date YYYY-MM-DD")

	f.StringVar(&taskAddParams.Application, "application", "", "tech_inquiry: customer application")
	f.StringVar(&taskAddParams.AIModel, "ai-model", "", "tech_inquiry: model under discussion")

	taskAddCmd.MarkFlagRequired("company")
	taskAddCmd.MarkFlagRequired("date")
	taskAddCmd.MarkFlagRequired("type")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
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
	result, err := s.Tasks.Record(user.UserID, taskAddParams)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded task %d for company %d\n", result.TaskID, result.CompanyID)
	if result.SatelliteSkipped {
		fmt.Fprintln(cmd.OutOrStdout(), "Note: type-specific detail record was skipped (see event log)")
	}
	return nil
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>...",
	Short: "Mark tasks as completed",
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
		for _, arg := range args {
			taskID, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", arg)
			}
			if err := s.Tasks.SetStatus(user.UserID, taskID, domain.TaskStatusDone); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed task %d\n", taskID)
		}
		return nil
	},
}

var taskRmHard bool

var taskRmCmd = &cobra.Command{
	Use:   "rm <task-id>...",
	Short: "Remove tasks (soft delete unless --hard)",
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
		for _, arg := range args {
			taskID, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", arg)
			}
			if err := s.DeleteEntity(user.UserID, domain.KindTask, taskID, taskRmHard); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed task %d\n", taskID)
		}
		return nil
	},
}

func init() {
	taskRmCmd.Flags().BoolVar(&taskRmHard, "hard", false, "Physically delete instead of soft delete")
}

var (
	taskLsCompany string
	taskLsOpen    bool
	taskLsFrom    string
	taskLsTo      string
)

var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		s := store.New(database)
		var tasks []*store.TaskRow
		switch {
		case taskLsCompany != "":
			tasks, err = s.TasksByCompanyName(taskLsCompany)
		case taskLsFrom != "" || taskLsTo != "":
			if taskLsFrom == "" || taskLsTo == "" {
				return fmt.Errorf("--from and --to must be given together")
			}
			tasks, err = s.TasksByDateRange(taskLsFrom, taskLsTo)
		default:
			tasks, err = s.IncompleteTasks()
			taskLsOpen = true
		}
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks found")
			return nil
		}
		printTaskTable(cmd, tasks)
		return nil
	},
}

func init() {
	taskLsCmd.Flags().StringVarP(&taskLsCompany, "company", "c", "", "List tasks for one company")
	taskLsCmd.Flags().BoolVar(&taskLsOpen, "open", false, "List open tasks only (default with no filter)")
	taskLsCmd.Flags().StringVar(&taskLsFrom, "from", "", "Range start YYYY-MM-DD")
	taskLsCmd.Flags().StringVar(&taskLsTo, "to", "", "Range end YYYY-MM-DD")
}
