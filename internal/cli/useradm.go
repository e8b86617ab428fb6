package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salescope/internal/auth"
)

var userAdmCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

func init() {
	rootAdmCmd.AddCommand(userAdmCmd)
	userAdmCmd.AddCommand(userRegisterCmd)
	userAdmCmd.AddCommand(userApproveCmd)
	userAdmCmd.AddCommand(userLsCmd)
}

var (
	userRegisterPassword string
	userRegisterEmail    string
)

var userRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a new account (pending approval)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDBAdmin(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RequiresMigrationError(); err != nil {
			return err
		}

		svc := auth.New(database)
		userID, err := svc.Register(args[0], userRegisterPassword, userRegisterEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered user %d: %s (pending approval)\n", userID, args[0])
		return nil
	},
}

func init() {
	userRegisterCmd.Flags().StringVarP(&userRegisterPassword, "password", "P", "", "Password (required, min 8 chars)")
	userRegisterCmd.Flags().StringVarP(&userRegisterEmail, "email", "e", "", "Email address")
	userRegisterCmd.MarkFlagRequired("password")
}

var userApproveLevel int

var userApproveCmd = &cobra.Command{
	Use:   "approve <user-id>",
	Short: "Approve a pending account",
	Long: `Approve raises a pending account to an active level. The acting user
(--as) must hold admin level.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDBAdmin(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RequiresMigrationError(); err != nil {
			return err
		}

		approver, err := resolveCurrentUser(database, cfg, cmd)
		if err != nil {
			return err
		}

		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		svc := auth.New(database)
		if err := svc.Approve(approver.UserID, userID, userApproveLevel); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Approved user %d at level %d\n", userID, userApproveLevel)
		return nil
	},
}

func init() {
	userApproveCmd.Flags().IntVar(&userApproveLevel, "level", auth.LevelMember, "Auth level to grant (1 member, 2 manager, 4 admin)")
}

var userLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDBAdmin(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		rows, err := database.Query(`
			SELECT user_id, username, COALESCE(user_email, ''), auth_level
			FROM users WHERE is_deleted = 0 ORDER BY user_id
		`)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		defer rows.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tLEVEL")
		for rows.Next() {
			var id int64
			var username, email string
			var level int
			if err := rows.Scan(&id, &username, &email, &level); err != nil {
				return err
			}
			state := strconv.Itoa(level)
			if level == auth.LevelPending {
				state = "pending"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", id, username, email, state)
		}
		w.Flush()
		return rows.Err()
	},
}
