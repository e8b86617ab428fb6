package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"salescope/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Authenticate and print a session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		password, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(password, "\r\n")

		svc := auth.New(database)
		token, user, err := svc.Authenticate(args[0], password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (level %d)\n", user.Username, user.AuthLevel)
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the acting user",
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

		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, level %d)\n", user.Username, user.UserID, user.AuthLevel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
}
