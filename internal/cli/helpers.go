package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salescope/internal/auth"
	"salescope/internal/config"
	"salescope/internal/db"
	"salescope/internal/domain"
	"salescope/internal/store"
)

// openDB loads config, applies the --db override, opens the database and
// refuses to run against a schema with pending migrations.
func openDB(cmd *cobra.Command) (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RequiresMigrationError(); err != nil {
		database.Close()
		return nil, nil, err
	}

	return cfg, database, nil
}

// resolveCurrentUser resolves the acting user from --as flag or config.
// The account must be approved.
func resolveCurrentUser(database *db.DB, cfg *config.Config, cmd *cobra.Command) (*domain.User, error) {
	username := cmd.Flag("as").Value.String()
	if username == "" {
		username = cfg.DefaultUser
	}
	if username == "" {
		return nil, fmt.Errorf("no user configured (set SALESCOPE_USER or use --as flag)")
	}

	svc := auth.New(database)
	user, err := svc.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %q: %w", username, err)
	}
	if user.AuthLevel < auth.LevelMember {
		return nil, fmt.Errorf("user %q is pending approval", username)
	}
	return user, nil
}

// parseFieldArgs turns key=value arguments into a field map. Integer-looking
// values become ints so enum and count columns bind with the right type.
func parseFieldArgs(args []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		if n, err := strconv.Atoi(value); err == nil {
			fields[key] = n
		} else if value == "" {
			fields[key] = nil
		} else {
			fields[key] = value
		}
	}
	return fields, nil
}

func printTaskTable(cmd *cobra.Command, tasks []*store.TaskRow) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCOMPANY\tCONTACT\tPROJECT\tSTATUS\tAGENDA")
	for _, t := range tasks {
		status := "open"
		if t.TaskStatus == domain.TaskStatusDone {
			status = "done"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.TaskID, t.ActionDate, t.TaskType, t.CompanyName,
			orDash(t.ContactName), orDash(t.ProjectName), status, orDash(t.Agenda))
	}
	w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
