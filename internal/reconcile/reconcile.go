// Package reconcile applies an edited snapshot back to the database. It
// validates every row first and reports all problems at once; only a fully
// valid change set is applied, in a single transaction.
package reconcile

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"salescope/internal/domain"
	"salescope/internal/events"
	"salescope/internal/snapshot"
	"salescope/internal/store"
)

// RowError ties a validation failure to the snapshot entry that caused it
type RowError struct {
	TaskID int64 // 0 for added rows
	Index  int   // position within the edited document
	Err    error
}

func (e *RowError) Error() string {
	if e.TaskID != 0 {
		return fmt.Sprintf("task %d: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("new entry #%d: %v", e.Index+1, e.Err)
}

// ValidationReport aggregates every row error found in one pass
type ValidationReport struct {
	Errors []*RowError
}

func (r *ValidationReport) Error() string {
	lines := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		lines = append(lines, e.Error())
	}
	return fmt.Sprintf("%d invalid row(s):\n%s", len(r.Errors), strings.Join(lines, "\n"))
}

// Result reports what an Apply changed
type Result struct {
	Added   int
	Updated int
	Deleted int
}

func validateEntry(entry snapshot.TaskEntry) error {
	if strings.TrimSpace(entry.Company) == "" {
		return &domain.ValidationError{Field: "company", Reason: "is required"}
	}
	if err := domain.ValidateDate("action_date", entry.ActionDate); err != nil {
		return err
	}
	if err := domain.ValidateTaskType(entry.TaskType); err != nil {
		return err
	}
	if err := domain.ValidateTaskStatus(entry.Status); err != nil {
		return err
	}
	if err := domain.ValidatePriority(entry.Priority); err != nil {
		return err
	}
	if entry.DueDate != "" {
		if err := domain.ValidateDate("due_date", entry.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// rowQuerier is satisfied by both the bare connection and an open
// transaction, so validation can run standalone for dry runs and again
// under the apply transaction.
type rowQuerier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Validate checks every changed row and returns all failures. Nothing is
// written; a non-nil report means Apply would refuse the whole set.
func Validate(s *store.Store, diff *snapshot.Diff) *ValidationReport {
	return validateAll(s.DB(), diff)
}

func validateAll(q rowQuerier, diff *snapshot.Diff) *ValidationReport {
	report := &ValidationReport{}

	for i, entry := range diff.Added {
		if err := validateEntry(entry); err != nil {
			report.Errors = append(report.Errors, &RowError{Index: i, Err: err})
		}
	}

	for i, entry := range diff.Modified {
		if err := validateEntry(entry); err != nil {
			report.Errors = append(report.Errors, &RowError{TaskID: entry.ID, Index: i, Err: err})
			continue
		}
		if err := taskExists(q, entry.ID); err != nil {
			report.Errors = append(report.Errors, &RowError{TaskID: entry.ID, Index: i, Err: err})
		}
	}

	for i, entry := range diff.Deleted {
		if err := taskExists(q, entry.ID); err != nil {
			report.Errors = append(report.Errors, &RowError{TaskID: entry.ID, Index: i, Err: err})
		}
	}

	if len(report.Errors) == 0 {
		return nil
	}
	return report
}

func taskExists(q rowQuerier, taskID int64) error {
	var n int
	err := q.QueryRow(
		"SELECT COUNT(*) FROM tasks WHERE task_id = ? AND is_deleted = 0", taskID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to check task %d: %w", taskID, err)
	}
	if n == 0 {
		return &domain.NotFoundError{Kind: domain.KindTask, ID: taskID}
	}
	return nil
}

// Apply validates the whole diff and then applies it in one transaction:
// removed rows are soft-deleted, modified rows updated, added rows recorded.
// Validation runs under the same transaction as the writes, so the existence
// checks and the apply see one consistent state. Any failure rolls back
// everything.
func Apply(s *store.Store, actorID int64, diff *snapshot.Diff) (*Result, error) {
	result := &Result{}
	err := s.WithTx(func(tx *sql.Tx, ew *events.Writer) error {
		if report := validateAll(tx, diff); report != nil {
			return report
		}

		for _, entry := range diff.Deleted {
			if err := s.SoftDeleteTx(tx, ew, actorID, domain.KindTask, entry.ID); err != nil {
				return fmt.Errorf("task %d: %w", entry.ID, err)
			}
			result.Deleted++
		}

		for _, entry := range diff.Modified {
			if err := applyModified(s, tx, ew, actorID, entry); err != nil {
				return fmt.Errorf("task %d: %w", entry.ID, err)
			}
			result.Updated++
		}

		tasks := s.Tasks
		for _, entry := range diff.Added {
			if _, err := tasks.RecordTx(tx, ew, actorID, store.RecordParams{
				CompanyName: entry.Company,
				ContactName: entry.Contact,
				ProjectName: entry.Project,
				ActionDate:  entry.ActionDate,
				TaskType:    entry.TaskType,
				Agenda:      entry.Agenda,
				ActionItem:  entry.ActionItem,
				DueDate:     entry.DueDate,
				Priority:    entry.Priority,
				Memo:        entry.Memo,
			}); err != nil {
				return err
			}
			result.Added++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyModified resolves the entry's entity names on the open transaction and
// rewrites the task row to match the snapshot.
func applyModified(s *store.Store, tx *sql.Tx, ew *events.Writer, actorID int64, entry snapshot.TaskEntry) error {
	companyID, contactID, projectID, err := store.ResolveEntryRefs(tx, entry.Company, entry.Contact, entry.Project)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(
		"UPDATE tasks SET company_id = ? WHERE task_id = ?", companyID, entry.ID); err != nil {
		return fmt.Errorf("failed to repoint task company: %w", err)
	}

	return s.UpdateEntityTx(tx, ew, actorID, domain.KindTask, entry.ID, map[string]interface{}{
		"contact_id":  ptrOrNil(contactID),
		"project_id":  ptrOrNil(projectID),
		"action_date": entry.ActionDate,
		"task_type":   entry.TaskType,
		"agenda":      emptyToNil(entry.Agenda),
		"action_item": emptyToNil(entry.ActionItem),
		"due_date":    emptyToNil(entry.DueDate),
		"task_status": entry.Status,
		"priority":    entry.Priority,
		"memo":        emptyToNil(entry.Memo),
	})
}

func ptrOrNil(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func emptyToNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// RenderDiff produces a unified diff of the original and edited snapshot
// YAML for dry-run display.
func RenderDiff(original, edited *snapshot.Document) (string, error) {
	before, err := original.Marshal()
	if err != nil {
		return "", err
	}
	after, err := edited.Marshal()
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "snapshot",
		ToFile:   "edited",
		Context:  3,
	})
}
