package store

import (
	"fmt"

	"salescope/internal/domain"
)

// CompanySummary is one row of the company overview listing
type CompanySummary struct {
	CompanyID    int64
	CompanyName  string
	Nationality  *string
	ContactCount int64
	TaskCount    int64
	LastAction   *string // most recent task action_date
}

// TaskRow is a task joined with the display names of its related entities
type TaskRow struct {
	domain.Task
	CompanyName string
	ContactName *string
	ProjectName *string
	Username    string
}

const taskRowSelect = `
	SELECT t.task_id, t.project_id, t.company_id, t.contact_id, t.user_id, t.invoice_id,
	       t.action_date, t.agenda, t.action_item, t.due_date, t.task_status, t.task_type,
	       t.priority, t.memo, t.created_at, t.updated_at, t.is_deleted,
	       c.company_name, ct.contact_name, p.project_name, u.username
	FROM tasks t
	JOIN companies c ON c.company_id = t.company_id
	JOIN users u ON u.user_id = t.user_id
	LEFT JOIN contacts ct ON ct.contact_id = t.contact_id
	LEFT JOIN projects p ON p.project_id = t.project_id
`

func (s *Store) scanTaskRows(query string, args ...interface{}) ([]*TaskRow, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*TaskRow
	for rows.Next() {
		var t TaskRow
		if err := rows.Scan(&t.TaskID, &t.ProjectID, &t.CompanyID, &t.ContactID,
			&t.UserID, &t.InvoiceID, &t.ActionDate, &t.Agenda, &t.ActionItem,
			&t.DueDate, &t.TaskStatus, &t.TaskType, &t.Priority, &t.Memo,
			&t.CreatedAt, &t.UpdatedAt, &t.IsDeleted,
			&t.CompanyName, &t.ContactName, &t.ProjectName, &t.Username); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// TasksByCompanyName returns the live activity history for a company,
// newest first
func (s *Store) TasksByCompanyName(companyName string) ([]*TaskRow, error) {
	return s.scanTaskRows(taskRowSelect+`
		WHERE c.company_name = ? AND t.is_deleted = 0
		ORDER BY t.action_date DESC, t.task_id DESC
	`, companyName)
}

// IncompleteTasks returns all open live tasks, most urgent first
func (s *Store) IncompleteTasks() ([]*TaskRow, error) {
	return s.scanTaskRows(taskRowSelect+`
		WHERE t.task_status = 0 AND t.is_deleted = 0
		ORDER BY t.priority DESC, t.due_date IS NULL, t.due_date, t.task_id
	`)
}

// TasksByDateRange returns live tasks whose action date falls in [from, to]
func (s *Store) TasksByDateRange(from, to string) ([]*TaskRow, error) {
	if err := domain.ValidateDate("from", from); err != nil {
		return nil, err
	}
	if err := domain.ValidateDate("to", to); err != nil {
		return nil, err
	}
	return s.scanTaskRows(taskRowSelect+`
		WHERE t.action_date BETWEEN ? AND ? AND t.is_deleted = 0
		ORDER BY t.action_date, t.task_id
	`, from, to)
}

// CompanySummaries returns the company overview listing with per-company
// contact and task counts (live rows only)
func (s *Store) CompanySummaries() ([]*CompanySummary, error) {
	rows, err := s.db.Query(`
		SELECT c.company_id, c.company_name, c.nationality,
		       (SELECT COUNT(*) FROM contacts ct WHERE ct.company_id = c.company_id AND ct.is_deleted = 0),
		       (SELECT COUNT(*) FROM tasks t WHERE t.company_id = c.company_id AND t.is_deleted = 0),
		       (SELECT MAX(t.action_date) FROM tasks t WHERE t.company_id = c.company_id AND t.is_deleted = 0)
		FROM companies c
		WHERE c.is_deleted = 0
		ORDER BY c.company_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query company summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*CompanySummary
	for rows.Next() {
		var cs CompanySummary
		if err := rows.Scan(&cs.CompanyID, &cs.CompanyName, &cs.Nationality,
			&cs.ContactCount, &cs.TaskCount, &cs.LastAction); err != nil {
			return nil, fmt.Errorf("failed to scan company summary: %w", err)
		}
		summaries = append(summaries, &cs)
	}
	return summaries, rows.Err()
}

// Events returns the operation log for one resource, oldest first
func (s *Store) Events(resourceType string, resourceID int64) ([]*domain.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, actor_id, resource_type, resource_id, event_type, payload
		FROM event_log
		WHERE resource_type = ? AND resource_id = ?
		ORDER BY id
	`, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActorID, &e.ResourceType,
			&e.ResourceID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
