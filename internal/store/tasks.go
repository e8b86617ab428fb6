package store

import (
	"database/sql"
	"fmt"
	"strings"

	"salescope/internal/domain"
	"salescope/internal/events"
	"salescope/internal/resolve"
)

// TaskStore handles task operations
type TaskStore struct {
	store *Store
}

// RecordParams carries everything one activity entry may name. Only
// CompanyName, ActionDate and TaskType are mandatory; entity names resolve to
// rows (creating them when missing), and the type-specific fields feed the
// satellite record for that type.
type RecordParams struct {
	CompanyName string
	ContactName string
	ProjectName string

	ActionDate string // YYYY-MM-DD
	TaskType   string
	Agenda     string
	ActionItem string
	DueDate    string
	Priority   int
	Memo       string

	// first_contact
	ContactType        string
	Channel            string
	InterestedProducts []string

	// trial
	ProductName string
	StartDate   string
	EndDate     string

	// tech_inquiry
	Application string
	AIModel     string
}

// RecordResult reports what one Record call touched: the new task row plus
// the resolved (possibly freshly created) entity ids.
type RecordResult struct {
	TaskID    int64
	CompanyID int64
	ContactID *int64
	ProjectID *int64

	// SatelliteSkipped is set when a type-specific record could not be
	// written (unknown product, missing project) but the base task still
	// committed.
	SatelliteSkipped bool
}

func (p *RecordParams) validate() error {
	if strings.TrimSpace(p.CompanyName) == "" {
		return &domain.ValidationError{Field: "company_name", Reason: "is required"}
	}
	if err := domain.ValidateDate("action_date", p.ActionDate); err != nil {
		return err
	}
	if err := domain.ValidateTaskType(p.TaskType); err != nil {
		return err
	}
	if err := domain.ValidatePriority(p.Priority); err != nil {
		return err
	}
	if p.DueDate != "" {
		if err := domain.ValidateDate("due_date", p.DueDate); err != nil {
			return err
		}
	}
	if p.StartDate != "" {
		if err := domain.ValidateDate("start_date", p.StartDate); err != nil {
			return err
		}
	}
	if p.EndDate != "" {
		if err := domain.ValidateDate("end_date", p.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// Record writes one activity entry and its satellite record in a single
// transaction. Named entities resolve get-or-create in dependency order
// (company, then contact and project under it), so recording against a brand
// new customer needs no prior setup. If anything fails the whole entry rolls
// back and the database is untouched.
func (t *TaskStore) Record(actorID int64, params RecordParams) (*RecordResult, error) {
	var result *RecordResult
	err := t.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var err error
		result, err = t.RecordTx(tx, ew, actorID, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordTx is Record on a caller-owned transaction, for callers that batch
// several entries into one commit.
func (t *TaskStore) RecordTx(tx *sql.Tx, ew *events.Writer, actorID int64, params RecordParams) (*RecordResult, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var result RecordResult
	err := func() error {
		companyID, err := resolve.Company(tx, params.CompanyName)
		if err != nil {
			return err
		}

		contactID, err := resolve.Contact(tx, companyID, params.ContactName)
		if err != nil {
			return err
		}

		projectID, err := resolve.Project(tx, companyID, params.ProjectName)
		if err != nil {
			return err
		}

		// A first contact naming interested products but no project gets
		// an auto-seeded exploratory project carrying those product links.
		if projectID == nil && params.TaskType == string(domain.TaskTypeFirstContact) && len(params.InterestedProducts) > 0 {
			projectID, err = seedInitialProject(tx, companyID, contactID, params.CompanyName, params.InterestedProducts)
			if err != nil {
				return err
			}
		}

		res, err := tx.Exec(`
			INSERT INTO tasks (project_id, company_id, contact_id, user_id, action_date,
			                   agenda, action_item, due_date, task_type, priority, memo)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, projectID, companyID, contactID, actorID, params.ActionDate,
			nullIfEmpty(params.Agenda), nullIfEmpty(params.ActionItem), nullIfEmpty(params.DueDate),
			params.TaskType, params.Priority, nullIfEmpty(params.Memo))
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		taskID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		skipped, err := writeSatellite(tx, ew, actorID, taskID, companyID, contactID, projectID, params)
		if err != nil {
			return err
		}

		result = RecordResult{
			TaskID:           taskID,
			CompanyID:        companyID,
			ContactID:        contactID,
			ProjectID:        projectID,
			SatelliteSkipped: skipped,
		}

		return ew.Log(tx, actorID, "task", taskID, "task.created", map[string]interface{}{
			"task_type":  params.TaskType,
			"company_id": companyID,
		})
	}()
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// seedInitialProject creates the exploratory project for a first contact and
// links the interested products to it. Unknown product names are skipped;
// the catalog is curated and a typo must not invent a product.
func seedInitialProject(tx *sql.Tx, companyID int64, contactID *int64, companyName string, productNames []string) (*int64, error) {
	name := strings.TrimSpace(companyName) + " - initial inquiry"
	projectID, err := resolve.Project(tx, companyID, name)
	if err != nil {
		return nil, err
	}
	if contactID != nil {
		if _, err := tx.Exec(
			"UPDATE projects SET contact_id = ? WHERE project_id = ? AND contact_id IS NULL",
			*contactID, *projectID); err != nil {
			return nil, fmt.Errorf("failed to pin project contact: %w", err)
		}
	}

	for _, productName := range productNames {
		productID, err := resolve.Product(tx, productName)
		if err != nil {
			return nil, err
		}
		if productID == nil {
			continue
		}
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO project_products (project_id, product_id) VALUES (?, ?)",
			*projectID, *productID); err != nil {
			return nil, fmt.Errorf("failed to link product to project: %w", err)
		}
	}

	return projectID, nil
}

// writeSatellite dispatches on task type and inserts the type-specific
// record. A satellite that cannot be written for data reasons (unknown
// product, trial without a project) is skipped with an event rather than
// failing the base task.
func writeSatellite(tx *sql.Tx, ew *events.Writer, actorID, taskID, companyID int64, contactID, projectID *int64, params RecordParams) (bool, error) {
	switch domain.TaskType(params.TaskType) {
	case domain.TaskTypeFirstContact:
		_, err := tx.Exec(`
			INSERT INTO first_contact_logs (task_id, company_id, contact_id, project_id, contact_type, channel, contact_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, taskID, companyID, contactID, projectID,
			nullIfEmpty(params.ContactType), nullIfEmpty(params.Channel), params.ActionDate)
		if err != nil {
			return false, fmt.Errorf("failed to create first contact log: %w", err)
		}
		return false, nil

	case domain.TaskTypeTrial:
		productID, err := resolve.Product(tx, params.ProductName)
		if err != nil {
			return false, err
		}
		if productID == nil || projectID == nil {
			reason := "unknown product"
			if projectID == nil {
				reason = "no project"
			}
			err := ew.Log(tx, actorID, "task", taskID, "task.satellite_skipped", map[string]interface{}{
				"task_type": params.TaskType,
				"reason":    reason,
			})
			return true, err
		}
		_, err = tx.Exec(`
			INSERT INTO free_trials (task_id, project_id, product_id, start_date, end_date)
			VALUES (?, ?, ?, ?, ?)
		`, taskID, *projectID, *productID, nullIfEmpty(params.StartDate), nullIfEmpty(params.EndDate))
		if err != nil {
			return false, fmt.Errorf("failed to create free trial: %w", err)
		}
		return false, nil

	case domain.TaskTypeTechInquiry:
		productID, err := resolve.Product(tx, params.ProductName)
		if err != nil {
			return false, err
		}
		_, err = tx.Exec(`
			INSERT INTO tech_inquiries (task_id, project_id, product_id, application, ai_model)
			VALUES (?, ?, ?, ?, ?)
		`, taskID, projectID, productID, nullIfEmpty(params.Application), nullIfEmpty(params.AIModel))
		if err != nil {
			return false, fmt.Errorf("failed to create tech inquiry: %w", err)
		}
		if productID == nil && strings.TrimSpace(params.ProductName) != "" {
			err := ew.Log(tx, actorID, "task", taskID, "task.satellite_skipped", map[string]interface{}{
				"task_type": params.TaskType,
				"reason":    "unknown product",
				"product":   params.ProductName,
			})
			return true, err
		}
		return false, nil
	}

	return false, nil
}

// SetStatus flips a task's completion flag
func (t *TaskStore) SetStatus(actorID, taskID int64, status int) error {
	if err := domain.ValidateTaskStatus(status); err != nil {
		return err
	}
	return t.store.UpdateEntity(actorID, domain.KindTask, taskID, map[string]interface{}{
		"task_status": status,
	})
}

// Get returns one task row by id, deleted or not
func (t *TaskStore) Get(taskID int64) (*domain.Task, error) {
	row := t.store.db.QueryRow(`
		SELECT task_id, project_id, company_id, contact_id, user_id, invoice_id,
		       action_date, agenda, action_item, due_date, task_status, task_type,
		       priority, memo, created_at, updated_at, is_deleted
		FROM tasks WHERE task_id = ?
	`, taskID)

	var task domain.Task
	err := row.Scan(&task.TaskID, &task.ProjectID, &task.CompanyID, &task.ContactID,
		&task.UserID, &task.InvoiceID, &task.ActionDate, &task.Agenda, &task.ActionItem,
		&task.DueDate, &task.TaskStatus, &task.TaskType, &task.Priority, &task.Memo,
		&task.CreatedAt, &task.UpdatedAt, &task.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindTask, ID: taskID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return &task, nil
}

// BatchUpdate applies per-task field maps in one transaction. All updates are
// validated before any is applied; any failure rolls back the whole batch.
func (t *TaskStore) BatchUpdate(actorID int64, updates map[int64]map[string]interface{}) error {
	metas := make(map[int64]tableMeta, len(updates))
	for taskID, fields := range updates {
		meta, err := validateFields(domain.KindTask, fields)
		if err != nil {
			return fmt.Errorf("task %d: %w", taskID, err)
		}
		metas[taskID] = meta
	}

	return t.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		for taskID, fields := range updates {
			if err := applyUpdate(tx, metas[taskID], domain.KindTask, taskID, fields); err != nil {
				return err
			}
			if err := ew.Log(tx, actorID, "task", taskID, "task.updated", fields); err != nil {
				return err
			}
		}
		return nil
	})
}
