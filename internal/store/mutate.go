package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"salescope/internal/domain"
	"salescope/internal/events"
)

// tableMeta describes a mutable entity table: its name, primary key, and the
// fixed set of updatable columns. Caller-supplied field names are checked
// against the allow-list before any SQL text is assembled.
type tableMeta struct {
	table   string
	pk      string
	columns map[string]bool
}

var entityMeta = map[domain.EntityKind]tableMeta{
	domain.KindCompany: {
		table: "companies", pk: "company_id",
		columns: allow("company_name", "employee_count", "revenue", "overview", "website", "nationality"),
	},
	domain.KindContact: {
		table: "contacts", pk: "contact_id",
		columns: allow("company_id", "contact_name", "department", "position", "email", "phone", "mobile_phone"),
	},
	domain.KindProject: {
		table: "projects", pk: "project_id",
		columns: allow("contact_id", "project_name", "description", "status", "start_date", "end_date",
			"application", "ai_model", "requirement", "memo"),
	},
	domain.KindProduct: {
		table: "products", pk: "product_id",
		columns: allow("product_name", "min_price", "max_price"),
	},
	domain.KindInvoice: {
		table: "invoices", pk: "invoice_id",
		columns: allow("contact_id", "issue_date", "due_date", "total_amount", "status"),
	},
	domain.KindTask: {
		table: "tasks", pk: "task_id",
		columns: allow("project_id", "contact_id", "invoice_id", "action_date", "agenda", "action_item",
			"due_date", "task_status", "task_type", "priority", "memo"),
	},
}

func allow(columns ...string) map[string]bool {
	m := make(map[string]bool, len(columns))
	for _, c := range columns {
		m[c] = true
	}
	return m
}

// validateFields checks a field map against the allow-list for kind. Enum
// columns get their vocabulary checked too, so a bad value fails before any
// statement is issued.
func validateFields(kind domain.EntityKind, fields map[string]interface{}) (tableMeta, error) {
	meta, ok := entityMeta[kind]
	if !ok {
		return tableMeta{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown entity kind %q", kind)}
	}
	if len(fields) == 0 {
		return tableMeta{}, &domain.ValidationError{Field: "fields", Reason: "field map must not be empty"}
	}

	for key, value := range fields {
		if !meta.columns[key] {
			return tableMeta{}, &domain.ValidationError{Field: key,
				Reason: fmt.Sprintf("not an updatable column of %s", meta.table)}
		}

		switch key {
		case "task_type":
			s, ok := value.(string)
			if !ok {
				return tableMeta{}, &domain.ValidationError{Field: key, Reason: "must be a string"}
			}
			if err := domain.ValidateTaskType(s); err != nil {
				return tableMeta{}, err
			}
		case "task_status":
			n, ok := asInt(value)
			if !ok {
				return tableMeta{}, &domain.ValidationError{Field: key, Reason: "must be an integer"}
			}
			if err := domain.ValidateTaskStatus(n); err != nil {
				return tableMeta{}, err
			}
		case "priority":
			n, ok := asInt(value)
			if !ok {
				return tableMeta{}, &domain.ValidationError{Field: key, Reason: "must be an integer"}
			}
			if err := domain.ValidatePriority(n); err != nil {
				return tableMeta{}, err
			}
		case "status":
			if kind == domain.KindInvoice {
				n, ok := asInt(value)
				if !ok {
					return tableMeta{}, &domain.ValidationError{Field: key, Reason: "must be an integer"}
				}
				if err := domain.ValidateInvoiceStatus(n); err != nil {
					return tableMeta{}, err
				}
			}
		}
	}

	return meta, nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// UpdateEntity applies a partial update to one entity row. Unknown columns
// are rejected; a missing or already soft-deleted target returns
// domain.NotFoundError.
func (s *Store) UpdateEntity(actorID int64, kind domain.EntityKind, id int64, fields map[string]interface{}) error {
	meta, err := validateFields(kind, fields)
	if err != nil {
		return err
	}

	return s.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		if err := applyUpdate(tx, meta, kind, id, fields); err != nil {
			return err
		}

		changes, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
		changesStr := string(changes)

		return ew.LogEvent(tx, &domain.Event{
			ActorID:      &actorID,
			ResourceType: string(kind),
			ResourceID:   &id,
			EventType:    string(kind) + ".updated",
			Payload:      &changesStr,
		})
	})
}

// UpdateEntityTx is UpdateEntity on a caller-owned transaction
func (s *Store) UpdateEntityTx(tx *sql.Tx, ew *events.Writer, actorID int64, kind domain.EntityKind, id int64, fields map[string]interface{}) error {
	meta, err := validateFields(kind, fields)
	if err != nil {
		return err
	}
	if err := applyUpdate(tx, meta, kind, id, fields); err != nil {
		return err
	}
	return ew.Log(tx, actorID, string(kind), id, string(kind)+".updated", fields)
}

// SoftDeleteTx is the soft-delete half of DeleteEntity on a caller-owned
// transaction
func (s *Store) SoftDeleteTx(tx *sql.Tx, ew *events.Writer, actorID int64, kind domain.EntityKind, id int64) error {
	meta, ok := entityMeta[kind]
	if !ok {
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown entity kind %q", kind)}
	}
	res, err := tx.Exec(fmt.Sprintf(
		"UPDATE %s SET is_deleted = 1, updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ','now') WHERE %s = ? AND is_deleted = 0",
		meta.table, meta.pk), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", meta.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return ew.Log(tx, actorID, string(kind), id, string(kind)+".deleted", nil)
}

// applyUpdate builds and executes the UPDATE statement for a validated field
// map on the caller's transaction. Column names come from the allow-list,
// never from the caller's raw keys; values always travel as placeholders.
func applyUpdate(tx *sql.Tx, meta tableMeta, kind domain.EntityKind, id int64, fields map[string]interface{}) error {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var setClauses []string
	var args []interface{}
	for _, key := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, fields[key])
	}
	setClauses = append(setClauses, "updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND is_deleted = 0",
		meta.table, strings.Join(setClauses, ", "), meta.pk)
	res, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", meta.table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// hardDependents lists the child tables that reference an entity's primary
// key without ON DELETE CASCADE. Hard deletion clears these first, in the
// same transaction, or the base DELETE trips the foreign key constraint.
var hardDependents = map[domain.EntityKind][]struct {
	table string
	fk    string
}{
	domain.KindTask: {
		{table: "first_contact_logs", fk: "task_id"},
		{table: "free_trials", fk: "task_id"},
		{table: "tech_inquiries", fk: "task_id"},
	},
	domain.KindInvoice: {
		{table: "invoice_items", fk: "invoice_id"},
	},
}

// DeleteEntity removes an entity row. Soft deletion flips is_deleted and is
// the default removal path; hard deletion physically removes the row, along
// with its satellite and line-item rows, and is reserved for explicit calls
// and merge absorption.
func (s *Store) DeleteEntity(actorID int64, kind domain.EntityKind, id int64, hard bool) error {
	meta, ok := entityMeta[kind]
	if !ok {
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown entity kind %q", kind)}
	}

	return s.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var res sql.Result
		var err error
		eventType := string(kind) + ".deleted"

		if hard {
			eventType = string(kind) + ".purged"
			for _, dep := range hardDependents[kind] {
				if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", dep.table, dep.fk), id); err != nil {
					return fmt.Errorf("failed to delete from %s: %w", dep.table, err)
				}
			}
			res, err = tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", meta.table, meta.pk), id)
		} else {
			res, err = tx.Exec(fmt.Sprintf(
				"UPDATE %s SET is_deleted = 1, updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ','now') WHERE %s = ? AND is_deleted = 0",
				meta.table, meta.pk), id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", meta.table, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return &domain.NotFoundError{Kind: kind, ID: id}
		}

		payload := `{"soft_delete":true}`
		if hard {
			payload = `{"hard_delete":true}`
		}
		return ew.LogEvent(tx, &domain.Event{
			ActorID:      &actorID,
			ResourceType: string(kind),
			ResourceID:   &id,
			EventType:    eventType,
			Payload:      &payload,
		})
	})
}

// RestoreEntity clears the is_deleted flag on a soft-deleted row.
func (s *Store) RestoreEntity(actorID int64, kind domain.EntityKind, id int64) error {
	meta, ok := entityMeta[kind]
	if !ok {
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown entity kind %q", kind)}
	}

	return s.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(fmt.Sprintf(
			"UPDATE %s SET is_deleted = 0, updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ','now') WHERE %s = ? AND is_deleted = 1",
			meta.table, meta.pk), id)
		if err != nil {
			return fmt.Errorf("failed to restore %s: %w", meta.table, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return &domain.NotFoundError{Kind: kind, ID: id}
		}

		return ew.LogEvent(tx, &domain.Event{
			ActorID:      &actorID,
			ResourceType: string(kind),
			ResourceID:   &id,
			EventType:    string(kind) + ".restored",
		})
	})
}

// UpdatableColumns returns the allow-listed columns for an entity kind,
// sorted, for use by the reconciler and CLI help text.
func UpdatableColumns(kind domain.EntityKind) []string {
	meta, ok := entityMeta[kind]
	if !ok {
		return nil
	}
	columns := make([]string, 0, len(meta.columns))
	for c := range meta.columns {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}
