package store

import (
	"database/sql"
	"fmt"
	"strings"

	"salescope/internal/domain"
	"salescope/internal/events"
	"salescope/internal/resolve"
)

// ProjectStore handles project operations
type ProjectStore struct {
	store *Store
}

// Create inserts a project under a company. The company is fixed at creation;
// only a merge moves a project between companies.
func (p *ProjectStore) Create(actorID, companyID int64, name string, fields map[string]interface{}) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &domain.ValidationError{Field: "project_name", Reason: "is required"}
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["project_name"] = name
	meta, err := validateFields(domain.KindProject, fields)
	if err != nil {
		return 0, err
	}
	fields["company_id"] = companyID

	var id int64
	err = p.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var existing int64
		err := tx.QueryRow(
			"SELECT project_id FROM projects WHERE company_id = ? AND project_name = ? AND is_deleted = 0",
			companyID, name,
		).Scan(&existing)
		if err == nil {
			return &domain.ConflictError{Kind: domain.KindProject, Key: name}
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing project: %w", err)
		}

		id, err = insertRow(tx, meta.table, fields)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return ew.Log(tx, actorID, "project", id, "project.created", map[string]interface{}{
			"project_name": name,
			"company_id":   companyID,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns one project by id
func (p *ProjectStore) Get(projectID int64) (*domain.Project, error) {
	row := p.store.db.QueryRow(`
		SELECT project_id, company_id, contact_id, project_name, description, status,
		       start_date, end_date, application, ai_model, requirement, memo,
		       created_at, updated_at, is_deleted
		FROM projects WHERE project_id = ?
	`, projectID)

	var project domain.Project
	err := row.Scan(&project.ProjectID, &project.CompanyID, &project.ContactID,
		&project.ProjectName, &project.Description, &project.Status,
		&project.StartDate, &project.EndDate, &project.Application, &project.AIModel,
		&project.Requirement, &project.Memo,
		&project.CreatedAt, &project.UpdatedAt, &project.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindProject, ID: projectID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", projectID, err)
	}
	return &project, nil
}

// ListByCompany returns all live projects under a company ordered by name
func (p *ProjectStore) ListByCompany(companyID int64) ([]*domain.Project, error) {
	rows, err := p.store.db.Query(`
		SELECT project_id, company_id, contact_id, project_name, description, status,
		       start_date, end_date, application, ai_model, requirement, memo,
		       created_at, updated_at, is_deleted
		FROM projects WHERE company_id = ? AND is_deleted = 0 ORDER BY project_name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(&project.ProjectID, &project.CompanyID, &project.ContactID,
			&project.ProjectName, &project.Description, &project.Status,
			&project.StartDate, &project.EndDate, &project.Application, &project.AIModel,
			&project.Requirement, &project.Memo,
			&project.CreatedAt, &project.UpdatedAt, &project.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

// AddParticipant links a contact into a project with a role label. Adding a
// contact who is already a participant is a conflict.
func (p *ProjectStore) AddParticipant(actorID, projectID, contactID int64, role string) error {
	return p.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		_, err := tx.Exec(
			"INSERT INTO project_participants (project_id, contact_id, role) VALUES (?, ?, ?)",
			projectID, contactID, nullIfEmpty(role))
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.ConflictError{Kind: domain.KindContact,
					Key: fmt.Sprintf("participant %d in project %d", contactID, projectID)}
			}
			return fmt.Errorf("failed to add participant: %w", err)
		}
		return ew.Log(tx, actorID, "project", projectID, "project.participant_added", map[string]interface{}{
			"contact_id": contactID,
			"role":       role,
		})
	})
}

// RemoveParticipant unlinks a contact from a project
func (p *ProjectStore) RemoveParticipant(actorID, projectID, contactID int64) error {
	return p.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(
			"DELETE FROM project_participants WHERE project_id = ? AND contact_id = ?",
			projectID, contactID)
		if err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &domain.NotFoundError{Kind: domain.KindContact, ID: contactID}
		}
		return ew.Log(tx, actorID, "project", projectID, "project.participant_removed", map[string]interface{}{
			"contact_id": contactID,
		})
	})
}

// LinkProduct marks a product as in scope for a project. Linking twice is a
// no-op rather than an error; scope is a set.
func (p *ProjectStore) LinkProduct(actorID, projectID int64, productName string) error {
	return p.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		productID, err := resolve.Product(tx, productName)
		if err != nil {
			return err
		}
		if productID == nil {
			return &domain.ValidationError{Field: "product_name",
				Reason: fmt.Sprintf("unknown product %q", productName)}
		}
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO project_products (project_id, product_id) VALUES (?, ?)",
			projectID, *productID); err != nil {
			return fmt.Errorf("failed to link product: %w", err)
		}
		return ew.Log(tx, actorID, "project", projectID, "project.product_linked", map[string]interface{}{
			"product_id": *productID,
		})
	})
}
