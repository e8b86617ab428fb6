package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"salescope/internal/domain"
	"salescope/internal/events"
)

// CompanyStore handles company operations
type CompanyStore struct {
	store *Store
}

// isUniqueViolation reports whether err is a SQLite unique-constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Create inserts a company with the given name and optional fields. Unlike
// the get-or-create path, a duplicate live name is a conflict here: direct
// creation means the caller believes the company is new.
func (c *CompanyStore) Create(actorID int64, name string, fields map[string]interface{}) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &domain.ValidationError{Field: "company_name", Reason: "is required"}
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["company_name"] = name
	meta, err := validateFields(domain.KindCompany, fields)
	if err != nil {
		return 0, err
	}

	var id int64
	err = c.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		id, err = insertRow(tx, meta.table, fields)
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.ConflictError{Kind: domain.KindCompany, Key: name}
			}
			return fmt.Errorf("failed to create company: %w", err)
		}
		return ew.Log(tx, actorID, "company", id, "company.created", map[string]interface{}{
			"company_name": name,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns one company by id
func (c *CompanyStore) Get(companyID int64) (*domain.Company, error) {
	row := c.store.db.QueryRow(`
		SELECT company_id, company_name, employee_count, revenue, overview,
		       website, nationality, created_at, updated_at, is_deleted
		FROM companies WHERE company_id = ?
	`, companyID)

	var company domain.Company
	err := row.Scan(&company.CompanyID, &company.CompanyName, &company.EmployeeCount,
		&company.Revenue, &company.Overview, &company.Website, &company.Nationality,
		&company.CreatedAt, &company.UpdatedAt, &company.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindCompany, ID: companyID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %d: %w", companyID, err)
	}
	return &company, nil
}

// GetByName returns the live company with the given name
func (c *CompanyStore) GetByName(name string) (*domain.Company, error) {
	var id int64
	err := c.store.db.QueryRow(
		"SELECT company_id FROM companies WHERE company_name = ? AND is_deleted = 0",
		strings.TrimSpace(name),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindCompany}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up company %q: %w", name, err)
	}
	return c.Get(id)
}

// List returns all live companies ordered by name
func (c *CompanyStore) List() ([]*domain.Company, error) {
	rows, err := c.store.db.Query(`
		SELECT company_id, company_name, employee_count, revenue, overview,
		       website, nationality, created_at, updated_at, is_deleted
		FROM companies WHERE is_deleted = 0 ORDER BY company_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(&company.CompanyID, &company.CompanyName, &company.EmployeeCount,
			&company.Revenue, &company.Overview, &company.Website, &company.Nationality,
			&company.CreatedAt, &company.UpdatedAt, &company.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, &company)
	}
	return companies, rows.Err()
}

// insertRow builds an INSERT from an allow-listed field map. Keys have been
// validated against the table's column set before this is called.
func insertRow(tx *sql.Tx, table string, fields map[string]interface{}) (int64, error) {
	var columns []string
	var placeholders []string
	var args []interface{}
	for key, value := range fields {
		columns = append(columns, key)
		placeholders = append(placeholders, "?")
		args = append(args, value)
	}

	res, err := tx.Exec(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
