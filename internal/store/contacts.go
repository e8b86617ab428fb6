package store

import (
	"database/sql"
	"fmt"
	"strings"

	"salescope/internal/domain"
	"salescope/internal/events"
)

// ContactStore handles contact operations
type ContactStore struct {
	store *Store
}

// Create inserts a contact under a company. A duplicate live email is a
// conflict; names are not unique since two companies can each have a Kim.
func (c *ContactStore) Create(actorID, companyID int64, name string, fields map[string]interface{}) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &domain.ValidationError{Field: "contact_name", Reason: "is required"}
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["contact_name"] = name
	fields["company_id"] = companyID
	meta, err := validateFields(domain.KindContact, fields)
	if err != nil {
		return 0, err
	}

	var id int64
	err = c.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		id, err = insertRow(tx, meta.table, fields)
		if err != nil {
			if isUniqueViolation(err) {
				key := name
				if email, ok := fields["email"].(string); ok {
					key = email
				}
				return &domain.ConflictError{Kind: domain.KindContact, Key: key}
			}
			return fmt.Errorf("failed to create contact: %w", err)
		}
		return ew.Log(tx, actorID, "contact", id, "contact.created", map[string]interface{}{
			"contact_name": name,
			"company_id":   companyID,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns one contact by id
func (c *ContactStore) Get(contactID int64) (*domain.Contact, error) {
	row := c.store.db.QueryRow(`
		SELECT contact_id, company_id, contact_name, department, position,
		       email, phone, mobile_phone, created_at, updated_at, is_deleted
		FROM contacts WHERE contact_id = ?
	`, contactID)

	var contact domain.Contact
	err := row.Scan(&contact.ContactID, &contact.CompanyID, &contact.ContactName,
		&contact.Department, &contact.Position, &contact.Email, &contact.Phone,
		&contact.MobilePhone, &contact.CreatedAt, &contact.UpdatedAt, &contact.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindContact, ID: contactID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %d: %w", contactID, err)
	}
	return &contact, nil
}

// ListByCompany returns all live contacts at a company ordered by name
func (c *ContactStore) ListByCompany(companyID int64) ([]*domain.Contact, error) {
	rows, err := c.store.db.Query(`
		SELECT contact_id, company_id, contact_name, department, position,
		       email, phone, mobile_phone, created_at, updated_at, is_deleted
		FROM contacts WHERE company_id = ? AND is_deleted = 0 ORDER BY contact_name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(&contact.ContactID, &contact.CompanyID, &contact.ContactName,
			&contact.Department, &contact.Position, &contact.Email, &contact.Phone,
			&contact.MobilePhone, &contact.CreatedAt, &contact.UpdatedAt, &contact.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, &contact)
	}
	return contacts, rows.Err()
}
