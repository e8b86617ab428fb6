// Package resolve provides get-or-create lookups keyed by natural identity.
// Every function runs on the caller's open transaction so a lookup-then-insert
// within one logical operation cannot race itself into duplicate rows.
package resolve

import (
	"database/sql"
	"fmt"
	"strings"
)

// Company looks up a live company by name, inserting a minimal row on miss.
// The name is mandatory; it is the natural key for deduplication.
func Company(tx *sql.Tx, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("company name is required")
	}

	var id int64
	err := tx.QueryRow(
		"SELECT company_id FROM companies WHERE company_name = ? AND is_deleted = 0",
		name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up company %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO companies (company_name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create company %q: %w", name, err)
	}
	return res.LastInsertId()
}

// Contact looks up a live contact by (company, name), inserting a minimal row
// on miss. An empty name short-circuits to nil without touching the database;
// a task may legitimately have no contact.
func Contact(tx *sql.Tx, companyID int64, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id int64
	err := tx.QueryRow(
		"SELECT contact_id FROM contacts WHERE company_id = ? AND contact_name = ? AND is_deleted = 0",
		companyID, name,
	).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up contact %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO contacts (company_id, contact_name) VALUES (?, ?)", companyID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Project looks up a live project by (company, name), inserting a minimal row
// on miss. An empty name short-circuits to nil without touching the database.
func Project(tx *sql.Tx, companyID int64, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id int64
	err := tx.QueryRow(
		"SELECT project_id FROM projects WHERE company_id = ? AND project_name = ? AND is_deleted = 0",
		companyID, name,
	).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up project %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO projects (company_id, project_name) VALUES (?, ?)", companyID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Product looks up a live product by name. Unlike the other resolvers it never
// creates: the product catalog is curated, so a miss returns nil and the
// caller decides whether that is fatal.
func Product(tx *sql.Tx, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id int64
	err := tx.QueryRow(
		"SELECT product_id FROM products WHERE product_name = ? AND is_deleted = 0",
		name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %q: %w", name, err)
	}
	return &id, nil
}
