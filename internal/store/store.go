// Package store provides the persistence layer. Every public operation owns
// exactly one transaction for its entire duration: open, perform all
// statements, commit on success, roll back on any error.
package store

import (
	"database/sql"
	"fmt"

	"salescope/internal/db"
	"salescope/internal/events"
	"salescope/internal/resolve"
)

// Store is the root store that provides access to entity-specific stores.
type Store struct {
	db *db.DB

	Tasks     *TaskStore
	Companies *CompanyStore
	Contacts  *ContactStore
	Projects  *ProjectStore
	Products  *ProductStore
	Invoices  *InvoiceStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Tasks = &TaskStore{store: s}
	s.Companies = &CompanyStore{store: s}
	s.Contacts = &ContactStore{store: s}
	s.Projects = &ProjectStore{store: s}
	s.Products = &ProductStore{store: s}
	s.Invoices = &InvoiceStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// withTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return err
	}

	return tx.Commit()
}

// WithTx exposes the transaction wrapper to callers outside the package that
// need several store operations under one commit (the reconciler).
func (s *Store) WithTx(fn func(tx *sql.Tx, ew *events.Writer) error) error {
	return s.withTx(fn)
}

// ResolveEntryRefs resolves a (company, contact, project) name triple on an
// open transaction with get-or-create semantics, in dependency order.
func ResolveEntryRefs(tx *sql.Tx, companyName, contactName, projectName string) (int64, *int64, *int64, error) {
	companyID, err := resolve.Company(tx, companyName)
	if err != nil {
		return 0, nil, nil, err
	}
	contactID, err := resolve.Contact(tx, companyID, contactName)
	if err != nil {
		return 0, nil, nil, err
	}
	projectID, err := resolve.Project(tx, companyID, projectName)
	if err != nil {
		return 0, nil, nil, err
	}
	return companyID, contactID, projectID, nil
}

// nullIfEmpty maps an empty string to SQL NULL
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
