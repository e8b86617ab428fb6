package store

import (
	"database/sql"
	"fmt"

	"salescope/internal/domain"
	"salescope/internal/events"
	"salescope/internal/resolve"
)

// InvoiceStore handles invoices and their line items
type InvoiceStore struct {
	store *Store
}

// InvoiceItemParams is one line of a new invoice. The product is named, not
// numbered; an unknown product name fails the whole invoice.
type InvoiceItemParams struct {
	ProductName  string
	Quantity     int64
	UnitPrice    float64
	DiscountRate float64 // percent, 0-100
}

// CreateWithItems writes an invoice and its line items in one transaction.
// Each line's subtotal is the discounted unit price times quantity, and the
// invoice total is the sum of subtotals.
func (i *InvoiceStore) CreateWithItems(actorID, projectID, companyID int64, contactID *int64,
	issueDate, dueDate string, items []InvoiceItemParams) (int64, error) {

	if err := domain.ValidateDate("issue_date", issueDate); err != nil {
		return 0, err
	}
	if dueDate != "" {
		if err := domain.ValidateDate("due_date", dueDate); err != nil {
			return 0, err
		}
	}
	if len(items) == 0 {
		return 0, &domain.ValidationError{Field: "items", Reason: "invoice needs at least one line item"}
	}
	for idx, item := range items {
		if item.Quantity <= 0 {
			return 0, &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", idx),
				Reason: "must be positive"}
		}
		if item.DiscountRate < 0 || item.DiscountRate > 100 {
			return 0, &domain.ValidationError{Field: fmt.Sprintf("items[%d].discount_rate", idx),
				Reason: "must be between 0 and 100"}
		}
	}

	var invoiceID int64
	err := i.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`
			INSERT INTO invoices (project_id, company_id, contact_id, user_id, issue_date, due_date, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, projectID, companyID, contactID, actorID, issueDate, nullIfEmpty(dueDate), domain.InvoiceStatusDraft)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		invoiceID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		var total float64
		for _, item := range items {
			productID, err := resolve.Product(tx, item.ProductName)
			if err != nil {
				return err
			}
			if productID == nil {
				return &domain.ValidationError{Field: "product_name",
					Reason: fmt.Sprintf("unknown product %q", item.ProductName)}
			}

			subtotal := item.UnitPrice * (1 - item.DiscountRate/100) * float64(item.Quantity)
			total += subtotal

			if _, err := tx.Exec(`
				INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price_at_sale, discount_rate, subtotal)
				VALUES (?, ?, ?, ?, ?, ?)
			`, invoiceID, *productID, item.Quantity, item.UnitPrice, item.DiscountRate, subtotal); err != nil {
				return fmt.Errorf("failed to create invoice item: %w", err)
			}
		}

		if _, err := tx.Exec(
			"UPDATE invoices SET total_amount = ? WHERE invoice_id = ?",
			total, invoiceID); err != nil {
			return fmt.Errorf("failed to set invoice total: %w", err)
		}

		return ew.Log(tx, actorID, "invoice", invoiceID, "invoice.created", map[string]interface{}{
			"total_amount": total,
			"items":        len(items),
		})
	})
	if err != nil {
		return 0, err
	}
	return invoiceID, nil
}

// SetStatus moves an invoice through its lifecycle
func (i *InvoiceStore) SetStatus(actorID, invoiceID int64, status int) error {
	if err := domain.ValidateInvoiceStatus(status); err != nil {
		return err
	}
	return i.store.UpdateEntity(actorID, domain.KindInvoice, invoiceID, map[string]interface{}{
		"status": status,
	})
}

// Get returns one invoice by id
func (i *InvoiceStore) Get(invoiceID int64) (*domain.Invoice, error) {
	row := i.store.db.QueryRow(`
		SELECT invoice_id, project_id, company_id, contact_id, user_id, issue_date,
		       due_date, total_amount, status, created_at, updated_at, is_deleted
		FROM invoices WHERE invoice_id = ?
	`, invoiceID)

	var invoice domain.Invoice
	err := row.Scan(&invoice.InvoiceID, &invoice.ProjectID, &invoice.CompanyID,
		&invoice.ContactID, &invoice.UserID, &invoice.IssueDate, &invoice.DueDate,
		&invoice.TotalAmount, &invoice.Status,
		&invoice.CreatedAt, &invoice.UpdatedAt, &invoice.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindInvoice, ID: invoiceID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice %d: %w", invoiceID, err)
	}
	return &invoice, nil
}

// Items returns the live line items of an invoice
func (i *InvoiceStore) Items(invoiceID int64) ([]*domain.InvoiceItem, error) {
	rows, err := i.store.db.Query(`
		SELECT item_id, invoice_id, product_id, quantity, unit_price_at_sale, discount_rate, subtotal
		FROM invoice_items WHERE invoice_id = ? AND is_deleted = 0 ORDER BY item_id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	var items []*domain.InvoiceItem
	for rows.Next() {
		var item domain.InvoiceItem
		if err := rows.Scan(&item.ItemID, &item.InvoiceID, &item.ProductID,
			&item.Quantity, &item.UnitPriceAtSale, &item.DiscountRate, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
