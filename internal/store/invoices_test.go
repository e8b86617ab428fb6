package store

import (
	"math"
	"testing"

	"salescope/internal/domain"
	"salescope/internal/testutil"
)

func TestCreateWithItems_ComputesDiscountedTotals(t *testing.T) {
	database, userID := setupTestDB(t)
	addProduct(t, database, "NPU-X")
	addProduct(t, database, "Support Plan")
	s := New(database)

	companyID, err := s.Companies.Create(userID, "Acme Corp", nil)
	testutil.AssertNoError(t, err)
	projectID, err := s.Projects.Create(userID, companyID, "Edge PoC", nil)
	testutil.AssertNoError(t, err)

	invoiceID, err := s.Invoices.CreateWithItems(userID, projectID, companyID, nil,
		"2026-04-01", "2026-05-01", []InvoiceItemParams{
			{ProductName: "NPU-X", Quantity: 10, UnitPrice: 1200},
			{ProductName: "Support Plan", Quantity: 1, UnitPrice: 5000, DiscountRate: 10},
		})
	testutil.AssertNoError(t, err)

	invoice, err := s.Invoices.Get(invoiceID)
	testutil.AssertNoError(t, err)
	// 10*1200 + 5000*0.9 = 16500
	if math.Abs(*invoice.TotalAmount-16500) > 1e-9 {
		t.Fatalf("expected total 16500, got %v", *invoice.TotalAmount)
	}
	testutil.AssertEqual(t, domain.InvoiceStatusDraft, invoice.Status)

	items, err := s.Invoices.Items(invoiceID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 2, len(items))
	if math.Abs(items[1].Subtotal-4500) > 1e-9 {
		t.Fatalf("expected discounted subtotal 4500, got %v", items[1].Subtotal)
	}
}

func TestCreateWithItems_UnknownProductRollsBack(t *testing.T) {
	database, userID := setupTestDB(t)
	addProduct(t, database, "NPU-X")
	s := New(database)

	companyID, err := s.Companies.Create(userID, "Acme Corp", nil)
	testutil.AssertNoError(t, err)
	projectID, err := s.Projects.Create(userID, companyID, "Edge PoC", nil)
	testutil.AssertNoError(t, err)

	_, err = s.Invoices.CreateWithItems(userID, projectID, companyID, nil,
		"2026-04-01", "", []InvoiceItemParams{
			{ProductName: "NPU-X", Quantity: 1, UnitPrice: 1200},
			{ProductName: "No Such Product", Quantity: 1, UnitPrice: 99},
		})
	testutil.AssertError(t, err)

	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM invoices"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM invoice_items"))
}

func TestInvoiceSetStatus(t *testing.T) {
	database, userID := setupTestDB(t)
	addProduct(t, database, "NPU-X")
	s := New(database)

	companyID, err := s.Companies.Create(userID, "Acme Corp", nil)
	testutil.AssertNoError(t, err)
	projectID, err := s.Projects.Create(userID, companyID, "Edge PoC", nil)
	testutil.AssertNoError(t, err)
	invoiceID, err := s.Invoices.CreateWithItems(userID, projectID, companyID, nil,
		"2026-04-01", "", []InvoiceItemParams{{ProductName: "NPU-X", Quantity: 1, UnitPrice: 100}})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.Invoices.SetStatus(userID, invoiceID, domain.InvoiceStatusIssued))
	testutil.AssertError(t, s.Invoices.SetStatus(userID, invoiceID, 42))

	invoice, err := s.Invoices.Get(invoiceID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, domain.InvoiceStatusIssued, invoice.Status)
}

func TestAddParticipant_DuplicateConflicts(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	companyID, err := s.Companies.Create(userID, "Acme Corp", nil)
	testutil.AssertNoError(t, err)
	projectID, err := s.Projects.Create(userID, companyID, "Edge PoC", nil)
	testutil.AssertNoError(t, err)
	contactID, err := s.Contacts.Create(userID, companyID, "Kim", nil)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.Projects.AddParticipant(userID, projectID, contactID, "technical"))

	err = s.Projects.AddParticipant(userID, projectID, contactID, "purchasing")
	testutil.AssertError(t, err)
	if _, ok := err.(*domain.ConflictError); !ok {
		t.Fatalf("expected ConflictError, got %T", err)
	}
}
