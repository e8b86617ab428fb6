package resolve

import (
	"database/sql"
	"testing"

	"salescope/internal/db"
	"salescope/internal/testutil"
)

func inTx(t *testing.T, database *db.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := database.Begin()
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	defer tx.Rollback()
	fn(tx)
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func TestCompany_GetOrCreate(t *testing.T) {
	database := testutil.TempDB(t)

	var first, second int64
	inTx(t, database, func(tx *sql.Tx) {
		id, err := Company(tx, "Acme Corp")
		testutil.AssertNoError(t, err)
		first = id
	})
	inTx(t, database, func(tx *sql.Tx) {
		id, err := Company(tx, "  Acme Corp  ")
		testutil.AssertNoError(t, err)
		second = id
	})

	testutil.AssertEqual(t, first, second)
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
}

func TestCompany_EmptyNameRejected(t *testing.T) {
	database := testutil.TempDB(t)

	tx, err := database.Begin()
	testutil.AssertNoError(t, err)
	defer tx.Rollback()

	if _, err := Company(tx, "   "); err == nil {
		t.Fatal("expected error for blank company name")
	}
}

func TestCompany_SoftDeletedNameIsReusable(t *testing.T) {
	database := testutil.TempDB(t)

	var first int64
	inTx(t, database, func(tx *sql.Tx) {
		id, err := Company(tx, "Acme Corp")
		testutil.AssertNoError(t, err)
		first = id
	})

	_, err := database.Exec("UPDATE companies SET is_deleted = 1 WHERE company_id = ?", first)
	testutil.AssertNoError(t, err)

	inTx(t, database, func(tx *sql.Tx) {
		id, err := Company(tx, "Acme Corp")
		testutil.AssertNoError(t, err)
		if id == first {
			t.Fatalf("expected a fresh row, got the soft-deleted one (%d)", id)
		}
	})
}

func TestContact_ScopedByCompany(t *testing.T) {
	database := testutil.TempDB(t)

	// The same person name at two companies must yield two rows.
	inTx(t, database, func(tx *sql.Tx) {
		acme, err := Company(tx, "Acme Corp")
		testutil.AssertNoError(t, err)
		globex, err := Company(tx, "Globex")
		testutil.AssertNoError(t, err)

		kimAtAcme, err := Contact(tx, acme, "Kim")
		testutil.AssertNoError(t, err)
		kimAtGlobex, err := Contact(tx, globex, "Kim")
		testutil.AssertNoError(t, err)

		if *kimAtAcme == *kimAtGlobex {
			t.Fatal("contacts at different companies should be distinct rows")
		}

		again, err := Contact(tx, acme, "Kim")
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, *kimAtAcme, *again)
	})

	testutil.AssertEqual(t, 2, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
}

func TestContact_EmptyNameIsNil(t *testing.T) {
	database := testutil.TempDB(t)

	inTx(t, database, func(tx *sql.Tx) {
		acme, err := Company(tx, "Acme Corp")
		testutil.AssertNoError(t, err)

		id, err := Contact(tx, acme, "")
		testutil.AssertNoError(t, err)
		if id != nil {
			t.Fatalf("expected nil contact for empty name, got %d", *id)
		}
	})

	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
}

func TestProject_GetOrCreate(t *testing.T) {
	database := testutil.TempDB(t)

	inTx(t, database, func(tx *sql.Tx) {
		acme, err := Company(tx, "Acme Corp")
		testutil.AssertNoError(t, err)

		first, err := Project(tx, acme, "Edge PoC")
		testutil.AssertNoError(t, err)
		second, err := Project(tx, acme, "Edge PoC")
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, *first, *second)
	})
}

func TestProduct_LookupOnly(t *testing.T) {
	database := testutil.TempDB(t)

	_, err := database.Exec("INSERT INTO products (product_name) VALUES ('NPU-X')")
	testutil.AssertNoError(t, err)

	inTx(t, database, func(tx *sql.Tx) {
		id, err := Product(tx, "NPU-X")
		testutil.AssertNoError(t, err)
		if id == nil {
			t.Fatal("expected to find NPU-X")
		}

		miss, err := Product(tx, "No Such Product")
		testutil.AssertNoError(t, err)
		if miss != nil {
			t.Fatal("product lookup must never create rows")
		}
	})

	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM products"))
}
