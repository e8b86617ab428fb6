package merge

import (
	"testing"

	"salescope/internal/db"
	"salescope/internal/domain"
	"salescope/internal/store"
	"salescope/internal/testutil"
)

func setupTestDB(t *testing.T) (*db.DB, *store.Store, int64) {
	t.Helper()
	database := testutil.TempDB(t)
	userID := testutil.TempUser(t, database, "tester", 1)
	return database, store.New(database), userID
}

func TestMerge_CompanyRepointsEverything(t *testing.T) {
	database, s, userID := setupTestDB(t)

	// Two spellings of the same customer, each with history.
	_, err := s.Tasks.Record(userID, store.RecordParams{
		CompanyName: "Acme Corp", ContactName: "Kim", ProjectName: "Edge PoC",
		ActionDate: "2026-03-02", TaskType: "meeting",
	})
	testutil.AssertNoError(t, err)
	_, err = s.Tasks.Record(userID, store.RecordParams{
		CompanyName: "Acme Corporation", ContactName: "Lee",
		ActionDate: "2026-03-05", TaskType: "contact",
	})
	testutil.AssertNoError(t, err)

	target, err := s.Companies.GetByName("Acme Corp")
	testutil.AssertNoError(t, err)
	source, err := s.Companies.GetByName("Acme Corporation")
	testutil.AssertNoError(t, err)

	repointed, err := Merge(database, userID, domain.KindCompany, source.CompanyID, target.CompanyID)
	testutil.AssertNoError(t, err)
	if repointed == 0 {
		t.Fatal("expected rows to be repointed")
	}

	// Source is physically gone, all history hangs off the target.
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
	testutil.AssertEqual(t, 2, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM tasks WHERE company_id = ?", target.CompanyID))
	testutil.AssertEqual(t, 2, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM contacts WHERE company_id = ?", target.CompanyID))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM event_log WHERE event_type = 'company.merged'"))
}

func TestMerge_ContactCollapsesDuplicateParticipation(t *testing.T) {
	database, s, userID := setupTestDB(t)

	companyID, err := s.Companies.Create(userID, "Acme Corp", nil)
	testutil.AssertNoError(t, err)
	projectID, err := s.Projects.Create(userID, companyID, "Edge PoC", nil)
	testutil.AssertNoError(t, err)

	// The same person entered twice, both on the project roster.
	keep, err := s.Contacts.Create(userID, companyID, "Kim Minsoo", nil)
	testutil.AssertNoError(t, err)
	dupe, err := s.Contacts.Create(userID, companyID, "Kim M.", nil)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Projects.AddParticipant(userID, projectID, keep, "technical"))
	testutil.AssertNoError(t, s.Projects.AddParticipant(userID, projectID, dupe, "technical"))

	_, err = Merge(database, userID, domain.KindContact, dupe, keep)
	testutil.AssertNoError(t, err)

	// The colliding roster row is gone, not duplicated onto the target.
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM project_participants WHERE project_id = ?", projectID))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
}

func TestMerge_ProjectMovesSatellites(t *testing.T) {
	database, s, userID := setupTestDB(t)

	_, err := database.Exec("INSERT INTO products (product_name) VALUES ('NPU-X')")
	testutil.AssertNoError(t, err)

	result, err := s.Tasks.Record(userID, store.RecordParams{
		CompanyName: "Acme Corp", ProjectName: "Edge PoC Old",
		ActionDate: "2026-03-10", TaskType: "trial", ProductName: "NPU-X",
	})
	testutil.AssertNoError(t, err)

	companyID := result.CompanyID
	targetID, err := s.Projects.Create(userID, companyID, "Edge PoC", nil)
	testutil.AssertNoError(t, err)

	_, err = Merge(database, userID, domain.KindProject, *result.ProjectID, targetID)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM free_trials WHERE project_id = ?", targetID))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM tasks WHERE project_id = ?", targetID))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM projects"))
}

func TestMerge_GuardRails(t *testing.T) {
	database, s, userID := setupTestDB(t)

	companyID, err := s.Companies.Create(userID, "Acme Corp", nil)
	testutil.AssertNoError(t, err)

	// Self merge is rejected.
	_, err = Merge(database, userID, domain.KindCompany, companyID, companyID)
	testutil.AssertError(t, err)

	// Missing source is rejected before anything moves.
	_, err = Merge(database, userID, domain.KindCompany, 999, companyID)
	testutil.AssertError(t, err)
	if _, ok := err.(*domain.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T", err)
	}

	// Tasks are activity rows, not master data.
	_, err = Merge(database, userID, domain.KindTask, 1, 2)
	testutil.AssertError(t, err)
}
