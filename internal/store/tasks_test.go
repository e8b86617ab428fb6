package store

import (
	"database/sql"
	"errors"
	"testing"

	"salescope/internal/db"
	"salescope/internal/domain"
	"salescope/internal/events"
	"salescope/internal/testutil"
)

func setupTestDB(t *testing.T) (*db.DB, int64) {
	t.Helper()
	database := testutil.TempDB(t)
	userID := testutil.TempUser(t, database, "tester", 1)
	return database, userID
}

func addProduct(t *testing.T, database *db.DB, name string) int64 {
	t.Helper()
	res, err := database.Exec("INSERT INTO products (product_name) VALUES (?)", name)
	testutil.AssertNoError(t, err)
	id, _ := res.LastInsertId()
	return id
}

func TestRecord_CreatesEntitiesOnTheFly(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ContactName: "Kim",
		ProjectName: "Edge PoC",
		ActionDate:  "2026-03-02",
		TaskType:    "meeting",
		Agenda:      "Kickoff call",
		Priority:    domain.PriorityNormal,
	})
	testutil.AssertNoError(t, err)

	if result.ContactID == nil || result.ProjectID == nil {
		t.Fatal("expected contact and project to be resolved")
	}
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM projects"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM event_log WHERE event_type = 'task.created'"))

	// Recording again under the same names must not duplicate entities.
	_, err = s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ContactName: "Kim",
		ActionDate:  "2026-03-09",
		TaskType:    "contact",
		Priority:    domain.PriorityNormal,
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
	testutil.AssertEqual(t, 2, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
}

func TestRecord_ValidationLeavesNothingBehind(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	_, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ActionDate:  "03/02/2026",
		TaskType:    "meeting",
	})
	testutil.AssertError(t, err)
	if _, ok := err.(*domain.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	_, err = s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ActionDate:  "2026-03-02",
		TaskType:    "brainstorm",
	})
	testutil.AssertError(t, err)

	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM event_log"))
}

func TestRecordTx_RollbackDiscardsResolvedEntities(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	// A failure after resolution has inserted fresh rows must take those
	// rows down with the transaction.
	boom := errors.New("post-record failure")
	err := s.WithTx(func(tx *sql.Tx, ew *events.Writer) error {
		result, err := s.Tasks.RecordTx(tx, ew, userID, RecordParams{
			CompanyName: "Acme Corp",
			ContactName: "Kim",
			ActionDate:  "2026-03-02",
			TaskType:    "meeting",
		})
		testutil.AssertNoError(t, err)
		if result.CompanyID == 0 {
			t.Fatal("expected a freshly resolved company")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM event_log"))
}

func TestRecord_FirstContactSatellite(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ContactName: "Kim",
		ActionDate:  "2026-03-02",
		TaskType:    "first_contact",
		ContactType: "inbound",
		Channel:     "exhibition",
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, false, result.SatelliteSkipped)

	var contactDate string
	err = database.QueryRow(
		"SELECT contact_date FROM first_contact_logs WHERE task_id = ?", result.TaskID,
	).Scan(&contactDate)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "2026-03-02", contactDate)
}

func TestRecord_FirstContactSeedsProject(t *testing.T) {
	database, userID := setupTestDB(t)
	addProduct(t, database, "NPU-X")
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName:        "Acme Corp",
		ContactName:        "Kim",
		ActionDate:         "2026-03-02",
		TaskType:           "first_contact",
		InterestedProducts: []string{"NPU-X", "No Such Product"},
	})
	testutil.AssertNoError(t, err)

	if result.ProjectID == nil {
		t.Fatal("expected an auto-seeded project")
	}
	var name string
	err = database.QueryRow(
		"SELECT project_name FROM projects WHERE project_id = ?", *result.ProjectID,
	).Scan(&name)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Acme Corp - initial inquiry", name)

	// Only the known product gets linked; the typo is skipped silently.
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM project_products WHERE project_id = ?", *result.ProjectID))
}

func TestRecord_TrialSatellite(t *testing.T) {
	database, userID := setupTestDB(t)
	addProduct(t, database, "NPU-X")
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ProjectName: "Edge PoC",
		ActionDate:  "2026-03-10",
		TaskType:    "trial",
		ProductName: "NPU-X",
		StartDate:   "2026-03-10",
		EndDate:     "2026-04-10",
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, false, result.SatelliteSkipped)
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM free_trials WHERE task_id = ?", result.TaskID))
}

func TestRecord_TrialSkippedWithoutProduct(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ProjectName: "Edge PoC",
		ActionDate:  "2026-03-10",
		TaskType:    "trial",
		ProductName: "No Such Product",
	})
	testutil.AssertNoError(t, err)

	// Base task commits, missing detail record is an event, not a failure.
	testutil.AssertEqual(t, true, result.SatelliteSkipped)
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM free_trials"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM event_log WHERE event_type = 'task.satellite_skipped'"))
}

func TestRecord_TechInquiryKeepsNullProduct(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ActionDate:  "2026-03-10",
		TaskType:    "tech_inquiry",
		Application: "smart camera",
		AIModel:     "yolo-v8",
	})
	testutil.AssertNoError(t, err)

	var productID *int64
	err = database.QueryRow(
		"SELECT product_id FROM tech_inquiries WHERE task_id = ?", result.TaskID,
	).Scan(&productID)
	testutil.AssertNoError(t, err)
	if productID != nil {
		t.Fatal("expected NULL product for unnamed product")
	}
}

func TestSetStatus(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	result, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp",
		ActionDate:  "2026-03-02",
		TaskType:    "meeting",
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.Tasks.SetStatus(userID, result.TaskID, domain.TaskStatusDone))

	task, err := s.Tasks.Get(result.TaskID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, domain.TaskStatusDone, task.TaskStatus)

	testutil.AssertError(t, s.Tasks.SetStatus(userID, result.TaskID, 7))
}

func TestBatchUpdate_AtomicAcrossTasks(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	first, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting",
	})
	testutil.AssertNoError(t, err)
	second, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-03", TaskType: "contact",
	})
	testutil.AssertNoError(t, err)

	err = s.Tasks.BatchUpdate(userID, map[int64]map[string]interface{}{
		first.TaskID:  {"agenda": "updated"},
		second.TaskID: {"nonsense_column": 1},
	})
	testutil.AssertError(t, err)

	// Nothing from the batch may have landed.
	task, err := s.Tasks.Get(first.TaskID)
	testutil.AssertNoError(t, err)
	if task.Agenda != nil {
		t.Fatal("failed batch must not apply partial updates")
	}
}
