package reconcile

import (
	"errors"
	"strings"
	"testing"

	"salescope/internal/db"
	"salescope/internal/snapshot"
	"salescope/internal/store"
	"salescope/internal/testutil"
)

func setupTestDB(t *testing.T) (*db.DB, *store.Store, int64) {
	t.Helper()
	database := testutil.TempDB(t)
	userID := testutil.TempUser(t, database, "tester", 1)
	return database, store.New(database), userID
}

func TestApply_AddedMatchesDirectRecord(t *testing.T) {
	database, s, userID := setupTestDB(t)

	diff := snapshot.Compare(&snapshot.Document{}, &snapshot.Document{
		Tasks: []snapshot.TaskEntry{{
			Company:    "Acme Corp",
			Contact:    "Kim",
			ActionDate: "2026-03-02",
			TaskType:   "meeting",
			Agenda:     "kickoff",
			Priority:   1,
		}},
	})

	result, err := Apply(s, userID, diff)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, result.Added)

	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database, "SELECT COUNT(*) FROM contacts"))
}

func TestApply_DeletedIsSoftDelete(t *testing.T) {
	database, s, userID := setupTestDB(t)

	recorded, err := s.Tasks.Record(userID, store.RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting",
	})
	testutil.AssertNoError(t, err)

	tasks, err := s.TasksByCompanyName("Acme Corp")
	testutil.AssertNoError(t, err)
	original := snapshot.FromRows(tasks)

	diff := snapshot.Compare(original, &snapshot.Document{})
	result, err := Apply(s, userID, diff)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, result.Deleted)

	// Row survives physically but is flagged.
	testutil.AssertEqual(t, 1, testutil.CountRows(t, database,
		"SELECT COUNT(*) FROM tasks WHERE task_id = ? AND is_deleted = 1", recorded.TaskID))
}

func TestApply_ModifiedUpdatesFields(t *testing.T) {
	_, s, userID := setupTestDB(t)

	_, err := s.Tasks.Record(userID, store.RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting", Agenda: "kickoff",
	})
	testutil.AssertNoError(t, err)

	tasks, err := s.TasksByCompanyName("Acme Corp")
	testutil.AssertNoError(t, err)
	original := snapshot.FromRows(tasks)

	edited := &snapshot.Document{Tasks: make([]snapshot.TaskEntry, 1)}
	edited.Tasks[0] = original.Tasks[0]
	edited.Tasks[0].Agenda = "kickoff rescheduled"
	edited.Tasks[0].Status = 1

	diff := snapshot.Compare(original, edited)
	result, err := Apply(s, userID, diff)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, result.Updated)

	task, err := s.Tasks.Get(original.Tasks[0].ID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "kickoff rescheduled", *task.Agenda)
	testutil.AssertEqual(t, 1, task.TaskStatus)
}

func TestValidate_ReportsEveryBadRow(t *testing.T) {
	_, s, _ := setupTestDB(t)

	diff := snapshot.Compare(&snapshot.Document{}, &snapshot.Document{
		Tasks: []snapshot.TaskEntry{
			{Company: "", ActionDate: "2026-03-02", TaskType: "meeting"},
			{Company: "Acme Corp", ActionDate: "bad-date", TaskType: "meeting"},
			{Company: "Acme Corp", ActionDate: "2026-03-02", TaskType: "brainstorm"},
		},
	})

	report := Validate(s, diff)
	if report == nil {
		t.Fatal("expected a validation report")
	}
	testutil.AssertEqual(t, 3, len(report.Errors))
	if !strings.Contains(report.Error(), "action_date") {
		t.Fatalf("report should name the bad field, got: %s", report.Error())
	}
}

func TestApply_OneBadRowBlocksAll(t *testing.T) {
	database, s, userID := setupTestDB(t)

	diff := snapshot.Compare(&snapshot.Document{}, &snapshot.Document{
		Tasks: []snapshot.TaskEntry{
			{Company: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting"},
			{Company: "Globex", ActionDate: "not-a-date", TaskType: "meeting"},
		},
	})

	_, err := Apply(s, userID, diff)
	testutil.AssertError(t, err)

	// The valid row must not land when its sibling is invalid.
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
}

func TestApply_MissingTaskRefusedUnderTransaction(t *testing.T) {
	database, s, userID := setupTestDB(t)

	// Existence checks run inside the apply transaction, so a stale ID is
	// still reported as a validation failure and nothing is written.
	diff := &snapshot.Diff{
		Added: []snapshot.TaskEntry{
			{Company: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting"},
		},
		Deleted: []snapshot.TaskEntry{
			{ID: 42, Company: "Globex", ActionDate: "2026-03-02", TaskType: "meeting"},
		},
	}

	_, err := Apply(s, userID, diff)
	testutil.AssertError(t, err)
	var report *ValidationReport
	if !errors.As(err, &report) {
		t.Fatalf("expected a validation report, got %T", err)
	}
	testutil.AssertEqual(t, int64(42), report.Errors[0].TaskID)

	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM tasks"))
	testutil.AssertEqual(t, 0, testutil.CountRows(t, database, "SELECT COUNT(*) FROM companies"))
}

func TestRenderDiff(t *testing.T) {
	original := &snapshot.Document{Tasks: []snapshot.TaskEntry{{
		ID: 1, Company: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting", Agenda: "kickoff",
	}}}
	edited := &snapshot.Document{Tasks: []snapshot.TaskEntry{{
		ID: 1, Company: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting", Agenda: "kickoff rescheduled",
	}}}

	rendered, err := RenderDiff(original, edited)
	testutil.AssertNoError(t, err)
	if !strings.Contains(rendered, "-") || !strings.Contains(rendered, "kickoff rescheduled") {
		t.Fatalf("expected a unified diff mentioning the change, got:\n%s", rendered)
	}
}
