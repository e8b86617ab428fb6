package store

import (
	"testing"

	"salescope/internal/domain"
	"salescope/internal/testutil"
)

func TestTasksByCompanyName_JoinsNames(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	_, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ContactName: "Kim", ProjectName: "Edge PoC",
		ActionDate: "2026-03-02", TaskType: "meeting",
	})
	testutil.AssertNoError(t, err)
	_, err = s.Tasks.Record(userID, RecordParams{
		CompanyName: "Globex", ActionDate: "2026-03-03", TaskType: "contact",
	})
	testutil.AssertNoError(t, err)

	tasks, err := s.TasksByCompanyName("Acme Corp")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(tasks))
	testutil.AssertEqual(t, "Acme Corp", tasks[0].CompanyName)
	testutil.AssertEqual(t, "Kim", *tasks[0].ContactName)
	testutil.AssertEqual(t, "Edge PoC", *tasks[0].ProjectName)
	testutil.AssertEqual(t, "tester", tasks[0].Username)
}

func TestIncompleteTasks_ExcludesDoneAndDeleted(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	open, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-02", TaskType: "meeting",
	})
	testutil.AssertNoError(t, err)
	done, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-03", TaskType: "contact",
	})
	testutil.AssertNoError(t, err)
	removed, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ActionDate: "2026-03-04", TaskType: "contact",
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.Tasks.SetStatus(userID, done.TaskID, domain.TaskStatusDone))
	testutil.AssertNoError(t, s.DeleteEntity(userID, domain.KindTask, removed.TaskID, false))

	tasks, err := s.IncompleteTasks()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(tasks))
	testutil.AssertEqual(t, open.TaskID, tasks[0].TaskID)
}

func TestTasksByDateRange(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	for _, date := range []string{"2026-03-01", "2026-03-15", "2026-04-01"} {
		_, err := s.Tasks.Record(userID, RecordParams{
			CompanyName: "Acme Corp", ActionDate: date, TaskType: "contact",
		})
		testutil.AssertNoError(t, err)
	}

	tasks, err := s.TasksByDateRange("2026-03-01", "2026-03-31")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 2, len(tasks))

	_, err = s.TasksByDateRange("2026-03-01", "not-a-date")
	testutil.AssertError(t, err)
}

func TestCompanySummaries(t *testing.T) {
	database, userID := setupTestDB(t)
	s := New(database)

	_, err := s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ContactName: "Kim",
		ActionDate: "2026-03-02", TaskType: "meeting",
	})
	testutil.AssertNoError(t, err)
	_, err = s.Tasks.Record(userID, RecordParams{
		CompanyName: "Acme Corp", ContactName: "Lee",
		ActionDate: "2026-03-09", TaskType: "contact",
	})
	testutil.AssertNoError(t, err)

	summaries, err := s.CompanySummaries()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(summaries))
	testutil.AssertEqual(t, int64(2), summaries[0].ContactCount)
	testutil.AssertEqual(t, int64(2), summaries[0].TaskCount)
	testutil.AssertEqual(t, "2026-03-09", *summaries[0].LastAction)
}
