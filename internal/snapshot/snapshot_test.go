package snapshot

import (
	"testing"
)

func entry(id int64, agenda string) TaskEntry {
	return TaskEntry{
		ID:         id,
		Company:    "Acme Corp",
		ActionDate: "2026-03-02",
		TaskType:   "meeting",
		Agenda:     agenda,
		Priority:   1,
	}
}

func TestCompare_UntouchedRoundTripIsEmpty(t *testing.T) {
	doc := &Document{Tasks: []TaskEntry{entry(1, "kickoff"), entry(2, "follow-up")}}

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	diff := Compare(doc, parsed)
	if !diff.Empty() {
		t.Fatalf("round-trip of an untouched snapshot must be empty, got %+v", diff)
	}
}

func TestCompare_Added(t *testing.T) {
	original := &Document{Tasks: []TaskEntry{entry(1, "kickoff")}}
	edited := &Document{Tasks: []TaskEntry{entry(1, "kickoff"), entry(0, "new entry")}}

	diff := Compare(original, edited)
	if len(diff.Added) != 1 || len(diff.Modified) != 0 || len(diff.Deleted) != 0 {
		t.Fatalf("expected one addition, got %+v", diff)
	}
}

func TestCompare_Modified(t *testing.T) {
	original := &Document{Tasks: []TaskEntry{entry(1, "kickoff"), entry(2, "follow-up")}}
	edited := &Document{Tasks: []TaskEntry{entry(1, "kickoff rescheduled"), entry(2, "follow-up")}}

	diff := Compare(original, edited)
	if len(diff.Modified) != 1 {
		t.Fatalf("expected one modification, got %+v", diff)
	}
	if diff.Modified[0].ID != 1 {
		t.Fatalf("wrong entry flagged as modified: %+v", diff.Modified[0])
	}
}

func TestCompare_Deleted(t *testing.T) {
	original := &Document{Tasks: []TaskEntry{entry(1, "kickoff"), entry(2, "follow-up")}}
	edited := &Document{Tasks: []TaskEntry{entry(2, "follow-up")}}

	diff := Compare(original, edited)
	if len(diff.Deleted) != 1 || diff.Deleted[0].ID != 1 {
		t.Fatalf("expected entry 1 deleted, got %+v", diff)
	}
}

func TestCompare_UnknownIDBecomesAddition(t *testing.T) {
	original := &Document{Tasks: []TaskEntry{entry(1, "kickoff")}}
	edited := &Document{Tasks: []TaskEntry{entry(1, "kickoff"), entry(42, "typed an id by hand")}}

	diff := Compare(original, edited)
	if len(diff.Added) != 1 || diff.Added[0].ID != 0 {
		t.Fatalf("hand-typed id should become an addition with id cleared, got %+v", diff)
	}
}

func TestCompare_EmptyOriginal(t *testing.T) {
	original := &Document{}
	edited := &Document{Tasks: []TaskEntry{entry(0, "first ever")}}

	diff := Compare(original, edited)
	if len(diff.Added) != 1 || len(diff.Deleted) != 0 {
		t.Fatalf("expected single addition, got %+v", diff)
	}
}
