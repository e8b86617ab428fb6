// Package snapshot renders a slice of the activity log as an editable YAML
// document and diffs an edited document against the original. Names, not ids,
// identify companies, contacts and projects in the document; the reconciler
// resolves them back when applying.
package snapshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"salescope/internal/store"
)

// TaskEntry is one task in snapshot form. A zero ID marks a row the editor
// added; everything else must carry the ID it was exported with.
type TaskEntry struct {
	ID      int64  `yaml:"id,omitempty"`
	Company string `yaml:"company"`
	Contact string `yaml:"contact,omitempty"`
	Project string `yaml:"project,omitempty"`

	ActionDate string `yaml:"action_date"`
	TaskType   string `yaml:"task_type"`
	Agenda     string `yaml:"agenda,omitempty"`
	ActionItem string `yaml:"action_item,omitempty"`
	DueDate    string `yaml:"due_date,omitempty"`
	Status     int    `yaml:"status"`
	Priority   int    `yaml:"priority"`
	Memo       string `yaml:"memo,omitempty"`
}

// Document is a full snapshot file
type Document struct {
	Tasks []TaskEntry `yaml:"tasks"`
}

// FromRows converts joined task rows to snapshot entries
func FromRows(rows []*store.TaskRow) *Document {
	doc := &Document{Tasks: make([]TaskEntry, 0, len(rows))}
	for _, r := range rows {
		doc.Tasks = append(doc.Tasks, TaskEntry{
			ID:         r.TaskID,
			Company:    r.CompanyName,
			Contact:    deref(r.ContactName),
			Project:    deref(r.ProjectName),
			ActionDate: r.ActionDate,
			TaskType:   string(r.TaskType),
			Agenda:     deref(r.Agenda),
			ActionItem: deref(r.ActionItem),
			DueDate:    deref(r.DueDate),
			Status:     r.TaskStatus,
			Priority:   r.Priority,
			Memo:       deref(r.Memo),
		})
	}
	return doc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Marshal renders a document as YAML
func (d *Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Load parses a snapshot file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses snapshot YAML
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &doc, nil
}

// Write renders the document to a file
func (d *Document) Write(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// Diff is the change set between an original snapshot and an edited one
type Diff struct {
	Added    []TaskEntry // entries with no ID
	Modified []TaskEntry // entries whose fields changed
	Deleted  []TaskEntry // original entries absent from the edit
}

// Empty reports whether the diff contains no changes
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Deleted) == 0
}

// Compare computes the change set from original to edited. Entries pair by
// ID; an edited entry without an ID is an addition, an original ID missing
// from the edit is a deletion. Empty and absent optional fields compare
// equal, so round-tripping an untouched file yields an empty diff.
func Compare(original, edited *Document) *Diff {
	originalByID := make(map[int64]TaskEntry, len(original.Tasks))
	for _, entry := range original.Tasks {
		originalByID[entry.ID] = entry
	}

	diff := &Diff{}
	seen := make(map[int64]bool, len(edited.Tasks))
	for _, entry := range edited.Tasks {
		if entry.ID == 0 {
			diff.Added = append(diff.Added, entry)
			continue
		}
		seen[entry.ID] = true
		if before, ok := originalByID[entry.ID]; ok {
			if before != entry {
				diff.Modified = append(diff.Modified, entry)
			}
		} else {
			// An ID the original never exported; treat as an addition
			// with the ID cleared so the recorder assigns a fresh one.
			entry.ID = 0
			diff.Added = append(diff.Added, entry)
		}
	}

	for _, entry := range original.Tasks {
		if !seen[entry.ID] {
			diff.Deleted = append(diff.Deleted, entry)
		}
	}

	return diff
}
