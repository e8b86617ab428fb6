// Package export writes activity and company listings to CSV and XLSX files
// under a target directory, one timestamped file per run.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"salescope/internal/store"
)

var taskHeader = []string{
	"task_id", "action_date", "company", "contact", "project",
	"task_type", "status", "priority", "agenda", "action_item", "due_date", "memo", "user",
}

func taskRecord(t *store.TaskRow) []string {
	status := "open"
	if t.TaskStatus == 1 {
		status = "done"
	}
	return []string{
		strconv.FormatInt(t.TaskID, 10),
		t.ActionDate,
		t.CompanyName,
		str(t.ContactName),
		str(t.ProjectName),
		string(t.TaskType),
		status,
		strconv.Itoa(t.Priority),
		str(t.Agenda),
		str(t.ActionItem),
		str(t.DueDate),
		str(t.Memo),
		t.Username,
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// outPath builds dir/<stem>_<timestamp>.<ext>, creating dir if needed
func outPath(dir, stem, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", stem, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(dir, name), nil
}

// TasksCSV writes task rows as CSV and returns the file path
func TasksCSV(dir string, tasks []*store.TaskRow) (string, error) {
	path, err := outPath(dir, "tasks", "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(taskHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, t := range tasks {
		if err := w.Write(taskRecord(t)); err != nil {
			return "", fmt.Errorf("failed to write task %d: %w", t.TaskID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return path, nil
}

// TasksXLSX writes task rows as a single-sheet workbook and returns the path
func TasksXLSX(dir string, tasks []*store.TaskRow) (string, error) {
	path, err := outPath(dir, "tasks", "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Tasks"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, taskHeader); err != nil {
		return "", err
	}
	for i, t := range tasks {
		if err := writeRow(f, sheet, i+2, taskRecord(t)); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// CompaniesCSV writes company summaries as CSV and returns the file path
func CompaniesCSV(dir string, summaries []*store.CompanySummary) (string, error) {
	path, err := outPath(dir, "companies", "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"company_id", "company_name", "nationality", "contacts", "tasks", "last_action"}); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range summaries {
		if err := w.Write([]string{
			strconv.FormatInt(c.CompanyID, 10),
			c.CompanyName,
			str(c.Nationality),
			strconv.FormatInt(c.ContactCount, 10),
			strconv.FormatInt(c.TaskCount, 10),
			str(c.LastAction),
		}); err != nil {
			return "", fmt.Errorf("failed to write company %d: %w", c.CompanyID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return path, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
