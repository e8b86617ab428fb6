// Package events writes an append-only operation log so mutating operations
// are observable without console output.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"salescope/internal/domain"
)

// Writer handles writing events to the event log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogEvent writes an event to the event log
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (actor_id, resource_type, resource_id, event_type, payload)
		VALUES (?, ?, ?, ?, ?)
	`

	executor := w.getExecutor(tx)
	_, err := executor.Exec(query, event.ActorID, event.ResourceType, event.ResourceID, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Log is a convenience wrapper that marshals the payload map to JSON
func (w *Writer) Log(tx *sql.Tx, actorID int64, resourceType string, resourceID int64, eventType string, payload map[string]interface{}) error {
	event := &domain.Event{
		ActorID:      &actorID,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		EventType:    eventType,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
		s := string(data)
		event.Payload = &s
	}

	return w.LogEvent(tx, event)
}

// getExecutor returns the appropriate executor (tx or db)
func (w *Writer) getExecutor(tx *sql.Tx) interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}
