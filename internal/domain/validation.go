package domain

import (
	"fmt"
	"time"
)

// ValidateTaskType validates a task type against the fixed vocabulary
func ValidateTaskType(t string) error {
	switch TaskType(t) {
	case TaskTypeMeeting, TaskTypeContact, TaskTypeQuote, TaskTypeTrial,
		TaskTypeTechInquiry, TaskTypeFirstContact, TaskTypeDelayed:
		return nil
	default:
		return &ValidationError{Field: "task_type",
			Reason: "must be one of: meeting, contact, quote, trial, tech_inquiry, first_contact, delayed"}
	}
}

// ValidateTaskStatus validates a task status flag
func ValidateTaskStatus(status int) error {
	if status != TaskStatusOpen && status != TaskStatusDone {
		return &ValidationError{Field: "task_status", Reason: "must be 0 (open) or 1 (done)"}
	}
	return nil
}

// ValidatePriority validates a task priority
func ValidatePriority(priority int) error {
	if priority < PriorityLow || priority > PriorityHigh {
		return &ValidationError{Field: "priority", Reason: "must be 0 (low), 1 (normal) or 2 (high)"}
	}
	return nil
}

// ValidateInvoiceStatus validates an invoice status code
func ValidateInvoiceStatus(status int) error {
	if status < InvoiceStatusDraft || status > InvoiceStatusReturned {
		return &ValidationError{Field: "status", Reason: "must be between 0 (draft) and 5 (returned)"}
	}
	return nil
}

// ValidateDate validates an ISO calendar date (YYYY-MM-DD)
func ValidateDate(field, s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return &ValidationError{Field: field, Reason: "must be an ISO date (YYYY-MM-DD)"}
	}
	return nil
}

// ValidateEntityKind validates an entity kind for mutation/merge dispatch
func ValidateEntityKind(kind string) error {
	switch EntityKind(kind) {
	case KindCompany, KindContact, KindProject, KindProduct, KindInvoice, KindTask:
		return nil
	default:
		return &ValidationError{Field: "kind",
			Reason: fmt.Sprintf("unknown entity kind %q", kind)}
	}
}
