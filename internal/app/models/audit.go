package models

import "time"

// AuditRecord is a write-only trail entry published to the audit sink.
// Publishing is best-effort: a failed publish is logged and never blocks the
// operation that produced the record.
type AuditRecord struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
