package models

import "time"

// ExternalEvent is the normalized representation of a remote calendar entry.
// It exists only during gateway calls and sync runs and is never persisted.
type ExternalEvent struct {
	ID           string    `json:"id"`
	CalendarID   string    `json:"calendar_id"`
	Summary      string    `json:"summary"`
	Description  string    `json:"description,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	TimeZone     string    `json:"time_zone,omitempty"`
	Status       string    `json:"status"`
	Transparency string    `json:"transparency,omitempty"`
}

// Blocks reports whether the event should count against availability.
// Cancelled and transparent (marked free) events never block a slot.
func (e *ExternalEvent) Blocks() bool {
	return e.Status != "cancelled" && e.Transparency != "transparent"
}

// BusyInterval is a single busy window returned by a freebusy query.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
