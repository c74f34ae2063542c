package models

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// Appointment is the local booking record. It is never hard-deleted, only
// status-transitioned. ExternalEventID links it to the mirrored remote
// calendar event when one exists.
type Appointment struct {
	ID                 string            `bson:"_id" json:"id"`
	DoctorID           string            `bson:"doctor_id" json:"doctor_id"`
	PatientID          *string           `bson:"patient_id,omitempty" json:"patient_id,omitempty"`
	StartTime          time.Time         `bson:"start_time" json:"start_time"`
	DurationMinutes    int               `bson:"duration_minutes" json:"duration_minutes"`
	EndTime            time.Time         `bson:"end_time" json:"end_time"`
	Type               string            `bson:"type" json:"type"`
	Status             AppointmentStatus `bson:"status" json:"status"`
	Notes              string            `bson:"notes,omitempty" json:"notes,omitempty"`
	ExternalEventID    string            `bson:"external_event_id,omitempty" json:"external_event_id,omitempty"`
	ExternalCalendarID string            `bson:"external_calendar_id,omitempty" json:"external_calendar_id,omitempty"`
	CancelledAt        *time.Time        `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancellationReason string            `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancelledBy        string            `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CreatedAt          time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether the appointment still claims its time slot.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentScheduled || a.Status == AppointmentConfirmed
}

// Overlaps reports whether [a.StartTime, a.EndTime) intersects
// [start, end). Intervals are half-open: touching endpoints do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// CanTransitionTo validates the status state machine:
// scheduled -> confirmed -> completed; scheduled|confirmed -> cancelled;
// any non-terminal state -> no_show.
func (a *Appointment) CanTransitionTo(target AppointmentStatus) bool {
	switch target {
	case AppointmentConfirmed:
		return a.Status == AppointmentScheduled
	case AppointmentCompleted:
		return a.Status == AppointmentConfirmed
	case AppointmentCancelled:
		return a.Status == AppointmentScheduled || a.Status == AppointmentConfirmed
	case AppointmentNoShow:
		return a.Status == AppointmentScheduled || a.Status == AppointmentConfirmed
	default:
		return false
	}
}
