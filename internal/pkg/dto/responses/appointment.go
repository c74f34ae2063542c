package responses

import "time"

// AppointmentSource tells where a listed appointment view originated:
// "remote" entries come from the external calendar joined with any local
// record, "local" entries from the local store only.
const (
	AppointmentSourceLocal  = "local"
	AppointmentSourceRemote = "remote"
)

type Appointment struct {
	ID                 string     `json:"id,omitempty"`
	DoctorID           string     `json:"doctor_id"`
	PatientID          *string    `json:"patient_id,omitempty"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	DurationMinutes    int        `json:"duration_minutes"`
	Type               string     `json:"type,omitempty"`
	Status             string     `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	ExternalEventID    string     `json:"external_event_id,omitempty"`
	ExternalCalendarID string     `json:"external_calendar_id,omitempty"`
	Source             string     `json:"source"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
}
