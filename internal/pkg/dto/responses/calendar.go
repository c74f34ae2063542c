package responses

import "time"

type AuthURL struct {
	URL string `json:"url"`
}

type ConnectionStatus struct {
	IsConnected  bool       `json:"is_connected"`
	CalendarName string     `json:"calendar_name,omitempty"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	NextSyncAt   *time.Time `json:"next_sync_at,omitempty"`
}

// SyncReport summarizes a single reconciliation run. Errors carries one entry
// per failed remote event; a non-empty Errors never means the batch aborted.
type SyncReport struct {
	DoctorID            string    `json:"doctor_id"`
	TotalEvents         int       `json:"total_events"`
	NewAppointments     int       `json:"new_appointments"`
	UpdatedAppointments int       `json:"updated_appointments"`
	Errors              []string  `json:"errors"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}
