package requests

import "time"

type CreateAppointmentRequest struct {
	DoctorID        string    `json:"doctor_id" validate:"required,uuid"`
	PatientID       *string   `json:"patient_id,omitempty" validate:"omitempty,uuid"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0"`
	Type            string    `json:"type" validate:"required,appointment_type"`
	Notes           string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateAppointmentRequest is a tagged partial update: every optional field
// is a pointer and only non-nil fields are applied. A non-nil StartTime or
// DurationMinutes triggers a fresh availability admission check.
type UpdateAppointmentRequest struct {
	StartTime       *time.Time `json:"start_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	Type            *string    `json:"type,omitempty" validate:"omitempty,appointment_type"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status          *string    `json:"status,omitempty" validate:"omitempty,oneof=scheduled confirmed completed cancelled no_show"`
}

type CancelAppointmentRequest struct {
	Reason      string `json:"reason,omitempty" validate:"omitempty,max=500"`
	CancelledBy string `json:"cancelled_by,omitempty" validate:"omitempty,max=100"`
}
