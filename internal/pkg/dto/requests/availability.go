package requests

import "time"

type CheckAvailabilityRequest struct {
	DoctorID        string    `json:"doctor_id" validate:"required,uuid"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required"`
}

type AvailabilityRangeRequest struct {
	DoctorID string    `json:"doctor_id" validate:"required,uuid"`
	From     time.Time `json:"from" validate:"required"`
	To       time.Time `json:"to" validate:"required,gtfield=From"`
}
