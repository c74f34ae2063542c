package responses

import "time"

type AvailabilityResult struct {
	Available bool `json:"available"`
}

type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type DoctorAvailability struct {
	DoctorID string    `json:"doctor_id"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Slots    []Slot    `json:"slots"`
}
