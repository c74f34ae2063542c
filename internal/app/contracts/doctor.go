package contracts

import (
	"context"

	"praxis-service/internal/app/models"
)

// DoctorProfileService is an external collaborator: doctor CRUD lives outside
// this subsystem and only working-hours and existence lookups are consumed.
type DoctorProfileService interface {
	GetWorkingHours(ctx context.Context, doctorID string) (*models.WorkingHours, error)
	Exists(ctx context.Context, doctorID string) (bool, error)
}

// PatientService is an external collaborator used for existence checks on
// booking.
type PatientService interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}
