package contracts

import (
	"context"
	"time"

	"praxis-service/internal/pkg/dto/responses"
)

type AvailabilityUsecase interface {
	// IsAvailable decides whether a candidate slot is bookable. The decision
	// short-circuits through working hours, local overlap, and the remote
	// calendar; an unreachable remote calendar is treated as available.
	IsAvailable(ctx context.Context, doctorID string, start time.Time, durationMinutes int) (bool, error)
	// IsAvailableExcluding runs the same check but ignores local overlap with
	// the named appointment, so a reschedule does not collide with itself.
	IsAvailableExcluding(ctx context.Context, doctorID string, start time.Time, durationMinutes int, excludeAppointmentID string) (bool, error)
	GetDoctorAvailability(ctx context.Context, doctorID string, from, to time.Time) (*responses.DoctorAvailability, error)
}
