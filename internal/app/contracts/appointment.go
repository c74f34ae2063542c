package contracts

import (
	"context"
	"time"

	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/dto/requests"
	"praxis-service/internal/pkg/dto/responses"
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, request *requests.CreateAppointmentRequest) (*responses.Appointment, error)
	UpdateAppointment(ctx context.Context, appointmentID string, request *requests.UpdateAppointmentRequest) (*responses.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID string, request *requests.CancelAppointmentRequest) (*responses.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string, from, to time.Time) ([]responses.Appointment, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
	FindActiveByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	FindActiveByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error)
	FindByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error)
	FindByExternalEventID(ctx context.Context, doctorID, externalEventID string) (*models.Appointment, error)
}
