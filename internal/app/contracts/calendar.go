package contracts

import (
	"context"
	"time"

	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/dto/responses"
)

// CalendarOAuthUsecase manages the OAuth credential lifecycle per doctor.
type CalendarOAuthUsecase interface {
	GenerateAuthURL(ctx context.Context, doctorID string) (string, error)
	ExchangeCode(ctx context.Context, code, state string) (string, *models.CalendarCredential, error)
	// EnsureFreshToken returns an active credential with a non-stale access
	// token, refreshing it first when expired. Refresh is single-flighted per
	// doctor; a failed refresh deactivates the credential.
	EnsureFreshToken(ctx context.Context, doctorID string) (*models.CalendarCredential, error)
	Disconnect(ctx context.Context, doctorID string) error
	GetConnectionStatus(ctx context.Context, doctorID string) (*responses.ConnectionStatus, error)
}

// CalendarGateway performs authenticated operations against the remote
// calendar. CreateEvent is not idempotent; UpdateEvent and DeleteEvent are,
// given a known remote id. Every mutating call emits an audit record,
// including on failure.
type CalendarGateway interface {
	CreateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error)
	UpdateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error)
	DeleteEvent(ctx context.Context, doctorID, eventID string) error
	ListEvents(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.ExternalEvent, error)
	CheckFreeBusy(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.BusyInterval, error)
}

type CredentialRepository interface {
	Upsert(ctx context.Context, credential *models.CalendarCredential) error
	FindActiveByDoctor(ctx context.Context, doctorID string) (*models.CalendarCredential, error)
	FindByDoctor(ctx context.Context, doctorID string) (*models.CalendarCredential, error)
	FindAllActive(ctx context.Context) ([]models.CalendarCredential, error)
}

type CalendarSyncUsecase interface {
	SyncAppointments(ctx context.Context, doctorID string) (*responses.SyncReport, error)
}
