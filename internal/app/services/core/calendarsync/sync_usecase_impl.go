package calendarsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/dto/responses"
	"praxis-service/internal/pkg/exceptions"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	syncUsecaseInstance contracts.CalendarSyncUsecase
	onceSyncUsecase     sync.Once
)

type syncUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	CredentialRepository  contracts.CredentialRepository
	CalendarGateway       contracts.CalendarGateway
	AuditService          contracts.AuditService
	RedisRepository       contracts.RedisRepository
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewCalendarSyncUsecase(
	appointmentRepository contracts.AppointmentRepository,
	credentialRepository contracts.CredentialRepository,
	calendarGateway contracts.CalendarGateway,
	auditService contracts.AuditService,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.CalendarSyncUsecase {
	onceSyncUsecase.Do(func() {
		instance := &syncUsecase{
			AppointmentRepository: appointmentRepository,
			CredentialRepository:  credentialRepository,
			CalendarGateway:       calendarGateway,
			AuditService:          auditService,
			RedisRepository:       redisRepository,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
		syncUsecaseInstance = instance
	})
	return syncUsecaseInstance
}

// SyncAppointments reconciles the doctor's remote calendar into the local
// store over the configured window. Event processing is independent: a
// failure on one event lands in the report's Errors and never aborts the
// batch. Re-running against an unchanged calendar is a no-op.
func (uc *syncUsecase) SyncAppointments(ctx context.Context, doctorID string) (*responses.SyncReport, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	credential, err := uc.CredentialRepository.FindActiveByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, exceptions.ErrCredentialNotFound(fmt.Errorf("doctor %s has no calendar connection", doctorID))
	}

	report := &responses.SyncReport{
		DoctorID:  doctorID,
		Errors:    []string{},
		StartedAt: time.Now(),
	}

	from := time.Now().AddDate(0, 0, -uc.InternalConfig.Scheduling.SyncWindowPastDays)
	to := time.Now().AddDate(0, 0, uc.InternalConfig.Scheduling.SyncWindowFutureDays)
	events, err := uc.CalendarGateway.ListEvents(ctx, doctorID, from, to)
	if err != nil {
		uc.audit(ctx, doctorID, constvars.AuditOutcomeFailure, err.Error())
		return nil, err
	}
	report.TotalEvents = len(events)

	for i := range events {
		if err := uc.reconcileEvent(ctx, doctorID, &events[i], report); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("event %s: %v", events[i].ID, err))
			uc.Log.Warn("syncUsecase.SyncAppointments event reconciliation failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingDoctorIDKey, doctorID),
				zap.String(constvars.LoggingExternalEventIDKey, events[i].ID),
				zap.Error(err),
			)
		}
	}

	report.FinishedAt = time.Now()
	uc.stampSyncTimes(ctx, credential, report.FinishedAt)
	uc.audit(ctx, doctorID, constvars.AuditOutcomeSuccess,
		fmt.Sprintf("%d events, %d new, %d updated, %d errors",
			report.TotalEvents, report.NewAppointments, report.UpdatedAppointments, len(report.Errors)))

	uc.Log.Info("syncUsecase.SyncAppointments finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.Int(constvars.LoggingTotalEventsKey, report.TotalEvents),
		zap.Int(constvars.LoggingNewAppointmentsKey, report.NewAppointments),
		zap.Int(constvars.LoggingUpdatedKey, report.UpdatedAppointments),
		zap.Int(constvars.LoggingErrorCountKey, len(report.Errors)),
	)
	return report, nil
}

// reconcileEvent applies a single remote event to the local store. Unknown
// busy events materialize as stub appointments with no patient; known events
// are diffed on time window and remote cancellation.
func (uc *syncUsecase) reconcileEvent(ctx context.Context, doctorID string, event *models.ExternalEvent, report *responses.SyncReport) error {
	if !event.End.After(event.Start) {
		return fmt.Errorf("end %s is not after start %s", event.End.Format(time.RFC3339), event.Start.Format(time.RFC3339))
	}

	appointment, err := uc.AppointmentRepository.FindByExternalEventID(ctx, doctorID, event.ID)
	if err != nil {
		return err
	}

	if appointment == nil {
		if !event.Blocks() {
			return nil
		}
		now := time.Now()
		stub := &models.Appointment{
			ID:                 uuid.New().String(),
			DoctorID:           doctorID,
			StartTime:          event.Start,
			DurationMinutes:    int(event.End.Sub(event.Start).Minutes()),
			EndTime:            event.End,
			Type:               constvars.AppointmentTypeExternal,
			Status:             models.AppointmentScheduled,
			Notes:              event.Summary,
			ExternalEventID:    event.ID,
			ExternalCalendarID: event.CalendarID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := uc.AppointmentRepository.Create(ctx, stub); err != nil {
			return err
		}
		report.NewAppointments++
		return nil
	}

	changed := false
	if event.Status == constvars.GoogleEventStatusCancelled && appointment.IsActive() {
		appointment.Status = models.AppointmentCancelled
		now := time.Now()
		appointment.CancelledAt = &now
		appointment.CancellationReason = "cancelled on external calendar"
		changed = true
	}
	if !appointment.StartTime.Equal(event.Start) || !appointment.EndTime.Equal(event.End) {
		appointment.StartTime = event.Start
		appointment.EndTime = event.End
		appointment.DurationMinutes = int(event.End.Sub(event.Start).Minutes())
		changed = true
	}
	// Only stubs mirror the remote title; locally-authored notes win.
	if appointment.Type == constvars.AppointmentTypeExternal && appointment.Notes != event.Summary {
		appointment.Notes = event.Summary
		changed = true
	}
	if !changed {
		return nil
	}

	appointment.UpdatedAt = time.Now()
	if err := uc.AppointmentRepository.Update(ctx, appointment); err != nil {
		return err
	}
	report.UpdatedAppointments++
	return nil
}

func (uc *syncUsecase) stampSyncTimes(ctx context.Context, credential *models.CalendarCredential, finishedAt time.Time) {
	next := finishedAt.Add(time.Duration(uc.InternalConfig.Scheduling.SyncIntervalMinutes) * time.Minute)
	credential.LastSyncAt = &finishedAt
	credential.NextSyncAt = &next
	credential.UpdatedAt = finishedAt
	if err := uc.CredentialRepository.Upsert(ctx, credential); err != nil {
		uc.Log.Warn("syncUsecase.stampSyncTimes failed to persist sync timestamps",
			zap.String(constvars.LoggingDoctorIDKey, credential.DoctorID),
			zap.Error(err),
		)
		return
	}

	// Connection status reads through a cached view of these timestamps.
	cacheKey := fmt.Sprintf(constvars.RedisKeyConnStatusFormat, credential.DoctorID)
	if err := uc.RedisRepository.Delete(ctx, cacheKey); err != nil {
		uc.Log.Warn("syncUsecase.stampSyncTimes failed to invalidate status cache",
			zap.String(constvars.LoggingDoctorIDKey, credential.DoctorID),
			zap.String(constvars.LoggingRedisKey, cacheKey),
			zap.Error(err),
		)
	}
}

func (uc *syncUsecase) audit(ctx context.Context, doctorID, outcome, detail string) {
	uc.AuditService.Record(ctx, models.AuditRecord{
		Actor:    doctorID,
		Action:   constvars.AuditActionSyncRun,
		Resource: "calendar_sync",
		Outcome:  outcome,
		Detail:   detail,
	})
}
