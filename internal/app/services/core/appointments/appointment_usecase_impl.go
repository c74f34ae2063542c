package appointments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/dto/requests"
	"praxis-service/internal/pkg/dto/responses"
	"praxis-service/internal/pkg/exceptions"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	appointmentUsecaseInstance contracts.AppointmentUsecase
	onceAppointmentUsecase     sync.Once
)

type appointmentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	AvailabilityUsecase   contracts.AvailabilityUsecase
	PatientService        contracts.PatientService
	CalendarGateway       contracts.CalendarGateway
	LockerService         contracts.LockerService
	AuditService          contracts.AuditService
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	availabilityUsecase contracts.AvailabilityUsecase,
	patientService contracts.PatientService,
	calendarGateway contracts.CalendarGateway,
	lockerService contracts.LockerService,
	auditService contracts.AuditService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	onceAppointmentUsecase.Do(func() {
		instance := &appointmentUsecase{
			AppointmentRepository: appointmentRepository,
			AvailabilityUsecase:   availabilityUsecase,
			PatientService:        patientService,
			CalendarGateway:       calendarGateway,
			LockerService:         lockerService,
			AuditService:          auditService,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
		appointmentUsecaseInstance = instance
	})
	return appointmentUsecaseInstance
}

// CreateAppointment books a slot under a per-doctor lock so concurrent
// requests for the same doctor serialize through the availability check.
func (uc *appointmentUsecase) CreateAppointment(ctx context.Context, request *requests.CreateAppointmentRequest) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if request.PatientID != nil {
		exists, err := uc.PatientService.Exists(ctx, *request.PatientID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, exceptions.ErrPatientNotFound(fmt.Errorf("patient %s", *request.PatientID))
		}
	}

	lockKey := fmt.Sprintf(constvars.RedisKeyBookingLockFormat, request.DoctorID)
	lockTTL := time.Duration(uc.InternalConfig.Scheduling.BookingLockTTLSec) * time.Second
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, lockTTL)
	switch {
	case err != nil:
		// A lock-store outage degrades booking to plain check-then-insert
		// instead of blocking it.
		uc.Log.Warn("appointmentUsecase.CreateAppointment booking lock unavailable, proceeding unlocked",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, lockKey),
			zap.Error(err),
		)
	case !acquired:
		uc.Log.Warn("appointmentUsecase.CreateAppointment booking lock contended",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		)
		return nil, exceptions.ErrSlotNotAvailable(fmt.Errorf("booking in progress for doctor %s", request.DoctorID))
	default:
		defer func() {
			if err := uc.LockerService.Unlock(ctx, lockKey, lockValue); err != nil {
				uc.Log.Warn("appointmentUsecase.CreateAppointment failed to release booking lock",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingRedisKey, lockKey),
					zap.Error(err),
				)
			}
		}()
	}

	available, err := uc.AvailabilityUsecase.IsAvailable(ctx, request.DoctorID, request.StartTime, request.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if !available {
		uc.audit(ctx, request.DoctorID, constvars.AuditActionAppointmentCreate, "", constvars.AuditOutcomeDenied, "slot not available")
		return nil, exceptions.ErrSlotNotAvailable(fmt.Errorf("slot %s is taken", request.StartTime.Format(time.RFC3339)))
	}

	now := time.Now()
	appointment := &models.Appointment{
		ID:              uuid.New().String(),
		DoctorID:        request.DoctorID,
		PatientID:       request.PatientID,
		StartTime:       request.StartTime,
		DurationMinutes: request.DurationMinutes,
		EndTime:         request.StartTime.Add(time.Duration(request.DurationMinutes) * time.Minute),
		Type:            request.Type,
		Status:          models.AppointmentScheduled,
		Notes:           request.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.AppointmentRepository.Create(ctx, appointment); err != nil {
		uc.audit(ctx, request.DoctorID, constvars.AuditActionAppointmentCreate, appointment.ID, constvars.AuditOutcomeFailure, err.Error())
		return nil, err
	}

	uc.mirrorToCalendar(ctx, appointment)
	uc.audit(ctx, request.DoctorID, constvars.AuditActionAppointmentCreate, appointment.ID, constvars.AuditOutcomeSuccess, "")

	uc.Log.Info("appointmentUsecase.CreateAppointment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.Time(constvars.LoggingStartTimeKey, appointment.StartTime),
	)
	return uc.toResponse(appointment, responses.AppointmentSourceLocal), nil
}

// mirrorToCalendar pushes the booking to the remote calendar. The local store
// is the record of truth; a failed mirror is logged and leaves the
// appointment unlinked for the next sync run to reconcile.
func (uc *appointmentUsecase) mirrorToCalendar(ctx context.Context, appointment *models.Appointment) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	created, err := uc.CalendarGateway.CreateEvent(ctx, appointment.DoctorID, &models.ExternalEvent{
		Summary:     fmt.Sprintf("Appointment (%s)", appointment.Type),
		Description: appointment.Notes,
		Start:       appointment.StartTime,
		End:         appointment.EndTime,
	})
	if err != nil {
		uc.Log.Warn("appointmentUsecase.mirrorToCalendar remote create failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
		return
	}

	appointment.ExternalEventID = created.ID
	appointment.ExternalCalendarID = created.CalendarID
	appointment.UpdatedAt = time.Now()
	if err := uc.AppointmentRepository.Update(ctx, appointment); err != nil {
		uc.Log.Error("appointmentUsecase.mirrorToCalendar failed to persist remote link",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
	}
}

func (uc *appointmentUsecase) UpdateAppointment(ctx context.Context, appointmentID string, request *requests.UpdateAppointmentRequest) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(fmt.Errorf("appointment %s", appointmentID))
	}

	if request.Status != nil {
		target := models.AppointmentStatus(*request.Status)
		if target != appointment.Status {
			if !appointment.CanTransitionTo(target) {
				return nil, exceptions.ErrInvalidStatusTransition(fmt.Errorf("%s -> %s", appointment.Status, target))
			}
			appointment.Status = target
			if target == models.AppointmentCancelled {
				now := time.Now()
				appointment.CancelledAt = &now
			}
		}
	}

	newStart := appointment.StartTime
	newDuration := appointment.DurationMinutes
	if request.StartTime != nil {
		newStart = *request.StartTime
	}
	if request.DurationMinutes != nil {
		newDuration = *request.DurationMinutes
	}
	rescheduled := !newStart.Equal(appointment.StartTime) || newDuration != appointment.DurationMinutes
	if rescheduled && appointment.IsActive() {
		available, err := uc.AvailabilityUsecase.IsAvailableExcluding(ctx, appointment.DoctorID, newStart, newDuration, appointment.ID)
		if err != nil {
			return nil, err
		}
		if !available {
			uc.audit(ctx, appointment.DoctorID, constvars.AuditActionAppointmentUpdate, appointment.ID, constvars.AuditOutcomeDenied, "reschedule slot not available")
			return nil, exceptions.ErrSlotNotAvailable(fmt.Errorf("slot %s is taken", newStart.Format(time.RFC3339)))
		}
	}
	appointment.StartTime = newStart
	appointment.DurationMinutes = newDuration
	appointment.EndTime = newStart.Add(time.Duration(newDuration) * time.Minute)

	if request.Type != nil {
		appointment.Type = *request.Type
	}
	if request.Notes != nil {
		appointment.Notes = *request.Notes
	}
	appointment.UpdatedAt = time.Now()

	if err := uc.AppointmentRepository.Update(ctx, appointment); err != nil {
		uc.audit(ctx, appointment.DoctorID, constvars.AuditActionAppointmentUpdate, appointment.ID, constvars.AuditOutcomeFailure, err.Error())
		return nil, err
	}

	uc.mirrorUpdateToCalendar(ctx, appointment)
	uc.audit(ctx, appointment.DoctorID, constvars.AuditActionAppointmentUpdate, appointment.ID, constvars.AuditOutcomeSuccess, "")

	uc.Log.Info("appointmentUsecase.UpdateAppointment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingStatusKey, string(appointment.Status)),
	)
	return uc.toResponse(appointment, responses.AppointmentSourceLocal), nil
}

func (uc *appointmentUsecase) mirrorUpdateToCalendar(ctx context.Context, appointment *models.Appointment) {
	if appointment.ExternalEventID == "" {
		return
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var err error
	if appointment.IsActive() {
		_, err = uc.CalendarGateway.UpdateEvent(ctx, appointment.DoctorID, &models.ExternalEvent{
			ID:          appointment.ExternalEventID,
			Summary:     fmt.Sprintf("Appointment (%s)", appointment.Type),
			Description: appointment.Notes,
			Start:       appointment.StartTime,
			End:         appointment.EndTime,
		})
	} else {
		err = uc.CalendarGateway.DeleteEvent(ctx, appointment.DoctorID, appointment.ExternalEventID)
	}
	if err != nil {
		uc.Log.Warn("appointmentUsecase.mirrorUpdateToCalendar remote mirror failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.String(constvars.LoggingExternalEventIDKey, appointment.ExternalEventID),
			zap.Error(err),
		)
	}
}

func (uc *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID string, request *requests.CancelAppointmentRequest) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(fmt.Errorf("appointment %s", appointmentID))
	}
	if appointment.Status == models.AppointmentCancelled {
		return nil, exceptions.ErrAppointmentAlreadyCancelled(fmt.Errorf("appointment %s", appointmentID))
	}
	if !appointment.CanTransitionTo(models.AppointmentCancelled) {
		return nil, exceptions.ErrInvalidStatusTransition(fmt.Errorf("%s -> cancelled", appointment.Status))
	}

	now := time.Now()
	appointment.Status = models.AppointmentCancelled
	appointment.CancelledAt = &now
	appointment.CancellationReason = request.Reason
	appointment.CancelledBy = request.CancelledBy
	appointment.UpdatedAt = now

	if err := uc.AppointmentRepository.Update(ctx, appointment); err != nil {
		uc.audit(ctx, appointment.DoctorID, constvars.AuditActionAppointmentCancel, appointment.ID, constvars.AuditOutcomeFailure, err.Error())
		return nil, err
	}

	if appointment.ExternalEventID != "" {
		if err := uc.CalendarGateway.DeleteEvent(ctx, appointment.DoctorID, appointment.ExternalEventID); err != nil {
			uc.Log.Warn("appointmentUsecase.CancelAppointment remote delete failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
				zap.String(constvars.LoggingExternalEventIDKey, appointment.ExternalEventID),
				zap.Error(err),
			)
		}
	}
	uc.audit(ctx, appointment.DoctorID, constvars.AuditActionAppointmentCancel, appointment.ID, constvars.AuditOutcomeSuccess, request.Reason)

	uc.Log.Info("appointmentUsecase.CancelAppointment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return uc.toResponse(appointment, responses.AppointmentSourceLocal), nil
}

// ListByDoctor reads the remote calendar first and joins events with local
// records by external event id. When the remote calendar is unreachable the
// listing degrades to local records only.
func (uc *appointmentUsecase) ListByDoctor(ctx context.Context, doctorID string, from, to time.Time) ([]responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	local, err := uc.AppointmentRepository.FindByDoctorInRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	byEventID := make(map[string]*models.Appointment, len(local))
	for i := range local {
		if local[i].ExternalEventID != "" {
			byEventID[local[i].ExternalEventID] = &local[i]
		}
	}

	events, err := uc.CalendarGateway.ListEvents(ctx, doctorID, from, to)
	if err != nil {
		uc.Log.Warn("appointmentUsecase.ListByDoctor remote listing failed, falling back to local records",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		result := make([]responses.Appointment, 0, len(local))
		for i := range local {
			result = append(result, *uc.toResponse(&local[i], responses.AppointmentSourceLocal))
		}
		return result, nil
	}

	result := make([]responses.Appointment, 0, len(events)+len(local))
	seen := make(map[string]bool, len(events))
	for i := range events {
		event := &events[i]
		if event.Status == constvars.GoogleEventStatusCancelled {
			continue
		}
		view := responses.Appointment{
			DoctorID:           doctorID,
			StartTime:          event.Start,
			EndTime:            event.End,
			DurationMinutes:    int(event.End.Sub(event.Start).Minutes()),
			Status:             constvars.AppointmentStatusScheduled,
			ExternalEventID:    event.ID,
			ExternalCalendarID: event.CalendarID,
			Source:             responses.AppointmentSourceRemote,
		}
		if appointment, ok := byEventID[event.ID]; ok {
			seen[event.ID] = true
			view.ID = appointment.ID
			view.PatientID = appointment.PatientID
			view.Type = appointment.Type
			view.Status = string(appointment.Status)
			view.Notes = appointment.Notes
		}
		result = append(result, view)
	}
	for i := range local {
		if local[i].ExternalEventID != "" && seen[local[i].ExternalEventID] {
			continue
		}
		result = append(result, *uc.toResponse(&local[i], responses.AppointmentSourceLocal))
	}
	return result, nil
}

func (uc *appointmentUsecase) toResponse(appointment *models.Appointment, source string) *responses.Appointment {
	return &responses.Appointment{
		ID:                 appointment.ID,
		DoctorID:           appointment.DoctorID,
		PatientID:          appointment.PatientID,
		StartTime:          appointment.StartTime,
		EndTime:            appointment.EndTime,
		DurationMinutes:    appointment.DurationMinutes,
		Type:               appointment.Type,
		Status:             string(appointment.Status),
		Notes:              appointment.Notes,
		ExternalEventID:    appointment.ExternalEventID,
		ExternalCalendarID: appointment.ExternalCalendarID,
		Source:             source,
		CancelledAt:        appointment.CancelledAt,
		CancellationReason: appointment.CancellationReason,
	}
}

func (uc *appointmentUsecase) audit(ctx context.Context, doctorID, action, appointmentID, outcome, detail string) {
	uc.AuditService.Record(ctx, models.AuditRecord{
		Actor:      doctorID,
		Action:     action,
		Resource:   "appointment",
		ResourceID: appointmentID,
		Outcome:    outcome,
		Detail:     detail,
	})
}
