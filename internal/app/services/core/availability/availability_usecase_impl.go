package availability

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
	"praxis-service/internal/pkg/utils"

	"go.uber.org/zap"
)

var (
	availabilityUsecaseInstance contracts.AvailabilityUsecase
	onceAvailabilityUsecase     sync.Once
)

type availabilityUsecase struct {
	DoctorService         contracts.DoctorProfileService
	AppointmentRepository contracts.AppointmentRepository
	CalendarGateway       contracts.CalendarGateway
	AuditService          contracts.AuditService
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewAvailabilityUsecase(
	doctorService contracts.DoctorProfileService,
	appointmentRepository contracts.AppointmentRepository,
	calendarGateway contracts.CalendarGateway,
	auditService contracts.AuditService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AvailabilityUsecase {
	onceAvailabilityUsecase.Do(func() {
		instance := &availabilityUsecase{
			DoctorService:         doctorService,
			AppointmentRepository: appointmentRepository,
			CalendarGateway:       calendarGateway,
			AuditService:          auditService,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
		availabilityUsecaseInstance = instance
	})
	return availabilityUsecaseInstance
}

// Admission stages, in evaluation order.
const (
	stageWorkingHours = "working_hours"
	stageLocalOverlap = "local_overlap"
	stageRemoteBusy   = "remote_busy"
)

func (uc *availabilityUsecase) auditCheck(ctx context.Context, doctorID, outcome, detail string) {
	uc.AuditService.Record(ctx, models.AuditRecord{
		Actor:      doctorID,
		Action:     constvars.AuditActionAvailabilityCheck,
		Resource:   "availability",
		ResourceID: doctorID,
		Outcome:    outcome,
		Detail:     detail,
	})
}

// IsAvailable runs the three-stage admission check. Stages short-circuit in
// cost order: working hours, then the local store, then the remote calendar.
// A remote failure is logged and treated as available so an upstream outage
// never blocks booking.
func (uc *availabilityUsecase) IsAvailable(ctx context.Context, doctorID string, start time.Time, durationMinutes int) (bool, error) {
	return uc.IsAvailableExcluding(ctx, doctorID, start, durationMinutes, "")
}

// IsAvailableExcluding ignores local overlap with excludeAppointmentID so a
// reschedule never collides with the appointment being moved.
func (uc *availabilityUsecase) IsAvailableExcluding(ctx context.Context, doctorID string, start time.Time, durationMinutes int, excludeAppointmentID string) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if durationMinutes <= 0 {
		return false, exceptions.ErrInvalidDuration(fmt.Errorf("duration %d minutes", durationMinutes))
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	withinHours, err := uc.withinWorkingHours(ctx, doctorID, start, end)
	if err != nil {
		return false, err
	}
	if !withinHours {
		uc.Log.Info("availabilityUsecase.IsAvailable rejected outside working hours",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.String(constvars.LoggingAvailabilityStageKey, stageWorkingHours),
			zap.Time(constvars.LoggingStartTimeKey, start),
		)
		uc.auditCheck(ctx, doctorID, constvars.AuditOutcomeDenied, stageWorkingHours)
		return false, nil
	}

	appointments, err := uc.AppointmentRepository.FindActiveByDoctorInRange(ctx, doctorID, start, end)
	if err != nil {
		return false, err
	}
	for i := range appointments {
		if appointments[i].ID == excludeAppointmentID {
			continue
		}
		if appointments[i].Overlaps(start, end) {
			uc.Log.Info("availabilityUsecase.IsAvailable rejected by local overlap",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingDoctorIDKey, doctorID),
				zap.String(constvars.LoggingAvailabilityStageKey, stageLocalOverlap),
				zap.String(constvars.LoggingAppointmentIDKey, appointments[i].ID),
			)
			uc.auditCheck(ctx, doctorID, constvars.AuditOutcomeDenied, stageLocalOverlap)
			return false, nil
		}
	}

	busy, err := uc.CalendarGateway.CheckFreeBusy(ctx, doctorID, start, end)
	if err != nil {
		// Fail open: the remote calendar is advisory for admission.
		uc.Log.Warn("availabilityUsecase.IsAvailable remote check failed, treating slot as available",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		uc.auditCheck(ctx, doctorID, constvars.AuditOutcomeSuccess, "remote check skipped")
		return true, nil
	}
	for _, interval := range busy {
		if utils.IntervalsOverlap(interval.Start, interval.End, start, end) {
			uc.Log.Info("availabilityUsecase.IsAvailable rejected by remote busy interval",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingDoctorIDKey, doctorID),
				zap.String(constvars.LoggingAvailabilityStageKey, stageRemoteBusy),
				zap.Time(constvars.LoggingStartTimeKey, interval.Start),
			)
			uc.auditCheck(ctx, doctorID, constvars.AuditOutcomeDenied, stageRemoteBusy)
			return false, nil
		}
	}

	uc.auditCheck(ctx, doctorID, constvars.AuditOutcomeSuccess, "")
	return true, nil
}

// withinWorkingHours checks the candidate against the doctor's configured day
// window. Slots must fit entirely inside one day's window; crossing midnight
// is never bookable.
func (uc *availabilityUsecase) withinWorkingHours(ctx context.Context, doctorID string, start, end time.Time) (bool, error) {
	workingHours, err := uc.DoctorService.GetWorkingHours(ctx, doctorID)
	if err != nil {
		return false, err
	}
	if workingHours == nil {
		return false, exceptions.ErrDoctorNotFound(fmt.Errorf("doctor %s has no profile", doctorID))
	}

	window := workingHours.ForWeekday(start.Weekday())
	if !window.Available {
		return false, nil
	}
	windowStart, okStart := utils.ParseClock(window.Start)
	windowEnd, okEnd := utils.ParseClock(window.End)
	if !okStart || !okEnd {
		return false, nil
	}

	if !utils.StartOfDay(start).Equal(utils.StartOfDay(end)) && utils.MinutesOfDay(end) != 0 {
		return false, nil
	}

	startMinutes := utils.MinutesOfDay(start)
	endMinutes := startMinutes + int(end.Sub(start).Minutes())
	return startMinutes >= windowStart && endMinutes <= windowEnd, nil
}

// GetDoctorAvailability enumerates free slots of the configured slot size
// inside [from, to). Remote busy intervals are fetched once for the whole
// range; a remote failure degrades the result to local-only.
func (uc *availabilityUsecase) GetDoctorAvailability(ctx context.Context, doctorID string, from, to time.Time) (*responses.DoctorAvailability, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	workingHours, err := uc.DoctorService.GetWorkingHours(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if workingHours == nil {
		return nil, exceptions.ErrDoctorNotFound(fmt.Errorf("doctor %s has no profile", doctorID))
	}

	appointments, err := uc.AppointmentRepository.FindActiveByDoctorInRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	busy, err := uc.CalendarGateway.CheckFreeBusy(ctx, doctorID, from, to)
	if err != nil {
		uc.Log.Warn("availabilityUsecase.GetDoctorAvailability remote check failed, using local data only",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		busy = nil
	}

	slotSize := time.Duration(uc.InternalConfig.Scheduling.SlotSizeMinutes) * time.Minute
	result := &responses.DoctorAvailability{
		DoctorID: doctorID,
		From:     from,
		To:       to,
		Slots:    []responses.Slot{},
	}

	for day := utils.StartOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		window := workingHours.ForWeekday(day.Weekday())
		if !window.Available {
			continue
		}
		windowStart, okStart := utils.ParseClock(window.Start)
		windowEnd, okEnd := utils.ParseClock(window.End)
		if !okStart || !okEnd || windowEnd <= windowStart {
			continue
		}

		dayStart := day.Add(time.Duration(windowStart) * time.Minute)
		dayEnd := day.Add(time.Duration(windowEnd) * time.Minute)

		for slotStart := dayStart; slotStart.Add(slotSize).Before(dayEnd) || slotStart.Add(slotSize).Equal(dayEnd); slotStart = slotStart.Add(slotSize) {
			slotEnd := slotStart.Add(slotSize)
			if slotStart.Before(from) || slotEnd.After(to) {
				continue
			}
			if uc.slotTaken(appointments, busy, slotStart, slotEnd) {
				continue
			}
			result.Slots = append(result.Slots, responses.Slot{StartTime: slotStart, EndTime: slotEnd})
		}
	}

	return result, nil
}

func (uc *availabilityUsecase) slotTaken(appointments []models.Appointment, busy []models.BusyInterval, start, end time.Time) bool {
	for i := range appointments {
		if appointments[i].Overlaps(start, end) {
			return true
		}
	}
	for _, interval := range busy {
		if utils.IntervalsOverlap(interval.Start, interval.End, start, end) {
			return true
		}
	}
	return false
}
