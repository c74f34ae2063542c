package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDoctorService struct {
	workingHours *models.WorkingHours
	err          error
}

func (f *fakeDoctorService) GetWorkingHours(ctx context.Context, doctorID string) (*models.WorkingHours, error) {
	return f.workingHours, f.err
}

func (f *fakeDoctorService) Exists(ctx context.Context, doctorID string) (bool, error) {
	return f.workingHours != nil, f.err
}

type fakeAppointmentRepository struct {
	appointments []models.Appointment
	err          error
}

func (f *fakeAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	return f.err
}

func (f *fakeAppointmentRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return nil, f.err
}

func (f *fakeAppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	return f.err
}

func (f *fakeAppointmentRepository) FindActiveByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return f.appointments, f.err
}

func (f *fakeAppointmentRepository) FindActiveByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	return f.appointments, f.err
}

func (f *fakeAppointmentRepository) FindByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	return f.appointments, f.err
}

func (f *fakeAppointmentRepository) FindByExternalEventID(ctx context.Context, doctorID, externalEventID string) (*models.Appointment, error) {
	return nil, f.err
}

type fakeCalendarGateway struct {
	busy []models.BusyInterval
	err  error
}

func (f *fakeCalendarGateway) CreateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error) {
	return event, f.err
}

func (f *fakeCalendarGateway) UpdateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error) {
	return event, f.err
}

func (f *fakeCalendarGateway) DeleteEvent(ctx context.Context, doctorID, eventID string) error {
	return f.err
}

func (f *fakeCalendarGateway) ListEvents(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.ExternalEvent, error) {
	return nil, f.err
}

func (f *fakeCalendarGateway) CheckFreeBusy(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.BusyInterval, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.busy, nil
}

type recordedAudit struct {
	records []models.AuditRecord
}

func (a *recordedAudit) Record(ctx context.Context, record models.AuditRecord) {
	a.records = append(a.records, record)
}

func weekdayHours() *models.WorkingHours {
	open := models.DayWindow{Start: "09:00", End: "17:00", Available: true}
	closed := models.DayWindow{Available: false}
	return &models.WorkingHours{
		Monday:    open,
		Tuesday:   open,
		Wednesday: open,
		Thursday:  open,
		Friday:    open,
		Saturday:  closed,
		Sunday:    closed,
	}
}

func newTestUsecase(doctors *fakeDoctorService, repo *fakeAppointmentRepository, gateway *fakeCalendarGateway) *availabilityUsecase {
	return &availabilityUsecase{
		DoctorService:         doctors,
		AppointmentRepository: repo,
		CalendarGateway:       gateway,
		AuditService:          &recordedAudit{},
		InternalConfig: &config.InternalConfig{
			Scheduling: config.Scheduling{SlotSizeMinutes: 30},
		},
		Log: zap.NewNop(),
	}
}

// 2026-08-31 is a Monday.
var monday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func TestIsAvailableWithinOpenWindow(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{},
	)

	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(10*time.Hour), 60)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableRejectsClosedWeekday(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{},
	)

	saturday := monday.AddDate(0, 0, 5)
	available, err := uc.IsAvailable(context.Background(), "doc-1", saturday.Add(10*time.Hour), 60)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsAvailableRejectsWindowOverflow(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{},
	)

	// 16:30 + 60m runs past the 17:00 close.
	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(16*time.Hour+30*time.Minute), 60)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsAvailableSlotEndingExactlyAtClose(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{},
	)

	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(16*time.Hour), 60)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableHalfOpenIntervals(t *testing.T) {
	existing := models.Appointment{
		ID:        "appt-a",
		DoctorID:  "doc-1",
		StartTime: monday.Add(10 * time.Hour),
		EndTime:   monday.Add(11 * time.Hour),
		Status:    models.AppointmentScheduled,
	}
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{appointments: []models.Appointment{existing}},
		&fakeCalendarGateway{},
	)

	// [10:59, 11:30) overlaps [10:00, 11:00) by one minute.
	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(10*time.Hour+59*time.Minute), 31)
	require.NoError(t, err)
	assert.False(t, available)

	// [11:00, 11:30) only touches the existing end and is bookable.
	available, err = uc.IsAvailable(context.Background(), "doc-1", monday.Add(11*time.Hour), 30)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableRejectsRemoteBusyOverlap(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{busy: []models.BusyInterval{
			{Start: monday.Add(10 * time.Hour), End: monday.Add(11 * time.Hour)},
		}},
	)

	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(10*time.Hour+30*time.Minute), 30)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsAvailableAuditsDeniedStage(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{appointments: []models.Appointment{
			{ID: "appt-1", StartTime: monday.Add(10 * time.Hour), EndTime: monday.Add(11 * time.Hour)},
		}},
		&fakeCalendarGateway{},
	)
	audit := uc.AuditService.(*recordedAudit)

	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(10*time.Hour+30*time.Minute), 30)
	require.NoError(t, err)
	require.False(t, available)

	require.Len(t, audit.records, 1)
	assert.Equal(t, constvars.AuditActionAvailabilityCheck, audit.records[0].Action)
	assert.Equal(t, constvars.AuditOutcomeDenied, audit.records[0].Outcome)
	assert.Equal(t, stageLocalOverlap, audit.records[0].Detail)
}

func TestIsAvailableFailsOpenOnRemoteError(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{err: errors.New("deadline exceeded")},
	)

	available, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(10*time.Hour), 60)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableRejectsNonPositiveDuration(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{},
	)

	_, err := uc.IsAvailable(context.Background(), "doc-1", monday.Add(10*time.Hour), 0)
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, 400, customErr.StatusCode)
}

func TestIsAvailableUnknownDoctor(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: nil},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{},
	)

	_, err := uc.IsAvailable(context.Background(), "ghost", monday.Add(10*time.Hour), 60)
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, 404, customErr.StatusCode)
}

func TestGetDoctorAvailabilityEnumeratesFreeSlots(t *testing.T) {
	booked := models.Appointment{
		ID:        "appt-a",
		DoctorID:  "doc-1",
		StartTime: monday.Add(9 * time.Hour),
		EndTime:   monday.Add(10 * time.Hour),
		Status:    models.AppointmentConfirmed,
	}
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{appointments: []models.Appointment{booked}},
		&fakeCalendarGateway{},
	)

	from := monday.Add(9 * time.Hour)
	to := monday.Add(11 * time.Hour)
	result, err := uc.GetDoctorAvailability(context.Background(), "doc-1", from, to)
	require.NoError(t, err)

	// The 09:00-10:00 hour is booked; only 10:00 and 10:30 remain.
	require.Len(t, result.Slots, 2)
	assert.Equal(t, monday.Add(10*time.Hour), result.Slots[0].StartTime)
	assert.Equal(t, monday.Add(10*time.Hour+30*time.Minute), result.Slots[1].StartTime)
}

func TestGetDoctorAvailabilityDegradesWithoutRemote(t *testing.T) {
	uc := newTestUsecase(
		&fakeDoctorService{workingHours: weekdayHours()},
		&fakeAppointmentRepository{},
		&fakeCalendarGateway{err: errors.New("upstream down")},
	)

	result, err := uc.GetDoctorAvailability(context.Background(), "doc-1", monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Len(t, result.Slots, 2)
}
