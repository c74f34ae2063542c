package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/dto/requests"
	"praxis-service/internal/pkg/dto/responses"
	"praxis-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryAppointmentRepository struct {
	byID      map[string]*models.Appointment
	createErr error
}

func newMemoryAppointmentRepository() *memoryAppointmentRepository {
	return &memoryAppointmentRepository{byID: map[string]*models.Appointment{}}
}

func (r *memoryAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *appointment
	r.byID[appointment.ID] = &copied
	return nil
}

func (r *memoryAppointmentRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	if appointment, ok := r.byID[appointmentID]; ok {
		copied := *appointment
		return &copied, nil
	}
	return nil, nil
}

func (r *memoryAppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	copied := *appointment
	r.byID[appointment.ID] = &copied
	return nil
}

func (r *memoryAppointmentRepository) FindActiveByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appointment := range r.byID {
		if appointment.DoctorID == doctorID && appointment.IsActive() {
			out = append(out, *appointment)
		}
	}
	return out, nil
}

func (r *memoryAppointmentRepository) FindActiveByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appointment := range r.byID {
		if appointment.DoctorID == doctorID && appointment.IsActive() && appointment.Overlaps(from, to) {
			out = append(out, *appointment)
		}
	}
	return out, nil
}

func (r *memoryAppointmentRepository) FindByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appointment := range r.byID {
		if appointment.DoctorID == doctorID && appointment.Overlaps(from, to) {
			out = append(out, *appointment)
		}
	}
	return out, nil
}

func (r *memoryAppointmentRepository) FindByExternalEventID(ctx context.Context, doctorID, externalEventID string) (*models.Appointment, error) {
	for _, appointment := range r.byID {
		if appointment.DoctorID == doctorID && appointment.ExternalEventID == externalEventID {
			copied := *appointment
			return &copied, nil
		}
	}
	return nil, nil
}

type stubAvailability struct {
	available bool
	err       error
	excluded  string
}

func (s *stubAvailability) IsAvailable(ctx context.Context, doctorID string, start time.Time, durationMinutes int) (bool, error) {
	return s.available, s.err
}

func (s *stubAvailability) IsAvailableExcluding(ctx context.Context, doctorID string, start time.Time, durationMinutes int, excludeAppointmentID string) (bool, error) {
	s.excluded = excludeAppointmentID
	return s.available, s.err
}

func (s *stubAvailability) GetDoctorAvailability(ctx context.Context, doctorID string, from, to time.Time) (*responses.DoctorAvailability, error) {
	return nil, s.err
}

type stubPatientService struct {
	exists bool
}

func (s *stubPatientService) Exists(ctx context.Context, patientID string) (bool, error) {
	return s.exists, nil
}

type recordingGateway struct {
	events        []models.ExternalEvent
	createErr     error
	listErr       error
	deletedEvents []string
	createdEvents int
}

func (g *recordingGateway) CreateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.createdEvents++
	created := *event
	created.ID = "remote-evt-1"
	created.CalendarID = "primary"
	return &created, nil
}

func (g *recordingGateway) UpdateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error) {
	return event, nil
}

func (g *recordingGateway) DeleteEvent(ctx context.Context, doctorID, eventID string) error {
	g.deletedEvents = append(g.deletedEvents, eventID)
	return nil
}

func (g *recordingGateway) ListEvents(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.ExternalEvent, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.events, nil
}

func (g *recordingGateway) CheckFreeBusy(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.BusyInterval, error) {
	return nil, nil
}

type stubLocker struct {
	acquired bool
	err      error
	unlocked int
}

func (l *stubLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	if l.err != nil {
		return false, "", l.err
	}
	return l.acquired, "lock-value", nil
}

func (l *stubLocker) Unlock(ctx context.Context, key, lockValue string) error {
	l.unlocked++
	return nil
}

func (l *stubLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return nil
}

type recordingAudit struct {
	records []models.AuditRecord
}

func (a *recordingAudit) Record(ctx context.Context, record models.AuditRecord) {
	a.records = append(a.records, record)
}

type fixture struct {
	uc           *appointmentUsecase
	repo         *memoryAppointmentRepository
	availability *stubAvailability
	gateway      *recordingGateway
	locker       *stubLocker
	audit        *recordingAudit
}

func newFixture() *fixture {
	f := &fixture{
		repo:         newMemoryAppointmentRepository(),
		availability: &stubAvailability{available: true},
		gateway:      &recordingGateway{},
		locker:       &stubLocker{acquired: true},
		audit:        &recordingAudit{},
	}
	f.uc = &appointmentUsecase{
		AppointmentRepository: f.repo,
		AvailabilityUsecase:   f.availability,
		PatientService:        &stubPatientService{exists: true},
		CalendarGateway:       f.gateway,
		LockerService:         f.locker,
		AuditService:          f.audit,
		InternalConfig: &config.InternalConfig{
			Scheduling: config.Scheduling{BookingLockTTLSec: 10},
		},
		Log: zap.NewNop(),
	}
	return f
}

var bookingStart = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func createRequest() *requests.CreateAppointmentRequest {
	patientID := "11111111-1111-1111-1111-111111111111"
	return &requests.CreateAppointmentRequest{
		DoctorID:        "22222222-2222-2222-2222-222222222222",
		PatientID:       &patientID,
		StartTime:       bookingStart,
		DurationMinutes: 60,
		Type:            constvars.AppointmentTypeConsultation,
	}
}

func TestCreateAppointmentBooksAndMirrors(t *testing.T) {
	f := newFixture()

	created, err := f.uc.CreateAppointment(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, constvars.AppointmentStatusScheduled, created.Status)
	assert.Equal(t, bookingStart.Add(time.Hour), created.EndTime)
	assert.Equal(t, 1, f.locker.unlocked)
	assert.Equal(t, 1, f.gateway.createdEvents)

	stored, err := f.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote-evt-1", stored.ExternalEventID)
}

func TestCreateAppointmentDegradesWhenLockStoreDown(t *testing.T) {
	f := newFixture()
	f.locker.err = errors.New("redis unreachable")

	created, err := f.uc.CreateAppointment(context.Background(), createRequest())
	require.NoError(t, err)
	assert.Equal(t, constvars.AppointmentStatusScheduled, created.Status)
	assert.Equal(t, 0, f.locker.unlocked)
}

func TestCreateAppointmentRejectsContendedLock(t *testing.T) {
	f := newFixture()
	f.locker.acquired = false

	_, err := f.uc.CreateAppointment(context.Background(), createRequest())
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestCreateAppointmentRejectsUnavailableSlot(t *testing.T) {
	f := newFixture()
	f.availability.available = false

	_, err := f.uc.CreateAppointment(context.Background(), createRequest())
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
	assert.Equal(t, 1, f.locker.unlocked)

	require.Len(t, f.audit.records, 1)
	assert.Equal(t, constvars.AuditOutcomeDenied, f.audit.records[0].Outcome)
}

func TestCreateAppointmentSurvivesMirrorFailure(t *testing.T) {
	f := newFixture()
	f.gateway.createErr = errors.New("remote down")

	created, err := f.uc.CreateAppointment(context.Background(), createRequest())
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ExternalEventID)
}

func TestCreateAppointmentRejectsUnknownPatient(t *testing.T) {
	f := newFixture()
	f.uc.PatientService = &stubPatientService{exists: false}

	_, err := f.uc.CreateAppointment(context.Background(), createRequest())
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}

func seedAppointment(f *fixture, status models.AppointmentStatus) *models.Appointment {
	appointment := &models.Appointment{
		ID:              "appt-1",
		DoctorID:        "doc-1",
		StartTime:       bookingStart,
		DurationMinutes: 60,
		EndTime:         bookingStart.Add(time.Hour),
		Type:            constvars.AppointmentTypeConsultation,
		Status:          status,
		ExternalEventID: "remote-evt-1",
	}
	f.repo.byID[appointment.ID] = appointment
	return appointment
}

func TestUpdateAppointmentConfirms(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentScheduled)

	status := constvars.AppointmentStatusConfirmed
	updated, err := f.uc.UpdateAppointment(context.Background(), "appt-1", &requests.UpdateAppointmentRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, constvars.AppointmentStatusConfirmed, updated.Status)
}

func TestUpdateAppointmentRejectsIllegalTransition(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentScheduled)

	// completed requires going through confirmed first
	status := constvars.AppointmentStatusCompleted
	_, err := f.uc.UpdateAppointment(context.Background(), "appt-1", &requests.UpdateAppointmentRequest{Status: &status})
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestUpdateAppointmentRescheduleExcludesSelf(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentScheduled)

	newStart := bookingStart.Add(2 * time.Hour)
	updated, err := f.uc.UpdateAppointment(context.Background(), "appt-1", &requests.UpdateAppointmentRequest{StartTime: &newStart})
	require.NoError(t, err)

	assert.Equal(t, "appt-1", f.availability.excluded)
	assert.Equal(t, newStart, updated.StartTime)
	assert.Equal(t, newStart.Add(time.Hour), updated.EndTime)
}

func TestUpdateAppointmentRescheduleRejectedWhenTaken(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentScheduled)
	f.availability.available = false

	newStart := bookingStart.Add(2 * time.Hour)
	_, err := f.uc.UpdateAppointment(context.Background(), "appt-1", &requests.UpdateAppointmentRequest{StartTime: &newStart})
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.UpdateAppointment(context.Background(), "ghost", &requests.UpdateAppointmentRequest{})
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}

func TestCancelAppointmentDeletesRemoteMirror(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentConfirmed)

	cancelled, err := f.uc.CancelAppointment(context.Background(), "appt-1", &requests.CancelAppointmentRequest{Reason: "patient request"})
	require.NoError(t, err)

	assert.Equal(t, constvars.AppointmentStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, []string{"remote-evt-1"}, f.gateway.deletedEvents)
}

func TestCancelAppointmentTwiceConflicts(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentConfirmed)

	_, err := f.uc.CancelAppointment(context.Background(), "appt-1", &requests.CancelAppointmentRequest{})
	require.NoError(t, err)

	_, err = f.uc.CancelAppointment(context.Background(), "appt-1", &requests.CancelAppointmentRequest{})
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestCancelCompletedAppointmentRejected(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentCompleted)

	_, err := f.uc.CancelAppointment(context.Background(), "appt-1", &requests.CancelAppointmentRequest{})
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
}

func TestListByDoctorJoinsRemoteAndLocal(t *testing.T) {
	f := newFixture()
	linked := seedAppointment(f, models.AppointmentConfirmed)
	localOnly := &models.Appointment{
		ID:              "appt-2",
		DoctorID:        "doc-1",
		StartTime:       bookingStart.Add(3 * time.Hour),
		DurationMinutes: 30,
		EndTime:         bookingStart.Add(3*time.Hour + 30*time.Minute),
		Status:          models.AppointmentScheduled,
	}
	f.repo.byID[localOnly.ID] = localOnly

	f.gateway.events = []models.ExternalEvent{
		{ID: "remote-evt-1", CalendarID: "primary", Start: linked.StartTime, End: linked.EndTime, Status: "confirmed"},
		{ID: "remote-evt-2", CalendarID: "primary", Start: bookingStart.Add(5 * time.Hour), End: bookingStart.Add(6 * time.Hour), Status: "confirmed"},
	}

	result, err := f.uc.ListByDoctor(context.Background(), "doc-1", bookingStart, bookingStart.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, result, 3)

	views := map[string]responses.Appointment{}
	for _, view := range result {
		key := view.ExternalEventID
		if key == "" {
			key = view.ID
		}
		views[key] = view
	}

	joined := views["remote-evt-1"]
	assert.Equal(t, responses.AppointmentSourceRemote, joined.Source)
	assert.Equal(t, "appt-1", joined.ID)
	assert.Equal(t, constvars.AppointmentStatusConfirmed, joined.Status)

	remoteOnly := views["remote-evt-2"]
	assert.Equal(t, responses.AppointmentSourceRemote, remoteOnly.Source)
	assert.Empty(t, remoteOnly.ID)

	local := views["appt-2"]
	assert.Equal(t, responses.AppointmentSourceLocal, local.Source)
}

func TestListByDoctorFallsBackToLocal(t *testing.T) {
	f := newFixture()
	seedAppointment(f, models.AppointmentConfirmed)
	f.gateway.listErr = errors.New("remote down")

	result, err := f.uc.ListByDoctor(context.Background(), "doc-1", bookingStart, bookingStart.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, responses.AppointmentSourceLocal, result[0].Source)
}
