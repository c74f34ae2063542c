package googlecalendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/exceptions"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var (
	calendarGatewayInstance contracts.CalendarGateway
	onceCalendarGateway     sync.Once
)

type calendarGateway struct {
	OAuthUsecase   contracts.CalendarOAuthUsecase
	AuditService   contracts.AuditService
	InternalConfig *config.InternalConfig
	Log            *zap.Logger
}

func NewCalendarGateway(
	oauthUsecase contracts.CalendarOAuthUsecase,
	auditService contracts.AuditService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.CalendarGateway {
	onceCalendarGateway.Do(func() {
		instance := &calendarGateway{
			OAuthUsecase:   oauthUsecase,
			AuditService:   auditService,
			InternalConfig: internalConfig,
			Log:            logger,
		}
		calendarGatewayInstance = instance
	})
	return calendarGatewayInstance
}

// service builds an authenticated calendar client with a fresh token. Every
// remote call runs under the configured fixed timeout; the returned cancel
// must be deferred by the caller.
func (g *calendarGateway) service(ctx context.Context, doctorID string) (*calendar.Service, *models.CalendarCredential, context.Context, context.CancelFunc, error) {
	credential, err := g.OAuthUsecase.EnsureFreshToken(ctx, doctorID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	token := &oauth2.Token{
		AccessToken: credential.AccessToken,
		TokenType:   credential.TokenType,
		Expiry:      credential.ExpiryDate,
	}
	svc, err := calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, nil, nil, nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}

	timeout := time.Duration(g.InternalConfig.GoogleCalendar.CallTimeoutSec) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	return svc, credential, callCtx, cancel, nil
}

func (g *calendarGateway) CreateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	svc, credential, callCtx, cancel, err := g.service(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	defer cancel()

	created, err := svc.Events.Insert(credential.CalendarID, toGoogleEvent(event)).Context(callCtx).Do()
	g.auditMutation(ctx, doctorID, constvars.AuditActionEventCreate, event.ID, err)
	if err != nil {
		g.Log.Error("calendarGateway.CreateEvent remote call failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		return nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}

	normalized, err := normalizeEvent(created, credential.CalendarID)
	if err != nil {
		return nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}

	g.Log.Info("calendarGateway.CreateEvent succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.String(constvars.LoggingExternalEventIDKey, normalized.ID),
	)
	return normalized, nil
}

func (g *calendarGateway) UpdateEvent(ctx context.Context, doctorID string, event *models.ExternalEvent) (*models.ExternalEvent, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	svc, credential, callCtx, cancel, err := g.service(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	defer cancel()

	updated, err := svc.Events.Update(credential.CalendarID, event.ID, toGoogleEvent(event)).Context(callCtx).Do()
	g.auditMutation(ctx, doctorID, constvars.AuditActionEventUpdate, event.ID, err)
	if err != nil {
		g.Log.Error("calendarGateway.UpdateEvent remote call failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.String(constvars.LoggingExternalEventIDKey, event.ID),
			zap.Error(err),
		)
		return nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}

	normalized, err := normalizeEvent(updated, credential.CalendarID)
	if err != nil {
		return nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}
	return normalized, nil
}

func (g *calendarGateway) DeleteEvent(ctx context.Context, doctorID, eventID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	svc, credential, callCtx, cancel, err := g.service(ctx, doctorID)
	if err != nil {
		return err
	}
	defer cancel()

	err = svc.Events.Delete(credential.CalendarID, eventID).Context(callCtx).Do()
	// An already-deleted event keeps the delete idempotent.
	if gerr, ok := err.(*googleapi.Error); ok && (gerr.Code == constvars.StatusNotFound || gerr.Code == constvars.StatusGone) {
		err = nil
	}
	g.auditMutation(ctx, doctorID, constvars.AuditActionEventDelete, eventID, err)
	if err != nil {
		g.Log.Error("calendarGateway.DeleteEvent remote call failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.String(constvars.LoggingExternalEventIDKey, eventID),
			zap.Error(err),
		)
		return exceptions.ErrUpstreamCalendarUnavailable(err)
	}
	return nil
}

func (g *calendarGateway) ListEvents(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.ExternalEvent, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	svc, credential, callCtx, cancel, err := g.service(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := svc.Events.List(credential.CalendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false).
		Context(callCtx).Do()
	if err != nil {
		g.Log.Error("calendarGateway.ListEvents remote call failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		return nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}

	events := make([]models.ExternalEvent, 0, len(result.Items))
	for _, item := range result.Items {
		normalized, err := normalizeEvent(item, credential.CalendarID)
		if err != nil {
			// Malformed remote entries are filtered, never fatal.
			g.Log.Warn("calendarGateway.ListEvents skipping malformed event",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingDoctorIDKey, doctorID),
				zap.Error(err),
			)
			continue
		}
		events = append(events, *normalized)
	}

	g.Log.Info("calendarGateway.ListEvents succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.Int(constvars.LoggingEventCountKey, len(events)),
	)
	return events, nil
}

func (g *calendarGateway) CheckFreeBusy(ctx context.Context, doctorID string, timeMin, timeMax time.Time) ([]models.BusyInterval, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	svc, credential, callCtx, cancel, err := g.service(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: credential.CalendarID}},
	}).Context(callCtx).Do()
	if err != nil {
		g.Log.Error("calendarGateway.CheckFreeBusy remote call failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		return nil, exceptions.ErrUpstreamCalendarUnavailable(err)
	}

	var busy []models.BusyInterval
	for _, cal := range result.Calendars {
		for _, period := range cal.Busy {
			start, err1 := time.Parse(time.RFC3339, period.Start)
			end, err2 := time.Parse(time.RFC3339, period.End)
			if err1 != nil || err2 != nil {
				continue
			}
			busy = append(busy, models.BusyInterval{Start: start, End: end})
		}
	}
	return busy, nil
}

func (g *calendarGateway) auditMutation(ctx context.Context, doctorID, action, eventID string, err error) {
	outcome := constvars.AuditOutcomeSuccess
	detail := ""
	if err != nil {
		outcome = constvars.AuditOutcomeFailure
		detail = err.Error()
	}
	g.AuditService.Record(ctx, models.AuditRecord{
		Actor:      doctorID,
		Action:     action,
		Resource:   "external_event",
		ResourceID: eventID,
		Outcome:    outcome,
		Detail:     detail,
	})
}

func toGoogleEvent(event *models.ExternalEvent) *calendar.Event {
	return &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
	}
}

// normalizeEvent maps the remote event shape into the internal DTO. Events
// without an id or a resolvable time window are reported as malformed.
func normalizeEvent(item *calendar.Event, calendarID string) (*models.ExternalEvent, error) {
	if item == nil || item.Id == "" {
		return nil, fmt.Errorf("event has no id")
	}

	start, err := parseEventTime(item.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s: invalid start: %w", item.Id, err)
	}
	end, err := parseEventTime(item.End)
	if err != nil {
		return nil, fmt.Errorf("event %s: invalid end: %w", item.Id, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("event %s: end is not after start", item.Id)
	}

	timeZone := ""
	if item.Start != nil {
		timeZone = item.Start.TimeZone
	}

	return &models.ExternalEvent{
		ID:           item.Id,
		CalendarID:   calendarID,
		Summary:      item.Summary,
		Description:  item.Description,
		Start:        start,
		End:          end,
		TimeZone:     timeZone,
		Status:       item.Status,
		Transparency: item.Transparency,
	}, nil
}

func parseEventTime(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing date time")
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	if edt.Date != "" {
		// All-day events carry a date only.
		return time.Parse(time.DateOnly, edt.Date)
	}
	return time.Time{}, fmt.Errorf("missing date time")
}
