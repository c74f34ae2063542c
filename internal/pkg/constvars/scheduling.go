package constvars

// Appointment statuses.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

// Appointment types accepted on booking. TypeExternal marks stubs
// materialized from remote calendar events during a sync run.
const (
	AppointmentTypeConsultation = "consultation"
	AppointmentTypeFollowUp     = "follow_up"
	AppointmentTypeProcedure    = "procedure"
	AppointmentTypeExternal     = "external"
)

// DefaultSyncCronSpec is both the config default and the worker's fallback
// cadence when the configured spec does not parse.
const DefaultSyncCronSpec = "@every 30m"

// Redis key formats.
const (
	RedisKeyBookingLockFormat  = "booking:doctor:%s"
	RedisKeyRefreshLockFormat  = "gcal:refresh:%s"
	RedisKeySyncLeaderLock     = "gcal:sync:leader"
	RedisKeyConnStatusFormat   = "gcal:status:%s"
	RedisConnStatusCacheExpiry = 60
)

// Audit actions emitted by the subsystem.
const (
	AuditActionAvailabilityCheck  = "availability.check"
	AuditActionAppointmentCreate  = "appointment.create"
	AuditActionAppointmentUpdate  = "appointment.update"
	AuditActionAppointmentCancel  = "appointment.cancel"
	AuditActionEventCreate        = "calendar.event.create"
	AuditActionEventUpdate        = "calendar.event.update"
	AuditActionEventDelete        = "calendar.event.delete"
	AuditActionCalendarConnect    = "calendar.connect"
	AuditActionCalendarDisconnect = "calendar.disconnect"
	AuditActionTokenRefresh       = "calendar.token.refresh"
	AuditActionSyncRun            = "calendar.sync.run"
)

const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
	AuditOutcomeDenied  = "denied"
)

// Google Calendar event flags relevant to busy computation.
const (
	GoogleEventStatusCancelled   = "cancelled"
	GoogleEventTransparencyFree  = "transparent"
	GoogleCalendarPrimary        = "primary"
)
