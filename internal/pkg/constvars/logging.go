package constvars

const (
	LoggingRequestIDKey         = "request_id"
	LoggingDoctorIDKey          = "doctor_id"
	LoggingPatientIDKey         = "patient_id"
	LoggingAppointmentIDKey     = "appointment_id"
	LoggingExternalEventIDKey   = "external_event_id"
	LoggingCalendarIDKey        = "calendar_id"
	LoggingStartTimeKey         = "start_time"
	LoggingEndTimeKey           = "end_time"
	LoggingDurationMinutesKey   = "duration_minutes"
	LoggingStatusKey            = "status"
	LoggingMethodKey            = "method"
	LoggingEndpointKey          = "endpoint"
	LoggingRemoteAddrKey        = "remote_addr"
	LoggingUserAgentKey         = "user_agent"
	LoggingQueryKey             = "query"
	LoggingStatusCodeKey        = "status_code"
	LoggingDurationKey          = "duration"
	LoggingSuccessKey           = "success"
	LoggingResponseLengthKey    = "response_length"
	LoggingEventCountKey        = "event_count"
	LoggingTotalEventsKey       = "total_events"
	LoggingNewAppointmentsKey   = "new_appointments"
	LoggingUpdatedKey           = "updated_appointments"
	LoggingErrorCountKey        = "error_count"
	LoggingRedisKey             = "redis_key"
	LoggingLockValueKey         = "lock_value"
	LoggingLockExpirationKey    = "lock_expiration"
	LoggingAuditActionKey       = "audit_action"
	LoggingConnectedDoctorsKey  = "connected_doctors"
	LoggingTokenExpiryKey       = "token_expiry"
	LoggingAvailabilityStageKey = "stage"
	LoggingCronSpecKey          = "cron_spec"
)
