package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"numeric":  "must be a number",
	"oneof":    "must be one of [%s]",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"lt":       "must be less than %s",
	"lte":      "must be less than or equal to %s",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"datetime": "must be a valid timestamp",

	"appointment_type": "must be one of consultation, follow_up, procedure",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
	"gt":    true,
	"gte":   true,
	"lt":    true,
	"lte":   true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "cannot process the request"
	ErrClientSomethingWrongWithApplication = "something is wrong with the application, please contact the administrator"
	ErrClientDoctorNotFound                = "doctor not found"
	ErrClientPatientNotFound               = "patient not found"
	ErrClientAppointmentNotFound           = "appointment not found"
	ErrClientSlotNotAvailable              = "the requested time slot is not available"
	ErrClientInvalidDuration               = "appointment duration must be greater than zero"
	ErrClientInvalidAppointmentType        = "unknown appointment type"
	ErrClientInvalidStatusTransition       = "the appointment cannot change to the requested status"
	ErrClientAppointmentAlreadyCancelled   = "appointment is already cancelled"
	ErrClientCalendarNotConnected          = "no calendar is connected for this doctor"
	ErrClientCalendarUnavailable           = "the external calendar is temporarily unreachable"
	ErrClientCalendarAuthExpired           = "calendar authorization expired, please reconnect"
	ErrClientCalendarAuthRevoked           = "calendar access was revoked, please reconnect"
	ErrClientInvalidOAuthState             = "invalid authorization state parameter"
	ErrClientServerLongRespond             = "server takes too long to respond"
)

// Error messages for developers
const (
	ErrDevValidationFailed        = "request validation failed"
	ErrDevCannotParseRequestBody  = "cannot parse request body"
	ErrDevCannotMarshalJSON       = "cannot marshal value to JSON"
	ErrDevCannotUnmarshalJSON     = "cannot unmarshal JSON value"
	ErrDevMongoOperationFailed    = "mongo operation failed"
	ErrDevRedisOperationFailed    = "redis operation failed"
	ErrDevAMQPPublishFailed       = "amqp publish failed"
	ErrDevDoctorNotFound          = "doctor profile does not exist"
	ErrDevPatientNotFound         = "patient does not exist"
	ErrDevAppointmentNotFound     = "appointment document does not exist"
	ErrDevCredentialNotFound      = "no active calendar credential for doctor"
	ErrDevSlotConflict            = "candidate interval overlaps an active appointment or busy window"
	ErrDevInvalidTransition       = "appointment status transition rejected"
	ErrDevDoubleCancel            = "cancel requested on an already cancelled appointment"
	ErrDevOAuthStateMissingDoctor = "state token does not carry a doctor_id claim"
	ErrDevOAuthExchangeFailed     = "authorization code exchange failed"
	ErrDevTokenRefreshFailed      = "refresh token exchange failed"
	ErrDevRemoteCalendarFailed    = "remote calendar call failed"
	ErrDevTokenCipherFailed       = "refresh token encryption/decryption failed"
	ErrDevServerDeadlineExceeded  = "request deadline exceeded"
	ErrDevMissingRequestID        = "request id missing from context"
)
