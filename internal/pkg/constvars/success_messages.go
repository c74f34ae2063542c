package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Appointment messages
	AppointmentCreatedSuccess   = "appointment created successfully"
	AppointmentUpdatedSuccess   = "appointment updated successfully"
	AppointmentCancelledSuccess = "appointment cancelled successfully"
	GetAppointmentSuccess       = "appointments retrieved successfully"
	AvailabilityCheckSuccess    = "availability computed successfully"

	// Calendar messages
	AuthURLGeneratedSuccess      = "authorization url generated"
	CalendarConnectedSuccess     = "calendar connected successfully"
	CalendarDisconnectedSuccess  = "calendar disconnected successfully"
	ConnectionStatusSuccess      = "connection status retrieved"
	TokenRefreshedSuccess        = "access token refreshed"
	CalendarSyncCompletedSuccess = "calendar sync completed"
)
