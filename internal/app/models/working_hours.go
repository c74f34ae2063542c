package models

import "time"

// DayWindow is the configured open window for a single weekday, expressed as
// HH:MM wall-clock strings in the doctor's timezone. Available=false marks
// the whole day closed regardless of the window values.
type DayWindow struct {
	Start     string `bson:"start" json:"start"`
	End       string `bson:"end" json:"end"`
	Available bool   `bson:"available" json:"available"`
}

// WorkingHours is owned by the doctor profile collaborator and read-only to
// this subsystem.
type WorkingHours struct {
	Monday    DayWindow `bson:"monday" json:"monday"`
	Tuesday   DayWindow `bson:"tuesday" json:"tuesday"`
	Wednesday DayWindow `bson:"wednesday" json:"wednesday"`
	Thursday  DayWindow `bson:"thursday" json:"thursday"`
	Friday    DayWindow `bson:"friday" json:"friday"`
	Saturday  DayWindow `bson:"saturday" json:"saturday"`
	Sunday    DayWindow `bson:"sunday" json:"sunday"`

	CancellationNoticeHours    int     `bson:"cancellation_notice_hours" json:"cancellation_notice_hours"`
	CancellationPenaltyPercent float64 `bson:"cancellation_penalty_percent" json:"cancellation_penalty_percent"`
}

// ForWeekday resolves the window configured for the given weekday.
func (wh *WorkingHours) ForWeekday(wd time.Weekday) DayWindow {
	switch wd {
	case time.Monday:
		return wh.Monday
	case time.Tuesday:
		return wh.Tuesday
	case time.Wednesday:
		return wh.Wednesday
	case time.Thursday:
		return wh.Thursday
	case time.Friday:
		return wh.Friday
	case time.Saturday:
		return wh.Saturday
	default:
		return wh.Sunday
	}
}
