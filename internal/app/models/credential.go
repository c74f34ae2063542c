package models

import (
	"time"
)

// CalendarCredential holds the OAuth token set enabling calls to the external
// calendar on a doctor's behalf. At most one active credential exists per
// doctor. RefreshToken is stored encrypted; disconnecting clears the token
// fields but keeps the record for audit history.
type CalendarCredential struct {
	ID           string     `bson:"_id" json:"id"`
	DoctorID     string     `bson:"doctor_id" json:"doctor_id"`
	AccessToken  string     `bson:"access_token" json:"-"`
	RefreshToken string     `bson:"refresh_token" json:"-"`
	TokenType    string     `bson:"token_type" json:"token_type"`
	ExpiryDate   time.Time  `bson:"expiry_date" json:"expiry_date"`
	Scope        string     `bson:"scope" json:"scope"`
	CalendarID   string     `bson:"calendar_id" json:"calendar_id"`
	CalendarName string     `bson:"calendar_name,omitempty" json:"calendar_name,omitempty"`
	IsActive     bool       `bson:"is_active" json:"is_active"`
	LastSyncAt   *time.Time `bson:"last_sync_at,omitempty" json:"last_sync_at,omitempty"`
	NextSyncAt   *time.Time `bson:"next_sync_at,omitempty" json:"next_sync_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsExpired reports whether the access token must be treated as stale. The
// skew guards against a token expiring mid-flight on a remote call.
func (c *CalendarCredential) IsExpired(now time.Time, skew time.Duration) bool {
	return !now.Add(skew).Before(c.ExpiryDate)
}
