package domain

import "time"

// DefaultSubject names the session used when the caller does not pick one.
const DefaultSubject = "default"

// Session is the persisted token pair for one local profile.
type Session struct {
	Subject      string    `db:"subject"       json:"subject"`
	UserID       string    `db:"user_id"       json:"user_id"`
	AccessToken  string    `db:"access_token"  json:"access_token"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"    json:"expires_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
