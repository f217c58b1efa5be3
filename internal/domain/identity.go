package domain

import "time"

// Identity is the authenticated-user handle.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Session is an auth-provider session bound to one client.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Identity  `json:"user"`
}

// Expired reports whether the session access token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && now.After(s.ExpiresAt))
}
