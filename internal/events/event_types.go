package events

import (
	"time"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// AuthEventKind enumerates auth-state change notifications.
type AuthEventKind string

const (
	AuthSignedIn       AuthEventKind = "SIGNED_IN"
	AuthSignedOut      AuthEventKind = "SIGNED_OUT"
	AuthUserUpdated    AuthEventKind = "USER_UPDATED"
	AuthTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
)

// AuthEvent carries an auth-state change for one client.
// Session is nil when the client has no active session.
type AuthEvent struct {
	Kind      AuthEventKind   `json:"kind"`
	ClientID  string          `json:"client_id"`
	Session   *domain.Session `json:"session,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Reresolves reports whether the event requires a full profile resolution.
func (k AuthEventKind) Reresolves() bool {
	switch k {
	case AuthSignedIn, AuthSignedOut, AuthUserUpdated:
		return true
	default:
		return false
	}
}
