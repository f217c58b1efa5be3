package dto

import (
	"time"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// CredentialsRequest payload for sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest payload for PATCH /auth/user.
type UpdateUserRequest struct {
	Email string `json:"email"`
}

// SessionResponse is returned by the auth endpoints.
type SessionResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        domain.Identity `json:"user"`
}

func NewSessionResponse(s *domain.Session) SessionResponse {
	if s == nil {
		return SessionResponse{}
	}
	return SessionResponse{AccessToken: s.AccessToken, ExpiresAt: s.ExpiresAt, User: s.User}
}
