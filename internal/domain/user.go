package domain

import (
	"strings"
	"time"
)

// User is a sign-in account. Its profile row carries the role and team.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the stored form of an address: trimmed and lowercased.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
