package session

import (
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/notify"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

const (
	msgTableMissing   = "Database error: A required table is missing. Run the setup SQL."
	msgProfileFailure = "Error fetching user profile."
)

// MapProfileRow converts a stored profile row into the active profile.
// A missing or unknown role becomes staff; a missing team becomes the
// NoTeamID sentinel named "No Team".
func MapProfileRow(row *repository.ProfileRow) domain.Profile {
	if row == nil {
		return domain.UnknownTeamProfile()
	}
	profile := domain.Profile{
		Role:     domain.RoleStaff,
		TeamID:   domain.NoTeamID,
		TeamName: domain.TeamNameNone,
	}
	if row.Role != nil {
		profile.Role = domain.ParseRole(*row.Role)
	}
	if row.TeamID != nil {
		profile.TeamID = *row.TeamID
	}
	if row.TeamName != nil {
		profile.TeamName = *row.TeamName
	}
	if row.AvatarURL != nil {
		profile.AvatarURL = *row.AvatarURL
	}
	return profile
}

// profileFailure picks the degraded profile and user message for a lookup error.
// An empty message means the condition is not worth a notification.
func profileFailure(err error) (domain.Profile, notify.Level, string) {
	switch {
	case repository.IsNoRows(err):
		return domain.UnknownTeamProfile(), "", ""
	case repository.IsUndefinedTable(err):
		return domain.ErrorProfile(), notify.LevelError, msgTableMissing
	default:
		return domain.ErrorProfile(), notify.LevelError, msgProfileFailure
	}
}
