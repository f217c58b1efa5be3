package dto

import "github.com/spec-kit/pao-metrics/internal/domain"

// ProfilePatchRequest payload for PATCH /api/profile. Absent fields are left unchanged.
type ProfilePatchRequest struct {
	AvatarURL *string `json:"avatar_url"`
	TeamName  *string `json:"team_name"`
}

func (r ProfilePatchRequest) ToDomain() domain.ProfilePatch {
	return domain.ProfilePatch{AvatarURL: r.AvatarURL, TeamName: r.TeamName}
}
