package domain

// NoTeamID is the sentinel team id for profiles without a team.
const NoTeamID int64 = -1

const (
	TeamNameNone    = "No Team"
	TeamNameUnknown = "Unknown Team"
	TeamNameError   = "Error"
)

// Profile is the active user's role and team context.
type Profile struct {
	Role      Role   `json:"role"`
	TeamID    int64  `json:"team_id"`
	TeamName  string `json:"team_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ProfilePatch carries a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	AvatarURL *string
	TeamName  *string
}

// Merge returns a copy of p with the patch applied.
func (p Profile) Merge(patch ProfilePatch) Profile {
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.TeamName != nil {
		p.TeamName = *patch.TeamName
	}
	return p
}

// HasTeam reports whether the profile is attached to a real team.
func (p Profile) HasTeam() bool {
	return p.TeamID > 0
}

// FallbackProfile is the fixed identity used in demo mode.
func FallbackProfile() Profile {
	return Profile{Role: RoleChief, TeamID: 101, TeamName: "Public Affairs Office"}
}

// UnknownTeamProfile is synthesized when no profile record exists.
func UnknownTeamProfile() Profile {
	return Profile{Role: RoleStaff, TeamID: NoTeamID, TeamName: TeamNameUnknown}
}

// ErrorProfile is synthesized when the profile lookup fails.
func ErrorProfile() Profile {
	return Profile{Role: RoleStaff, TeamID: NoTeamID, TeamName: TeamNameError}
}
