package app

import (
	"github.com/spec-kit/pao-metrics/internal/datasource"
	"github.com/spec-kit/pao-metrics/internal/domain"
)

// Snapshot is a consistent read of the shell state.
type Snapshot struct {
	ClientID   string
	Identity   *domain.Identity
	Profile    *domain.Profile
	Loading    bool
	Demo       bool
	ActiveView domain.ViewID
	// EffectiveView is what renders: the dashboard whenever the profile is
	// missing or the stored view is not allowed.
	EffectiveView domain.ViewID
	Navigation    []domain.NavigationItem
	Collections   datasource.Dataset
}

// Snapshot returns the current state.
func (s *Shell) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		ClientID:      s.clientID,
		Loading:       s.loading,
		Demo:          s.demo,
		ActiveView:    s.activeView,
		EffectiveView: s.gate.Effective(s.profile, s.activeView),
		Navigation:    s.gate.Visible(s.profile),
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	s.mu.RUnlock()

	snap.Collections = s.data.Collections()
	return snap
}
