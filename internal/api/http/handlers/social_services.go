package handlers

import (
	"github.com/spec-kit/pao-metrics/internal/app"
	"github.com/spec-kit/pao-metrics/internal/social"
)

// SocialServices pairs the team feed backed by the live store with the
// in-memory one served to demo shells.
type SocialServices struct {
	Live *social.Service
	Demo *social.Service
}

// For picks the service a shell may use. Only a live shell with a
// signed-in identity reaches the live store; a shell downgraded to demo
// after the wait window gets the in-memory store like any demo shell.
func (s SocialServices) For(shell *app.Shell) *social.Service {
	if s.Live == nil || shell.Demo() || shell.Identity() == nil {
		return s.Demo
	}
	return s.Live
}
