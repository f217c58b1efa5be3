package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/datasource"
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/navigation"
	"github.com/spec-kit/pao-metrics/internal/notify"
	"github.com/spec-kit/pao-metrics/internal/plan"
	"github.com/spec-kit/pao-metrics/internal/session"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

const (
	demoNoticeKey = "demo-mode"

	msgUnconfigured = "Backend credentials were not found or are still set to placeholder values. Demo data is being displayed."
	msgTimedOut     = "The backend did not respond in time. Demo data is being displayed."
)

// ProfileWriter persists profile changes in live mode.
type ProfileWriter interface {
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

// ShellConfig carries everything one client's shell is built from.
type ShellConfig struct {
	ClientID    string
	Demo        bool
	Auth        session.AuthProvider
	Profiles    session.ProfileStore
	Writer      ProfileWriter
	Store       datasource.Store
	Mock        datasource.Dataset
	Gate        *navigation.Gate
	Generator   plan.Generator
	DemoTimeout time.Duration
	Logger      *zap.Logger
}

// Shell is the application state tree of one browser client: identity,
// profile, active view and collections, kept current by the resolver.
type Shell struct {
	clientID    string
	gate        *navigation.Gate
	writer      ProfileWriter
	resolver    *session.Resolver
	data        *datasource.Switch
	notices     *notify.Center
	wizard      *plan.Wizard
	demoTimeout time.Duration
	logger      *zap.Logger

	mu         sync.RWMutex
	identity   *domain.Identity
	profile    *domain.Profile
	loading    bool
	demo       bool
	activeView domain.ViewID
	lastSeen   time.Time
	demoTimer  *time.Timer

	cancel    context.CancelFunc
	handle    *session.Handle
	done      chan struct{}
	closeOnce sync.Once
}

// NewShell builds a shell. Start must be called before use.
func NewShell(cfg ShellConfig) *Shell {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("client_id", cfg.ClientID))
	notices := notify.NewCenter(logger)

	store := cfg.Store
	if cfg.Demo {
		store = nil
	}

	return &Shell{
		clientID: cfg.ClientID,
		gate:     cfg.Gate,
		writer:   cfg.Writer,
		resolver: session.NewResolver(session.Config{
			Demo:     cfg.Demo,
			Auth:     cfg.Auth,
			Profiles: cfg.Profiles,
			Notifier: notices,
			Logger:   logger,
		}),
		data:        datasource.NewSwitch(store, cfg.Mock, notices, logger),
		notices:     notices,
		wizard:      plan.NewWizard(cfg.Generator, logger),
		demoTimeout: cfg.DemoTimeout,
		logger:      logger,
		activeView:  domain.ViewDashboard,
		loading:     !cfg.Demo,
		lastSeen:    time.Now(),
		done:        make(chan struct{}),
	}
}

// Start begins resolution. In demo mode the fallback state is in place when Start returns.
func (s *Shell) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	if s.resolver.Demo() {
		s.mu.Lock()
		s.enterDemoLocked()
		s.mu.Unlock()
		s.notices.Once(demoNoticeKey, notify.LevelError, msgUnconfigured)
	}

	handle, err := s.resolver.Start(ctx)
	if err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.handle = handle

	go s.loop(ctx)
	return nil
}

// Close stops the resolver and waits for the shell loop to exit.
func (s *Shell) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.stopDemoTimerLocked()
		s.mu.Unlock()
		if s.cancel != nil {
			s.cancel()
		}
		if s.handle != nil {
			s.handle.Cancel()
			<-s.done
		}
	})
}

func (s *Shell) loop(ctx context.Context) {
	defer close(s.done)
	for u := range s.handle.Updates() {
		s.apply(ctx, u)
	}
}

func (s *Shell) apply(ctx context.Context, u session.Update) {
	s.mu.Lock()
	if s.demo && !u.Demo {
		s.mu.Unlock()
		return
	}

	switch u.Kind {
	case session.UpdateLoadingStarted:
		s.loading = true
		s.armDemoTimerLocked()
		s.mu.Unlock()
	case session.UpdateLoadingFinished:
		s.loading = false
		s.stopDemoTimerLocked()
		s.mu.Unlock()
	case session.UpdateIdentity:
		s.identity = u.Identity
		s.mu.Unlock()
	case session.UpdateResolved:
		if u.Demo {
			if !s.demo {
				s.enterDemoLocked()
			}
			s.mu.Unlock()
			return
		}
		s.identity = u.Identity
		s.profile = u.Profile
		s.activeView = s.gate.Enforce(s.profile, s.activeView)
		s.mu.Unlock()

		switch {
		case u.Identity == nil:
			s.data.Clear()
		case u.FetchData:
			s.data.Load(ctx, u.Identity.UserID)
		}
	default:
		s.mu.Unlock()
	}
}

func (s *Shell) enterDemoLocked() {
	profile := domain.FallbackProfile()
	s.demo = true
	s.identity = nil
	s.profile = &profile
	s.loading = false
	s.activeView = s.gate.Enforce(s.profile, s.activeView)
	s.data.UseMock()
}

func (s *Shell) armDemoTimerLocked() {
	if s.demoTimeout <= 0 {
		return
	}
	s.stopDemoTimerLocked()
	s.demoTimer = time.AfterFunc(s.demoTimeout, s.demoDeadline)
}

func (s *Shell) stopDemoTimerLocked() {
	if s.demoTimer != nil {
		s.demoTimer.Stop()
		s.demoTimer = nil
	}
}

// demoDeadline downgrades to demo mode when loading outlived the wait
// window without a session appearing.
func (s *Shell) demoDeadline() {
	s.mu.Lock()
	if s.demo || !s.loading || s.identity != nil {
		s.mu.Unlock()
		return
	}
	s.logger.Warn("session resolution timed out; switching to demo mode", zap.Duration("timeout", s.demoTimeout))
	s.resolver.Demote()
	s.enterDemoLocked()
	s.demoTimer = nil
	s.mu.Unlock()

	s.notices.Once(demoNoticeKey, notify.LevelError, msgTimedOut)
}

// Touch records client activity for idle eviction.
func (s *Shell) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (s *Shell) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// ClientID returns the browser client the shell belongs to.
func (s *Shell) ClientID() string {
	return s.clientID
}

// Notifications exposes the client's notification center.
func (s *Shell) Notifications() *notify.Center {
	return s.notices
}

// Wizard exposes the client's plan builder.
func (s *Shell) Wizard() *plan.Wizard {
	return s.wizard
}

// Revalidate re-checks the session without the loading flag, as on tab re-focus.
func (s *Shell) Revalidate() {
	s.resolver.Revalidate()
}

// Identity returns the current identity, or nil.
func (s *Shell) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Profile returns the current profile, or nil.
func (s *Shell) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Demo reports whether the shell serves demo data.
func (s *Shell) Demo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demo
}

// IsViewAllowed applies the navigation gate to the current profile.
func (s *Shell) IsViewAllowed(view domain.ViewID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate.IsViewAllowed(s.profile, view)
}

// SetActiveView stores view as active and returns what remains stored after
// the gate re-check: a disallowed view resets to the dashboard.
func (s *Shell) SetActiveView(view domain.ViewID) domain.ViewID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeView = s.gate.Enforce(s.profile, view)
	return s.activeView
}

// Collections returns a copy of the current collections.
func (s *Shell) Collections() datasource.Dataset {
	return s.data.Collections()
}

// AddKpiEntry records an entry and, on success, switches to the table view.
func (s *Shell) AddKpiEntry(ctx context.Context, entry domain.KpiEntry) (domain.KpiEntry, error) {
	created, err := s.data.AddKpiEntry(ctx, s.userID(), entry)
	if err != nil {
		return domain.KpiEntry{}, err
	}
	s.SetActiveView(domain.ViewTable)
	return created, nil
}

// AddCampaign records a campaign.
func (s *Shell) AddCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	return s.data.AddCampaign(ctx, s.userID(), campaign)
}

// AddGoal records a goal.
func (s *Shell) AddGoal(ctx context.Context, goal domain.Goal) (domain.Goal, error) {
	return s.data.AddGoal(ctx, s.userID(), goal)
}

// UpdateProfile merges patch into the active profile. Live mode persists the
// avatar first and leaves the profile untouched if that fails.
func (s *Shell) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.Profile, error) {
	s.mu.RLock()
	demo, identity, hasProfile := s.demo, s.identity, s.profile != nil
	s.mu.RUnlock()
	if !hasProfile {
		return domain.Profile{}, apperrors.NewUnauthorized("no active profile")
	}

	if !demo && patch.AvatarURL != nil && identity != nil && s.writer != nil {
		if err := s.writer.UpdateAvatar(ctx, identity.UserID, *patch.AvatarURL); err != nil {
			s.logger.Error("update avatar", zap.Error(err))
			msg := "Error: " + err.Error()
			s.notices.Notify(notify.LevelError, msg)
			return domain.Profile{}, apperrors.NewUpstreamError(msg, err)
		}
	}

	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return domain.Profile{}, apperrors.NewUnauthorized("no active profile")
	}
	merged := s.profile.Merge(patch)
	s.profile = &merged
	s.mu.Unlock()

	s.notices.Notify(notify.LevelSuccess, "Profile updated successfully!")
	return merged, nil
}

func (s *Shell) userID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.UserID
}
