package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/events"
	"github.com/spec-kit/pao-metrics/internal/notify"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

const (
	updateBuffer = 8

	msgSessionFailure = "Error initializing authentication session. Please refresh and try again."
)

var (
	// ErrResolutionInProgress is returned when a resolution pass is already running.
	ErrResolutionInProgress = errors.New("session: resolution already in progress")
	// ErrAlreadyStarted is returned by Start on a resolver that was started before.
	ErrAlreadyStarted = errors.New("session: resolver already started")
)

// AuthProvider is the resolver's view of the external auth provider for one client.
type AuthProvider interface {
	GetSession(ctx context.Context) (*domain.Session, error)
	Subscribe() *events.Subscription
}

// ProfileStore looks up the profile row of a user.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*repository.ProfileRow, error)
}

// UpdateKind tags what changed in an Update.
type UpdateKind string

const (
	UpdateLoadingStarted  UpdateKind = "loading_started"
	UpdateLoadingFinished UpdateKind = "loading_finished"
	// UpdateResolved replaces identity and profile wholesale.
	UpdateResolved UpdateKind = "resolved"
	// UpdateIdentity replaces only the identity after a silent token refresh.
	UpdateIdentity UpdateKind = "identity"
)

// Update is one message on the resolver's channel.
type Update struct {
	Kind     UpdateKind
	Identity *domain.Identity
	Profile  *domain.Profile
	Demo     bool
	// FetchData asks the consumer to (re)load the collections for Identity.
	FetchData bool
}

// Config wires a Resolver.
type Config struct {
	// Demo marks the backend as unconfigured. Auth and Profiles are unused then.
	Demo     bool
	Auth     AuthProvider
	Profiles ProfileStore
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Resolver keeps the (identity, profile) pair of one client current.
// It owns the update channel; consumers read it through a Handle.
type Resolver struct {
	demo     bool
	auth     AuthProvider
	profiles ProfileStore
	notifier notify.Notifier
	logger   *zap.Logger

	active       atomic.Bool
	initializing atomic.Bool
	demoted      atomic.Bool
	started      atomic.Bool

	out        chan Update
	revalidate chan struct{}
	stop       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewResolver builds a resolver. Call Start to begin emitting updates.
func NewResolver(cfg Config) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		demo:       cfg.Demo,
		auth:       cfg.Auth,
		profiles:   cfg.Profiles,
		notifier:   cfg.Notifier,
		logger:     logger,
		out:        make(chan Update, updateBuffer),
		revalidate: make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}
}

// Handle is the consumer side of a started resolver.
type Handle struct {
	updates <-chan Update
	cancel  func()
}

// Updates is closed once the resolver stops.
func (h *Handle) Updates() <-chan Update {
	return h.updates
}

// Cancel stops the resolver and waits for its loop to exit.
func (h *Handle) Cancel() {
	h.cancel()
}

// Start runs the initial resolution and, in live mode, follows auth events
// until ctx is done or the handle is cancelled.
func (r *Resolver) Start(ctx context.Context) (*Handle, error) {
	if !r.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}
	r.active.Store(true)

	var sub *events.Subscription
	if !r.demo {
		sub = r.auth.Subscribe()
	}

	r.wg.Add(1)
	go r.run(ctx, sub)

	return &Handle{updates: r.out, cancel: r.Stop}, nil
}

// Stop tears the resolver down. Results of passes still in flight are discarded.
func (r *Resolver) Stop() {
	r.stopOnce.Do(func() {
		r.active.Store(false)
		close(r.stop)
	})
	r.wg.Wait()
}

// Revalidate requests a session re-check without the loading flag.
// Requests made while one is pending are coalesced.
func (r *Resolver) Revalidate() {
	if r.demo || r.demoted.Load() || !r.active.Load() {
		return
	}
	select {
	case r.revalidate <- struct{}{}:
	default:
	}
}

// Demote freezes the resolver after a forced switch to demo mode.
// Auth events and revalidations are ignored from then on.
func (r *Resolver) Demote() {
	r.demoted.Store(true)
}

// Demo reports whether the resolver runs without a backend.
func (r *Resolver) Demo() bool {
	return r.demo || r.demoted.Load()
}

// Resolve runs one resolution pass and returns its result without emitting it.
func (r *Resolver) Resolve(ctx context.Context) (Update, error) {
	if r.demo {
		return demoUpdate(), nil
	}
	if !r.initializing.CompareAndSwap(false, true) {
		return Update{}, ErrResolutionInProgress
	}
	defer r.initializing.Store(false)

	session, err := r.auth.GetSession(ctx)
	if err != nil {
		return Update{}, err
	}
	return r.forSession(ctx, session), nil
}

func (r *Resolver) run(ctx context.Context, sub *events.Subscription) {
	defer r.wg.Done()
	defer close(r.out)
	if sub != nil {
		defer sub.Cancel()
	}

	if r.demo {
		r.emit(ctx, demoUpdate())
		return
	}

	r.pass(ctx, true)
	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			r.handle(ctx, ev)
		case <-r.revalidate:
			if !r.demoted.Load() {
				r.pass(ctx, false)
			}
		}
	}
}

func (r *Resolver) pass(ctx context.Context, showLoading bool) {
	if showLoading {
		r.emit(ctx, Update{Kind: UpdateLoadingStarted})
		defer r.emit(ctx, Update{Kind: UpdateLoadingFinished})
	}

	update, err := r.Resolve(ctx)
	switch {
	case errors.Is(err, ErrResolutionInProgress), ctx.Err() != nil:
		return
	case err != nil:
		r.logger.Error("resolve session", zap.Error(err))
		r.notify(notify.LevelError, msgSessionFailure)
		update = sessionFailure()
	}
	r.emit(ctx, update)
}

func (r *Resolver) handle(ctx context.Context, ev events.AuthEvent) {
	if r.demoted.Load() {
		return
	}
	r.logger.Debug("auth event", zap.String("kind", string(ev.Kind)), zap.String("client_id", ev.ClientID))

	switch {
	case ev.Kind == events.AuthTokenRefreshed:
		if ev.Session == nil {
			r.emit(ctx, Update{Kind: UpdateResolved})
			return
		}
		identity := ev.Session.User
		r.emit(ctx, Update{Kind: UpdateIdentity, Identity: &identity})
	case ev.Kind.Reresolves():
		r.emit(ctx, Update{Kind: UpdateLoadingStarted})
		r.emit(ctx, r.forSession(ctx, ev.Session))
		r.emit(ctx, Update{Kind: UpdateLoadingFinished})
	}
}

// forSession resolves the profile for session. It never fails: lookup errors
// degrade to a synthesized profile.
func (r *Resolver) forSession(ctx context.Context, session *domain.Session) Update {
	if session == nil {
		return Update{Kind: UpdateResolved}
	}
	identity := session.User

	row, err := r.profiles.GetProfile(ctx, identity.UserID)
	if err != nil {
		profile, level, msg := profileFailure(err)
		if msg != "" {
			r.logger.Error("fetch profile", zap.String("user_id", identity.UserID), zap.Error(err))
			r.notify(level, msg)
			return Update{Kind: UpdateResolved, Identity: &identity, Profile: &profile}
		}
		return Update{Kind: UpdateResolved, Identity: &identity, Profile: &profile, FetchData: true}
	}

	profile := MapProfileRow(row)
	return Update{Kind: UpdateResolved, Identity: &identity, Profile: &profile, FetchData: true}
}

func (r *Resolver) emit(ctx context.Context, u Update) {
	if !r.active.Load() {
		return
	}
	select {
	case r.out <- u:
	case <-r.stop:
	case <-ctx.Done():
	}
}

func (r *Resolver) notify(level notify.Level, msg string) {
	if r.notifier != nil && r.active.Load() {
		r.notifier.Notify(level, msg)
	}
}

// sessionFailure drops the identity and degrades to the error profile, so
// nothing from the previous session outlives a failed lookup.
func sessionFailure() Update {
	profile := domain.ErrorProfile()
	return Update{Kind: UpdateResolved, Profile: &profile}
}

func demoUpdate() Update {
	profile := domain.FallbackProfile()
	return Update{Kind: UpdateResolved, Profile: &profile, Demo: true}
}
