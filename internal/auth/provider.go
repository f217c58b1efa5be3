package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/events"
	"github.com/spec-kit/pao-metrics/internal/repository"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// Provider is the auth provider backing live mode: accounts in Postgres,
// per-client sessions in the session store, state changes on the event bus.
type Provider struct {
	users      repository.UserRepository
	sessions   SessionStore
	tokens     *TokenManager
	bus        events.Bus
	logger     *zap.Logger
	bcryptCost int
	sessionTTL time.Duration
	now        func() time.Time
}

// ProviderDependencies bundles the collaborators of Provider.
type ProviderDependencies struct {
	Users      repository.UserRepository
	Sessions   SessionStore
	Tokens     *TokenManager
	Bus        events.Bus
	Logger     *zap.Logger
	BcryptCost int
	SessionTTL time.Duration
}

// NewProvider builds the provider.
func NewProvider(deps ProviderDependencies) *Provider {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		users:      deps.Users,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		bus:        deps.Bus,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
		sessionTTL: deps.SessionTTL,
		now:        time.Now,
	}
}

// GetSession returns the client's current session, or nil when it has none
// or its access token no longer validates.
func (p *Provider) GetSession(ctx context.Context, clientID string) (*domain.Session, error) {
	session, err := p.sessions.Load(ctx, clientID)
	if err != nil || session == nil {
		return nil, err
	}
	if err := p.tokens.ValidateSession(session); err != nil {
		p.logger.Debug("discarding invalid session", zap.String("client_id", clientID), zap.Error(err))
		if delErr := p.sessions.Delete(ctx, clientID); delErr != nil {
			p.logger.Warn("delete stale session", zap.Error(delErr))
		}
		return nil, nil
	}
	return session, nil
}

// SignUp creates an account with a default staff profile and signs the client in.
func (p *Provider) SignUp(ctx context.Context, clientID, email, password string) (*domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}
	if err := CheckPasswordPolicy(password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}
	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !repository.IsNoRows(err) {
		return nil, err
	}

	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Email: email, PasswordHash: hash}
	if err := p.users.CreateWithProfile(ctx, user, domain.RoleStaff, nil); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}
	return p.startSession(ctx, clientID, user)
}

// SignIn verifies credentials and signs the client in.
func (p *Provider) SignIn(ctx context.Context, clientID, email, password string) (*domain.Session, error) {
	user, err := p.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, apperrors.NewUnauthorized("invalid login credentials")
		}
		return nil, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid login credentials")
	}
	return p.startSession(ctx, clientID, user)
}

// SignOut ends the client's session.
func (p *Provider) SignOut(ctx context.Context, clientID string) error {
	if err := p.sessions.Delete(ctx, clientID); err != nil {
		return err
	}
	p.publish(ctx, events.AuthSignedOut, clientID, nil)
	return nil
}

// Refresh issues a fresh access token for the client's session.
func (p *Provider) Refresh(ctx context.Context, clientID string) (*domain.Session, error) {
	session, err := p.GetSession(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewUnauthorized("no active session")
	}
	token, exp, err := p.tokens.GenerateToken(session.User.UserID, session.User.Email, session.ID)
	if err != nil {
		return nil, err
	}
	session.AccessToken = token
	session.ExpiresAt = exp
	if err := p.sessions.Save(ctx, clientID, session, p.sessionTTL); err != nil {
		return nil, err
	}
	p.publish(ctx, events.AuthTokenRefreshed, clientID, session)
	return session, nil
}

// UpdateEmail changes the signed-in user's email address.
func (p *Provider) UpdateEmail(ctx context.Context, clientID, email string) (*domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	session, err := p.GetSession(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewUnauthorized("no active session")
	}
	if err := p.users.UpdateEmail(ctx, session.User.UserID, email); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}
	session.User.Email = email
	if err := p.sessions.Save(ctx, clientID, session, p.sessionTTL); err != nil {
		return nil, err
	}
	p.publish(ctx, events.AuthUserUpdated, clientID, session)
	return session, nil
}

// ForClient binds the provider to one browser client.
func (p *Provider) ForClient(clientID string) *ClientAuth {
	return &ClientAuth{provider: p, clientID: clientID}
}

func (p *Provider) startSession(ctx context.Context, clientID string, user *domain.User) (*domain.Session, error) {
	sessionID := uuid.NewString()
	token, exp, err := p.tokens.GenerateToken(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}
	session := &domain.Session{
		ID:          sessionID,
		AccessToken: token,
		ExpiresAt:   exp,
		User:        domain.Identity{UserID: user.ID, Email: user.Email},
	}
	if err := p.sessions.Save(ctx, clientID, session, p.sessionTTL); err != nil {
		return nil, err
	}
	p.publish(ctx, events.AuthSignedIn, clientID, session)
	return session, nil
}

// publish is best effort: a slow or absent subscriber never fails the auth call.
func (p *Provider) publish(ctx context.Context, kind events.AuthEventKind, clientID string, session *domain.Session) {
	if p.bus == nil {
		return
	}
	err := p.bus.Publish(ctx, events.AuthEvent{
		Kind:      kind,
		ClientID:  clientID,
		Session:   session,
		Timestamp: p.now(),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("publish auth event", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// ClientAuth is the auth provider as seen by a single client's resolver.
type ClientAuth struct {
	provider *Provider
	clientID string
}

// GetSession returns the bound client's session.
func (c *ClientAuth) GetSession(ctx context.Context) (*domain.Session, error) {
	return c.provider.GetSession(ctx, c.clientID)
}

// Subscribe opens the bound client's auth event stream.
func (c *ClientAuth) Subscribe() *events.Subscription {
	return c.provider.bus.Subscribe(c.clientID)
}
