package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

type memUsers struct {
	mu       sync.Mutex
	byID     map[string]*domain.User
	profiles map[string]domain.Role
	// profileErr fails the profile insert, rolling back the account with it.
	profileErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}, profiles: map[string]domain.Role{}}
}

func (m *memUsers) CreateWithProfile(_ context.Context, user *domain.User, role domain.Role, _ *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profileErr != nil {
		return m.profileErr
	}
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	cp := *user
	m.byID[user.ID] = &cp
	m.profiles[user.ID] = role
	return nil
}

func (m *memUsers) failProfiles(err error) {
	m.mu.Lock()
	m.profileErr = err
	m.mu.Unlock()
}

func (m *memUsers) roleOf(id string) (domain.Role, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.profiles[id]
	return r, ok
}

func (m *memUsers) UpdateEmail(_ context.Context, id, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Email = strings.ToLower(email)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]domain.Session{}}
}

func (m *memSessions) Load(_ context.Context, clientID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[clientID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Save(_ context.Context, clientID string, session *domain.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[clientID] = *session
	return nil
}

func (m *memSessions) Delete(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, clientID)
	return nil
}
