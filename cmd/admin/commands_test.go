package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pao-metrics/internal/auth"
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

// fakeUsers shares its profile table with fakeProfiles, as both live in one database.
type fakeUsers struct {
	mu       sync.Mutex
	byID     map[string]*domain.User
	email    map[string]string
	profiles *fakeProfiles
}

func newFakeUsers(profiles *fakeProfiles) *fakeUsers {
	return &fakeUsers{byID: map[string]*domain.User{}, email: map[string]string{}, profiles: profiles}
}

func (f *fakeUsers) CreateWithProfile(_ context.Context, u *domain.User, role domain.Role, teamID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.email[u.Email]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	u.ID = uuid.NewString()
	cp := *u
	f.byID[u.ID] = &cp
	f.email[u.Email] = u.ID
	f.profiles.assigned[u.ID] = assignment{role: string(role), teamID: teamID}
	return nil
}

func (f *fakeUsers) UpdateEmail(context.Context, string, string) error    { return nil }
func (f *fakeUsers) UpdatePassword(context.Context, string, string) error { return nil }

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	id, ok := f.email[email]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.GetByID(ctx, id)
}

type assignment struct {
	role   string
	teamID *int64
}

type fakeProfiles struct {
	assigned map[string]assignment
	teams    map[string]int64
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{assigned: map[string]assignment{}, teams: map[string]int64{}}
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (*repository.ProfileRow, error) {
	a, ok := f.assigned[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &repository.ProfileRow{Role: &a.role, TeamID: a.teamID}, nil
}

func (f *fakeProfiles) UpdateAvatar(context.Context, string, string) error { return nil }

func (f *fakeProfiles) Assign(_ context.Context, userID, role string, teamID *int64) error {
	f.assigned[userID] = assignment{role: role, teamID: teamID}
	return nil
}

func (f *fakeProfiles) EnsureTeam(_ context.Context, name string) (int64, error) {
	if id, ok := f.teams[name]; ok {
		return id, nil
	}
	id := int64(100 + len(f.teams) + 1)
	f.teams[name] = id
	return id, nil
}

type harness struct {
	users    *fakeUsers
	profiles *fakeProfiles
	migrated int
	closed   int
}

func (h *harness) open(context.Context) (*backend, error) {
	return &backend{
		users:    h.users,
		profiles: h.profiles,
		migrate: func(context.Context) error {
			h.migrated++
			return nil
		},
		close: func() { h.closed++ },
	}, nil
}

func run(t *testing.T, h *harness, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(h.open, 4)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func newHarness() *harness {
	profiles := newFakeProfiles()
	return &harness{users: newFakeUsers(profiles), profiles: profiles}
}

func TestMigrate(t *testing.T) {
	h := newHarness()
	out, err := run(t, h, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
	assert.Equal(t, 1, h.migrated)
	assert.Equal(t, 1, h.closed)
}

func TestAddUserWithTeam(t *testing.T) {
	h := newHarness()
	out, err := run(t, h, "add-user", "--email", "Chief@PAO.example", "--password", "s3cret", "--role", "chief", "--team", "Region 7")
	require.NoError(t, err)
	assert.Contains(t, out, "role=chief team=Region 7")

	user, err := h.users.GetByEmail(context.Background(), "chief@pao.example")
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "s3cret"))

	a := h.profiles.assigned[user.ID]
	assert.Equal(t, "chief", a.role)
	require.NotNil(t, a.teamID)
	assert.Equal(t, h.profiles.teams["Region 7"], *a.teamID)
}

func TestAddUserRejectsDuplicateAndBadRole(t *testing.T) {
	h := newHarness()
	_, err := run(t, h, "add-user", "--email", "a@pao.example", "--password", "pw123456")
	require.NoError(t, err)

	_, err = run(t, h, "add-user", "--email", "a@pao.example", "--password", "pw123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, h, "add-user", "--email", "b@pao.example", "--password", "pw123456", "--role", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestSetRoleKeepsTeamUnlessGiven(t *testing.T) {
	h := newHarness()
	_, err := run(t, h, "add-user", "--email", "s@pao.example", "--password", "pw123456", "--team", "Region 7")
	require.NoError(t, err)
	user, err := h.users.GetByEmail(context.Background(), "s@pao.example")
	require.NoError(t, err)
	teamID := *h.profiles.assigned[user.ID].teamID

	_, err = run(t, h, "set-role", "--email", "s@pao.example", "--role", "chief")
	require.NoError(t, err)
	a := h.profiles.assigned[user.ID]
	assert.Equal(t, "chief", a.role)
	require.NotNil(t, a.teamID)
	assert.Equal(t, teamID, *a.teamID)

	_, err = run(t, h, "set-role", "--email", "s@pao.example", "--role", "staff", "--team", "")
	require.NoError(t, err)
	assert.Nil(t, h.profiles.assigned[user.ID].teamID)
}

func TestSetRoleUnknownUser(t *testing.T) {
	h := newHarness()
	_, err := run(t, h, "set-role", "--email", "ghost@pao.example", "--role", "chief")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user")
}

func TestOpenFailureSurfaces(t *testing.T) {
	root := newRootCmd(func(context.Context) (*backend, error) { return nil, errNoDatabase }, 4)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate"})
	assert.True(t, errors.Is(root.Execute(), errNoDatabase))
}
