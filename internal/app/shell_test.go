package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spec-kit/pao-metrics/internal/datasource"
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/events"
	"github.com/spec-kit/pao-metrics/internal/navigation"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

type stubAuth struct {
	session *domain.Session
	block   bool
	bus     events.Bus
	client  string

	mu  sync.Mutex
	err error
}

func (a *stubAuth) GetSession(ctx context.Context) (*domain.Session, error) {
	if a.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

func (a *stubAuth) fail(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}

func (a *stubAuth) Subscribe() *events.Subscription {
	return a.bus.Subscribe(a.client)
}

type stubProfiles struct {
	row *repository.ProfileRow
	err error
}

func (p stubProfiles) GetProfile(context.Context, string) (*repository.ProfileRow, error) {
	return p.row, p.err
}

type stubStore struct {
	mu      sync.Mutex
	kpi     []domain.KpiEntry
	fetches int
}

func (s *stubStore) ListKpiEntries(context.Context, string) ([]domain.KpiEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	return append([]domain.KpiEntry(nil), s.kpi...), nil
}

func (s *stubStore) InsertKpiEntry(_ context.Context, e *domain.KpiEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = int64(len(s.kpi) + 1)
	s.kpi = append(s.kpi, *e)
	return nil
}

func (s *stubStore) ListCampaigns(context.Context, string) ([]domain.Campaign, error) {
	return []domain.Campaign{}, nil
}

func (s *stubStore) InsertCampaign(context.Context, *domain.Campaign) error {
	return errors.New("not used")
}

func (s *stubStore) ListGoals(context.Context, string) ([]domain.Goal, error) {
	return []domain.Goal{}, nil
}

func (s *stubStore) InsertGoal(context.Context, *domain.Goal) error {
	return errors.New("not used")
}

type stubWriter struct {
	err    error
	avatar string
}

func (w *stubWriter) UpdateAvatar(_ context.Context, _ string, url string) error {
	if w.err != nil {
		return w.err
	}
	w.avatar = url
	return nil
}

func ptr[T any](v T) *T { return &v }

func gate(t *testing.T) *navigation.Gate {
	t.Helper()
	g, err := navigation.DefaultGate()
	require.NoError(t, err)
	return g
}

func mock(t *testing.T) datasource.Dataset {
	t.Helper()
	ds, err := datasource.MockDataset()
	require.NoError(t, err)
	return ds
}

func startShell(t *testing.T, cfg ShellConfig) *Shell {
	t.Helper()
	shell := NewShell(cfg)
	require.NoError(t, shell.Start())
	t.Cleanup(shell.Close)
	return shell
}

func waitLoaded(t *testing.T, shell *Shell) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = shell.Snapshot()
		return !snap.Loading && (snap.Profile != nil || snap.Identity == nil)
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestUnconfiguredBackendServesDemo(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &stubStore{}
	shell := NewShell(ShellConfig{ClientID: "c1", Demo: true, Store: store, Mock: mock(t), Gate: gate(t)})
	require.NoError(t, shell.Start())

	snap := shell.Snapshot()
	require.NotNil(t, snap.Profile)
	assert.Equal(t, domain.Profile{Role: domain.RoleChief, TeamID: 101, TeamName: "Public Affairs Office"}, *snap.Profile)
	assert.Nil(t, snap.Identity)
	assert.True(t, snap.Demo)
	assert.False(t, snap.Loading)
	assert.Equal(t, domain.ViewDashboard, snap.ActiveView)
	if diff := cmp.Diff(mock(t), snap.Collections); diff != "" {
		t.Fatalf("collections differ from mock (-want +got):\n%s", diff)
	}
	assert.Zero(t, store.fetches, "no backend calls in demo mode")

	notices := shell.Notifications().List()
	require.Len(t, notices, 1)
	assert.Equal(t, msgUnconfigured, notices[0].Message)

	shell.Close()
}

func TestLiveStaffProfileIsGated(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &stubStore{kpi: []domain.KpiEntry{{ID: 1, Metric: "Media pickups"}}}
	shell := NewShell(ShellConfig{
		ClientID: "c1",
		Auth: &stubAuth{
			session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1", Email: "u1@example.org"}},
			bus:     events.NewInMemoryBus(),
			client:  "c1",
		},
		Profiles: stubProfiles{row: &repository.ProfileRow{Role: ptr("staff"), TeamID: ptr(int64(7)), TeamName: ptr("Region 7")}},
		Store:    store,
		Gate:     gate(t),
	})
	require.NoError(t, shell.Start())
	defer shell.Close()

	snap := waitLoaded(t, shell)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, domain.Profile{Role: domain.RoleStaff, TeamID: 7, TeamName: "Region 7"}, *snap.Profile)
	assert.Equal(t, "u1", snap.Identity.UserID)
	assert.False(t, snap.Demo)
	assert.Len(t, snap.Collections.KpiEntries, 1)

	assert.Equal(t, domain.ViewDashboard, shell.SetActiveView(domain.ViewPlanBuilder))
	assert.Equal(t, domain.ViewProfile, shell.SetActiveView(domain.ViewProfile))
	assert.Equal(t, domain.ViewTable, shell.SetActiveView(domain.ViewTable))

	ids := []domain.ViewID{}
	for _, item := range snap.Navigation {
		ids = append(ids, item.ID)
	}
	assert.NotContains(t, ids, domain.ViewPlanBuilder)
	assert.Contains(t, ids, domain.ViewDashboard)
}

func TestLiveMissingTableDegradesProfile(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &stubStore{}
	shell := NewShell(ShellConfig{
		ClientID: "c1",
		Auth: &stubAuth{
			session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1"}},
			bus:     events.NewInMemoryBus(),
			client:  "c1",
		},
		Profiles: stubProfiles{err: &pgconn.PgError{Code: "42P01", Message: `relation "profiles" does not exist`}},
		Store:    store,
		Gate:     gate(t),
	})
	require.NoError(t, shell.Start())
	defer shell.Close()

	snap := waitLoaded(t, shell)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, domain.Profile{Role: domain.RoleStaff, TeamID: -1, TeamName: "Error"}, *snap.Profile)

	notices := shell.Notifications().List()
	require.Len(t, notices, 1)
	assert.Equal(t, "Database error: A required table is missing. Run the setup SQL.", notices[0].Message)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Zero(t, store.fetches, "collections are not fetched after a failed profile lookup")
}

func TestSignOutClearsCollections(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewInMemoryBus()
	store := &stubStore{kpi: []domain.KpiEntry{{ID: 1}}}
	shell := NewShell(ShellConfig{
		ClientID: "c1",
		Auth: &stubAuth{
			session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1"}},
			bus:     bus,
			client:  "c1",
		},
		Profiles: stubProfiles{row: &repository.ProfileRow{Role: ptr("chief"), TeamID: ptr(int64(3)), TeamName: ptr("HQ")}},
		Store:    store,
		Gate:     gate(t),
	})
	require.NoError(t, shell.Start())
	defer shell.Close()

	snap := waitLoaded(t, shell)
	require.Len(t, snap.Collections.KpiEntries, 1)
	assert.Equal(t, domain.ViewCampaigns, shell.SetActiveView(domain.ViewCampaigns))

	require.NoError(t, bus.Publish(context.Background(), events.AuthEvent{Kind: events.AuthSignedOut, ClientID: "c1"}))
	require.Eventually(t, func() bool {
		snap = shell.Snapshot()
		return snap.Identity == nil && len(snap.Collections.KpiEntries) == 0
	}, time.Second, 5*time.Millisecond)

	assert.Nil(t, snap.Profile)
	assert.Empty(t, snap.Collections.KpiEntries)
	assert.Empty(t, snap.Navigation)
	assert.Equal(t, domain.ViewDashboard, snap.EffectiveView)
}

func TestSessionLookupFailureDropsLiveState(t *testing.T) {
	defer goleak.VerifyNone(t)

	auth := &stubAuth{
		session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1"}},
		bus:     events.NewInMemoryBus(),
		client:  "c1",
	}
	shell := NewShell(ShellConfig{
		ClientID: "c1",
		Auth:     auth,
		Profiles: stubProfiles{row: &repository.ProfileRow{Role: ptr("chief"), TeamID: ptr(int64(3)), TeamName: ptr("HQ")}},
		Store:    &stubStore{kpi: []domain.KpiEntry{{ID: 1}}},
		Gate:     gate(t),
	})
	require.NoError(t, shell.Start())
	defer shell.Close()

	snap := waitLoaded(t, shell)
	require.Len(t, snap.Collections.KpiEntries, 1)
	assert.Equal(t, domain.ViewCampaigns, shell.SetActiveView(domain.ViewCampaigns))

	auth.fail(errors.New("redis: i/o timeout"))
	shell.Revalidate()
	require.Eventually(t, func() bool {
		snap = shell.Snapshot()
		return snap.Identity == nil && len(snap.Collections.KpiEntries) == 0
	}, time.Second, 5*time.Millisecond)

	require.NotNil(t, snap.Profile)
	assert.Equal(t, domain.ErrorProfile(), *snap.Profile)
	assert.Empty(t, snap.Collections.KpiEntries)
	assert.Equal(t, domain.ViewDashboard, snap.EffectiveView, "staff error profile cannot stay on campaigns")
	assert.False(t, shell.Demo())

	notices := shell.Notifications().List()
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[len(notices)-1].Message, "authentication session")
}

func TestSlowBackendDowngradesToDemoOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	shell := NewShell(ShellConfig{
		ClientID:    "c1",
		Auth:        &stubAuth{block: true, bus: events.NewInMemoryBus(), client: "c1"},
		Profiles:    stubProfiles{},
		Store:       &stubStore{},
		Mock:        mock(t),
		Gate:        gate(t),
		DemoTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, shell.Start())
	defer shell.Close()

	require.Eventually(t, shell.Demo, time.Second, 5*time.Millisecond)
	snap := shell.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, domain.FallbackProfile(), *snap.Profile)
	assert.Equal(t, len(mock(t).KpiEntries), len(snap.Collections.KpiEntries))

	shell.demoDeadline()
	notices := shell.Notifications().List()
	require.Len(t, notices, 1)
	assert.Equal(t, msgTimedOut, notices[0].Message)
}

func TestAddKpiEntrySwitchesToTable(t *testing.T) {
	shell := startShell(t, ShellConfig{ClientID: "c1", Demo: true, Mock: mock(t), Gate: gate(t)})

	entry, err := shell.AddKpiEntry(context.Background(), domain.KpiEntry{
		Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Type: domain.EntryTypeOutput, Metric: "News release", Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13), entry.ID)
	assert.Equal(t, domain.ViewTable, shell.Snapshot().ActiveView)

	_, err = shell.AddKpiEntry(context.Background(), domain.KpiEntry{})
	require.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	shell := startShell(t, ShellConfig{ClientID: "c1", Demo: true, Mock: mock(t), Gate: gate(t)})

	updated, err := shell.UpdateProfile(context.Background(), domain.ProfilePatch{AvatarURL: ptr("https://cdn/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", updated.AvatarURL)
	assert.Equal(t, domain.RoleChief, updated.Role)
	assert.Equal(t, "https://cdn/a.png", shell.Profile().AvatarURL)
}

func TestUpdateProfilePersistFailure(t *testing.T) {
	writer := &stubWriter{err: errors.New("denied")}
	shell := startShell(t, ShellConfig{
		ClientID: "c1",
		Auth: &stubAuth{
			session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1"}},
			bus:     events.NewInMemoryBus(),
			client:  "c1",
		},
		Profiles: stubProfiles{row: &repository.ProfileRow{Role: ptr("staff")}},
		Writer:   writer,
		Store:    &stubStore{},
		Gate:     gate(t),
	})
	waitLoaded(t, shell)

	_, err := shell.UpdateProfile(context.Background(), domain.ProfilePatch{AvatarURL: ptr("x")})
	require.Error(t, err)
	assert.Empty(t, shell.Profile().AvatarURL)

	writer.err = nil
	p, err := shell.UpdateProfile(context.Background(), domain.ProfilePatch{AvatarURL: ptr("y")})
	require.NoError(t, err)
	assert.Equal(t, "y", p.AvatarURL)
	assert.Equal(t, "y", writer.avatar)
}
