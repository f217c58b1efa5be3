package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/api/http/handlers"
	"github.com/spec-kit/pao-metrics/internal/app"
	"github.com/spec-kit/pao-metrics/internal/datasource"
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/events"
	"github.com/spec-kit/pao-metrics/internal/navigation"
	"github.com/spec-kit/pao-metrics/internal/observability"
	"github.com/spec-kit/pao-metrics/internal/repository"
	"github.com/spec-kit/pao-metrics/internal/session"
	"github.com/spec-kit/pao-metrics/internal/social"
)

const cookieName = "pao_client"

type cannedGenerator struct{ text string }

func (g cannedGenerator) Generate(context.Context, string, string) (string, error) {
	return g.text, nil
}

type fixture struct {
	app      *fiber.App
	registry *app.Registry
	metrics  *observability.Metrics
	cookie   string
}

func newFixture(t *testing.T, cfg app.RegistryConfig) *fixture {
	t.Helper()
	return newFixtureWithSocial(t, cfg, nil)
}

// newFixtureWithSocial wires liveSocial as the signed-in social store; demo
// shells always get an in-memory one.
func newFixtureWithSocial(t *testing.T, cfg app.RegistryConfig, liveSocial repository.SocialRepository) *fixture {
	t.Helper()
	gate, err := navigation.DefaultGate()
	require.NoError(t, err)
	mock, err := datasource.MockDataset()
	require.NoError(t, err)

	cfg.Gate = gate
	cfg.Mock = mock
	if cfg.Generator == nil {
		cfg.Generator = cannedGenerator{text: "# Plan"}
	}
	registry := app.NewRegistry(cfg)
	t.Cleanup(registry.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	socials := handlers.SocialServices{Demo: social.NewService(social.NewMemoryStore(), logger)}
	if liveSocial != nil {
		socials.Live = social.NewService(liveSocial, logger)
	}

	fa := fiber.New()
	RegisterMiddlewares(fa, logger, metrics, time.Second)
	RegisterRoutes(fa, RouteConfig{
		Shells:       registry,
		ClientCookie: cookieName,
		Health:       handlers.NewHealthHandler("pao-metrics", "test", cfg.Demo, nil, nil),
		Metrics:      handlers.NewMetricsHandler(metrics),
		Auth:         handlers.NewAuthHandler(nil),
		State:        handlers.NewStateHandler(socials),
		Kpi:          handlers.NewKpiHandler(),
		Plan:         handlers.NewPlanHandler(),
		Social:       handlers.NewSocialHandler(socials),
		Profile:      handlers.NewProfileHandler(),
	})
	return &fixture{app: fa, registry: registry, metrics: metrics}
}

func newDemoFixture(t *testing.T) *fixture {
	return newFixture(t, app.RegistryConfig{Demo: true})
}

// do sends a request, carrying the client cookie across calls.
func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", cookieName+"="+f.cookie)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			f.cookie = c.Value
		}
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "data object missing: %v", body)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthInDemoMode(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "GET", "/health/live", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = f.do(t, "GET", "/health/ready", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "demo", body["mode"])
}

func TestStateServesDemoShell(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "GET", "/api/state", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, f.cookie)

	state := data(t, body)
	assert.Equal(t, true, state["demo"])
	assert.Equal(t, false, state["loading"])
	assert.Nil(t, state["identity"])
	profile := state["profile"].(map[string]any)
	assert.Equal(t, "chief", profile["role"])
	assert.Equal(t, float64(101), profile["team_id"])
	assert.Len(t, state["navigation"], 7)
	counts := state["counts"].(map[string]any)
	assert.Equal(t, float64(12), counts["kpi_entries"])

	firstClient := state["client_id"]
	_, body = f.do(t, "GET", "/api/state", "")
	assert.Equal(t, firstClient, data(t, body)["client_id"])
	assert.Equal(t, 1, f.registry.Len())
}

func TestDemoNoticeShownOnce(t *testing.T) {
	f := newDemoFixture(t)

	f.do(t, "GET", "/api/state", "")
	_, body := f.do(t, "GET", "/api/notifications", "")
	list := body["data"].([]any)
	require.Len(t, list, 1)
	notice := list[0].(map[string]any)
	assert.Contains(t, notice["message"], "Demo data is being displayed")

	status, _ := f.do(t, "DELETE", "/api/notifications/"+notice["id"].(string), "")
	assert.Equal(t, fiber.StatusNoContent, status)
	status, body = f.do(t, "DELETE", "/api/notifications/"+notice["id"].(string), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestAddKpiEntrySwitchesToTable(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "POST", "/api/kpi",
		`{"date":"2024-07-01","type":"Outtake","metric":"Media pickups","quantity":9}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, float64(13), data(t, body)["id"])
	assert.Equal(t, "2024-07-01", data(t, body)["date"])

	_, body = f.do(t, "GET", "/api/state", "")
	assert.Equal(t, "table", data(t, body)["active_view"])

	_, body = f.do(t, "GET", "/api/kpi?sort=date&dir=desc", "")
	rows := body["data"].([]any)
	require.Len(t, rows, 13)
	assert.Equal(t, float64(13), rows[0].(map[string]any)["id"])
}

func TestAddKpiEntryValidation(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "POST", "/api/kpi", `{"type":"Outtake","quantity":3}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = f.do(t, "GET", "/api/kpi?sort=colour", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	_, body = f.do(t, "GET", "/api/kpi", "")
	assert.Len(t, body["data"], 12)
}

func TestDashboardFiltersByCampaign(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "GET", "/api/dashboard", "")
	require.Equal(t, fiber.StatusOK, status)
	summary := data(t, body)
	assert.NotNil(t, summary["media_pickups"])
	assert.NotEmpty(t, summary["counts_by_type"])

	status, body = f.do(t, "GET", "/api/dashboard?campaign_id=abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestCampaignAndGoalCreation(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "POST", "/api/campaigns",
		`{"name":"Fall outreach","description":"Town halls","start_date":"2024-09-01","end_date":"2024-11-30"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, float64(4), data(t, body)["id"])

	status, body = f.do(t, "POST", "/api/goals",
		`{"metric":"Media pickups","target_value":50,"start_date":"2024-09-01","end_date":"2024-08-01"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = f.do(t, "POST", "/api/goals",
		`{"metric":"Media pickups","target_value":50,"start_date":"2024-09-01","end_date":"2024-11-30","campaign_id":4}`)
	assert.Equal(t, fiber.StatusCreated, status)

	_, body = f.do(t, "GET", "/api/goals", "")
	assert.Len(t, body["data"], 4)
}

func TestSetViewRejectsUnknownView(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "PUT", "/api/view", `{"view":"settings"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = f.do(t, "PUT", "/api/view", `{"view":"plan-builder"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "plan-builder", data(t, body)["active_view"])

	_, body = f.do(t, "GET", "/api/view", "")
	view := data(t, body)
	assert.Equal(t, "plan-builder", view["view"])
	assert.Equal(t, float64(0), view["data"].(map[string]any)["step"])
}

func TestPlanWizardFlow(t *testing.T) {
	f := newDemoFixture(t)

	_, body := f.do(t, "POST", "/api/plan/start", "")
	assert.Equal(t, float64(1), data(t, body)["step"])

	_, body = f.do(t, "POST", "/api/plan/next", `{"input":"Raise awareness"}`)
	assert.Equal(t, float64(2), data(t, body)["step"])

	_, body = f.do(t, "POST", "/api/plan/previous", `{"input":"Residents"}`)
	assert.Equal(t, float64(1), data(t, body)["step"])
	assert.Equal(t, "Raise awareness", data(t, body)["input"])

	// Generating before the last question is a no-op.
	_, body = f.do(t, "POST", "/api/plan/generate", "")
	assert.Equal(t, float64(1), data(t, body)["step"])

	for step := 1; step < 10; step++ {
		_, body = f.do(t, "POST", "/api/plan/next", `{"input":"answer"}`)
	}
	require.Equal(t, float64(10), data(t, body)["step"])

	status, body := f.do(t, "POST", "/api/plan/generate", `{"input":"Quarterly review"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(12), data(t, body)["step"])
	assert.Equal(t, "# Plan", data(t, body)["plan"])

	_, body = f.do(t, "POST", "/api/plan/reset", "")
	assert.Equal(t, float64(0), data(t, body)["step"])
}

func TestSocialMediaInDemo(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "POST", "/api/social/entries",
		`{"network":"LinkedIn","title":"Town hall recap","url":"https://example.org/post/1"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	id := data(t, body)["id"].(float64)

	_, body = f.do(t, "GET", "/api/social/entries", "")
	assert.Len(t, body["data"], 1)

	status, body = f.do(t, "PUT", "/api/social/connections/LinkedIn", `{"toggle":true,"auto_sync":"Weekly"}`)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, data(t, body)["connected"])
	assert.Equal(t, "Weekly", data(t, body)["auto_sync"])

	status, _ = f.do(t, "PUT", "/api/social/connections/MySpace", `{"toggle":true}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = f.do(t, "DELETE", "/api/social/entries/"+formatID(id), "")
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestProfilePatchInDemo(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "PATCH", "/api/profile", `{"avatar_url":"https://cdn.example.org/a.png"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "https://cdn.example.org/a.png", data(t, body)["avatar_url"])
	assert.Equal(t, "Public Affairs Office", data(t, body)["team_name"])
}

func TestAuthUnavailableInDemo(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "POST", "/auth/sign-in", `{"email":"a@b.c","password":"pw"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))
}

func TestUnknownRouteRendersError(t *testing.T) {
	f := newDemoFixture(t)

	status, body := f.do(t, "GET", "/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestMetricsCountRequests(t *testing.T) {
	f := newDemoFixture(t)

	f.do(t, "GET", "/health/live", "")
	f.do(t, "GET", "/health/live", "")
	_, body := f.do(t, "GET", "/metrics", "")
	requests := body["requests"].(map[string]any)
	assert.Equal(t, float64(2), requests["/health/live|GET|200"])
}

type liveAuth struct {
	session *domain.Session
	bus     events.Bus
	client  string
}

func (a *liveAuth) GetSession(context.Context) (*domain.Session, error) { return a.session, nil }
func (a *liveAuth) Subscribe() *events.Subscription                     { return a.bus.Subscribe(a.client) }

type staffProfiles struct{}

func (staffProfiles) GetProfile(context.Context, string) (*repository.ProfileRow, error) {
	role, team, name := "staff", int64(7), "Region 7"
	return &repository.ProfileRow{Role: &role, TeamID: &team, TeamName: &name}, nil
}

type emptyStore struct{}

func (emptyStore) ListKpiEntries(context.Context, string) ([]domain.KpiEntry, error) { return nil, nil }
func (emptyStore) InsertKpiEntry(context.Context, *domain.KpiEntry) error            { return nil }
func (emptyStore) ListCampaigns(context.Context, string) ([]domain.Campaign, error)  { return nil, nil }
func (emptyStore) InsertCampaign(context.Context, *domain.Campaign) error            { return nil }
func (emptyStore) ListGoals(context.Context, string) ([]domain.Goal, error)          { return nil, nil }
func (emptyStore) InsertGoal(context.Context, *domain.Goal) error                    { return nil }

func TestRequireViewGuardsByRole(t *testing.T) {
	bus := events.NewInMemoryBus()
	f := newFixture(t, app.RegistryConfig{
		AuthFor: func(clientID string) session.AuthProvider {
			return &liveAuth{
				session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1", Email: "staff@pao.example"}},
				bus:     bus,
				client:  clientID,
			}
		},
		Profiles: staffProfiles{},
		Store:    emptyStore{},
		Logger:   zap.NewNop(),
	})

	// First request creates the shell; resolution finishes in the background.
	f.do(t, "GET", "/api/state", "")
	require.Eventually(t, func() bool {
		_, body := f.do(t, "GET", "/api/state", "")
		return data(t, body)["profile"] != nil
	}, time.Second, 10*time.Millisecond)

	status, _ := f.do(t, "GET", "/api/dashboard", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body := f.do(t, "GET", "/api/campaigns", "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, _ = f.do(t, "POST", "/api/plan/start", "")
	assert.Equal(t, fiber.StatusForbidden, status)

	_, body = f.do(t, "GET", "/api/state", "")
	assert.Len(t, data(t, body)["navigation"], 4)
}

func TestRequireViewWithoutProfile(t *testing.T) {
	bus := events.NewInMemoryBus()
	f := newFixture(t, app.RegistryConfig{
		AuthFor: func(clientID string) session.AuthProvider {
			return &liveAuth{bus: bus, client: clientID}
		},
		Profiles: staffProfiles{},
		Store:    emptyStore{},
	})

	status, body := f.do(t, "GET", "/api/kpi", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func formatID(id float64) string {
	b, _ := json.Marshal(int64(id))
	return string(b)
}

func TestRequestIDEchoedOrMinted(t *testing.T) {
	f := newDemoFixture(t)

	req := httptest.NewRequest("GET", "/health/live", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	_, err = uuid.Parse(resp.Header.Get("X-Request-ID"))
	assert.NoError(t, err)

	const id = "8c4b8f0e-3a4c-4a8e-9d4e-1f7f2f1b6c2a"
	req = httptest.NewRequest("GET", "/health/live", nil)
	req.Header.Set("X-Request-ID", id)
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get("X-Request-ID"))
}

// countingSocial stands in for the Postgres social store and records every call.
type countingSocial struct {
	calls atomic.Int64
}

func (s *countingSocial) ListEntries(context.Context, int64) ([]domain.SocialMediaEntry, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *countingSocial) InsertEntry(context.Context, *domain.SocialMediaEntry) error {
	s.calls.Add(1)
	return nil
}

func (s *countingSocial) DeleteEntry(context.Context, int64, int64) error {
	s.calls.Add(1)
	return nil
}

func (s *countingSocial) ListConnections(context.Context, int64) ([]domain.SocialConnection, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *countingSocial) UpsertConnection(context.Context, int64, string, domain.SocialConnection) error {
	s.calls.Add(1)
	return nil
}

type stalledAuth struct {
	bus    events.Bus
	client string
}

func (a *stalledAuth) GetSession(ctx context.Context) (*domain.Session, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (a *stalledAuth) Subscribe() *events.Subscription { return a.bus.Subscribe(a.client) }

func TestTimedOutShellStaysOffLiveSocialStore(t *testing.T) {
	bus := events.NewInMemoryBus()
	live := &countingSocial{}
	f := newFixtureWithSocial(t, app.RegistryConfig{
		AuthFor: func(clientID string) session.AuthProvider {
			return &stalledAuth{bus: bus, client: clientID}
		},
		Profiles:    staffProfiles{},
		Store:       emptyStore{},
		DemoTimeout: 50 * time.Millisecond,
	}, live)

	f.do(t, "GET", "/api/state", "")
	require.Eventually(t, func() bool {
		_, body := f.do(t, "GET", "/api/state", "")
		return data(t, body)["demo"] == true
	}, 2*time.Second, 10*time.Millisecond)

	status, _ := f.do(t, "GET", "/api/social/entries", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = f.do(t, "POST", "/api/social/entries",
		`{"network":"facebook","title":"Town hall","url":"https://example.org/p/1","placement":"feed"}`)
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = f.do(t, "PUT", "/api/view", `{"view":"social-media"}`)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = f.do(t, "GET", "/api/view", "")
	assert.Equal(t, fiber.StatusOK, status)

	assert.Zero(t, live.calls.Load(), "demo shell reached the live social store")
}

func TestSignedInShellUsesLiveSocialStore(t *testing.T) {
	bus := events.NewInMemoryBus()
	live := &countingSocial{}
	f := newFixtureWithSocial(t, app.RegistryConfig{
		AuthFor: func(clientID string) session.AuthProvider {
			return &liveAuth{
				session: &domain.Session{ID: "s1", User: domain.Identity{UserID: "u1", Email: "staff@pao.example"}},
				bus:     bus,
				client:  clientID,
			}
		},
		Profiles: staffProfiles{},
		Store:    emptyStore{},
	}, live)

	f.do(t, "GET", "/api/state", "")
	require.Eventually(t, func() bool {
		_, body := f.do(t, "GET", "/api/state", "")
		return data(t, body)["profile"] != nil
	}, time.Second, 10*time.Millisecond)

	status, _ := f.do(t, "GET", "/api/social/entries", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(1), live.calls.Load())
}
