package datasource

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/notify"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// Switch supplies the KPI, campaign and goal collections from either the
// remote store (live) or copies of the mock dataset (demo).
type Switch struct {
	mu        sync.RWMutex
	store     Store
	mock      Dataset
	notifier  notify.Notifier
	logger    *zap.Logger
	demo      bool
	kpi       []domain.KpiEntry
	campaigns []domain.Campaign
	goals     []domain.Goal
}

// NewSwitch builds a switch. A nil store pins it to demo mode.
func NewSwitch(store Store, mock Dataset, notifier notify.Notifier, logger *zap.Logger) *Switch {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Switch{
		store:     store,
		mock:      mock.Clone(),
		notifier:  notifier,
		logger:    logger,
		kpi:       []domain.KpiEntry{},
		campaigns: []domain.Campaign{},
		goals:     []domain.Goal{},
	}
	if store == nil {
		s.UseMock()
	}
	return s
}

// UseMock switches to demo mode and resets every collection to the mock set.
// Calling it repeatedly always yields the same collections.
func (s *Switch) UseMock() {
	ds := s.mock.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demo = true
	s.kpi, s.campaigns, s.goals = ds.KpiEntries, ds.Campaigns, ds.Goals
}

// Demo reports whether the switch serves mock data.
func (s *Switch) Demo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demo
}

// Clear empties every collection. Used when the identity goes away in live mode.
func (s *Switch) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return
	}
	s.kpi, s.campaigns, s.goals = []domain.KpiEntry{}, []domain.Campaign{}, []domain.Goal{}
}

// Load fetches all three collections for userID concurrently. A failing
// collection reports its own warning and keeps its previous contents.
func (s *Switch) Load(ctx context.Context, userID string) {
	if s.Demo() {
		s.UseMock()
		return
	}
	var g errgroup.Group
	g.Go(func() error { s.RefreshKpiEntries(ctx, userID); return nil })
	g.Go(func() error { s.RefreshCampaigns(ctx, userID); return nil })
	g.Go(func() error { s.RefreshGoals(ctx, userID); return nil })
	_ = g.Wait()
}

// RefreshKpiEntries re-fetches the KPI entries, newest first.
func (s *Switch) RefreshKpiEntries(ctx context.Context, userID string) bool {
	if s.Demo() {
		return true
	}
	entries, err := s.store.ListKpiEntries(ctx, userID)
	if err != nil {
		s.fetchFailed("Error fetching KPI data.", err)
		return false
	}
	s.mu.Lock()
	s.kpi = entries
	s.mu.Unlock()
	return true
}

// RefreshCampaigns re-fetches the campaigns, latest start first.
func (s *Switch) RefreshCampaigns(ctx context.Context, userID string) bool {
	if s.Demo() {
		return true
	}
	campaigns, err := s.store.ListCampaigns(ctx, userID)
	if err != nil {
		s.fetchFailed("Error fetching campaigns.", err)
		return false
	}
	s.mu.Lock()
	s.campaigns = campaigns
	s.mu.Unlock()
	return true
}

// RefreshGoals re-fetches the goals, latest start first.
func (s *Switch) RefreshGoals(ctx context.Context, userID string) bool {
	if s.Demo() {
		return true
	}
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		s.fetchFailed("Error fetching KPI goals.", err)
		return false
	}
	s.mu.Lock()
	s.goals = goals
	s.mu.Unlock()
	return true
}

// AddKpiEntry records a new entry. Demo entries are prepended with the next id.
func (s *Switch) AddKpiEntry(ctx context.Context, userID string, entry domain.KpiEntry) (domain.KpiEntry, error) {
	if err := ValidateKpiEntry(entry); err != nil {
		return domain.KpiEntry{}, err
	}

	s.mu.Lock()
	if s.demo {
		entry.ID = nextKpiID(s.kpi)
		s.kpi = append([]domain.KpiEntry{entry}, s.kpi...)
		s.mu.Unlock()
		s.notify(notify.LevelSuccess, "KPI entry successfully added!")
		return entry, nil
	}
	s.mu.Unlock()

	if userID == "" {
		return domain.KpiEntry{}, s.noSession("KPI data")
	}
	entry.UserID = userID
	if err := s.store.InsertKpiEntry(ctx, &entry); err != nil {
		return domain.KpiEntry{}, s.insertFailed("kpi entry", err)
	}
	s.RefreshKpiEntries(ctx, userID)
	s.notify(notify.LevelSuccess, "KPI entry successfully added!")
	return entry, nil
}

// AddCampaign records a new campaign. Demo campaigns are appended with the next id.
func (s *Switch) AddCampaign(ctx context.Context, userID string, campaign domain.Campaign) (domain.Campaign, error) {
	if err := ValidateCampaign(campaign); err != nil {
		return domain.Campaign{}, err
	}

	s.mu.Lock()
	if s.demo {
		campaign.ID = nextCampaignID(s.campaigns)
		s.campaigns = append(s.campaigns, campaign)
		s.mu.Unlock()
		s.notify(notify.LevelSuccess, "Campaign created successfully!")
		return campaign, nil
	}
	s.mu.Unlock()

	if userID == "" {
		return domain.Campaign{}, s.noSession("campaign")
	}
	campaign.UserID = userID
	if err := s.store.InsertCampaign(ctx, &campaign); err != nil {
		return domain.Campaign{}, s.insertFailed("campaign", err)
	}
	s.RefreshCampaigns(ctx, userID)
	s.notify(notify.LevelSuccess, "Campaign created successfully!")
	return campaign, nil
}

// AddGoal records a new goal. Demo goals are appended with the next id.
func (s *Switch) AddGoal(ctx context.Context, userID string, goal domain.Goal) (domain.Goal, error) {
	if err := ValidateGoal(goal); err != nil {
		return domain.Goal{}, err
	}

	s.mu.Lock()
	if s.demo {
		goal.ID = nextGoalID(s.goals)
		s.goals = append(s.goals, goal)
		s.mu.Unlock()
		s.notify(notify.LevelSuccess, "Goal created successfully!")
		return goal, nil
	}
	s.mu.Unlock()

	if userID == "" {
		return domain.Goal{}, s.noSession("goal")
	}
	goal.UserID = userID
	if err := s.store.InsertGoal(ctx, &goal); err != nil {
		return domain.Goal{}, s.insertFailed("goal", err)
	}
	s.RefreshGoals(ctx, userID)
	s.notify(notify.LevelSuccess, "Goal created successfully!")
	return goal, nil
}

// Collections returns a copy of the current collections.
func (s *Switch) Collections() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Dataset{KpiEntries: s.kpi, Campaigns: s.campaigns, Goals: s.goals}.Clone()
}

func (s *Switch) fetchFailed(msg string, err error) {
	s.logger.Error("fetch collection", zap.String("message", msg), zap.Error(err))
	s.notify(notify.LevelError, msg)
}

func (s *Switch) insertFailed(what string, err error) error {
	s.logger.Error("insert "+what, zap.Error(err))
	msg := "Error: " + err.Error()
	s.notify(notify.LevelError, msg)
	return apperrors.NewUpstreamError(msg, err)
}

func (s *Switch) noSession(what string) error {
	msg := "No user session found. Cannot add " + what + "."
	s.notify(notify.LevelError, msg)
	return apperrors.NewUnauthorized(msg)
}

func (s *Switch) notify(level notify.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(level, msg)
	}
}

func nextKpiID(entries []domain.KpiEntry) int64 {
	var max int64
	for _, e := range entries {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

func nextCampaignID(campaigns []domain.Campaign) int64 {
	var max int64
	for _, c := range campaigns {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func nextGoalID(goals []domain.Goal) int64 {
	var max int64
	for _, g := range goals {
		if g.ID > max {
			max = g.ID
		}
	}
	return max + 1
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
