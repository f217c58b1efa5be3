package datasource

import (
	"context"

	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

// Store is the remote backend behind live mode.
type Store interface {
	ListKpiEntries(ctx context.Context, userID string) ([]domain.KpiEntry, error)
	InsertKpiEntry(ctx context.Context, entry *domain.KpiEntry) error
	ListCampaigns(ctx context.Context, userID string) ([]domain.Campaign, error)
	InsertCampaign(ctx context.Context, campaign *domain.Campaign) error
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	InsertGoal(ctx context.Context, goal *domain.Goal) error
}

type repositoryStore struct {
	kpi       repository.KpiRepository
	campaigns repository.CampaignRepository
	goals     repository.GoalRepository
}

// NewRepositoryStore adapts the Postgres repositories to Store.
func NewRepositoryStore(kpi repository.KpiRepository, campaigns repository.CampaignRepository, goals repository.GoalRepository) Store {
	return &repositoryStore{kpi: kpi, campaigns: campaigns, goals: goals}
}

func (s *repositoryStore) ListKpiEntries(ctx context.Context, userID string) ([]domain.KpiEntry, error) {
	return s.kpi.List(ctx, userID)
}

func (s *repositoryStore) InsertKpiEntry(ctx context.Context, entry *domain.KpiEntry) error {
	return s.kpi.Insert(ctx, entry)
}

func (s *repositoryStore) ListCampaigns(ctx context.Context, userID string) ([]domain.Campaign, error) {
	return s.campaigns.List(ctx, userID)
}

func (s *repositoryStore) InsertCampaign(ctx context.Context, campaign *domain.Campaign) error {
	return s.campaigns.Insert(ctx, campaign)
}

func (s *repositoryStore) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	return s.goals.List(ctx, userID)
}

func (s *repositoryStore) InsertGoal(ctx context.Context, goal *domain.Goal) error {
	return s.goals.Insert(ctx, goal)
}
