package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// GoalRepository reads and writes kpi_goals.
type GoalRepository interface {
	List(ctx context.Context, userID string) ([]domain.Goal, error)
	Insert(ctx context.Context, goal *domain.Goal) error
}

type goalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository constructs repository.
func NewGoalRepository(pool *pgxpool.Pool) GoalRepository {
	return &goalRepository{pool: pool}
}

func (r *goalRepository) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	const query = `
        SELECT g.id, g.metric, g.target_value, g.start_date, g.end_date, g.campaign_id, g.user_id
        FROM kpi_goals g
        WHERE %s
        ORDER BY g.start_date DESC, g.id DESC`
	rows, err := r.pool.Query(ctx, scoped(query, "g"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Goal{}
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(&g.ID, &g.Metric, &g.TargetValue, &g.StartDate, &g.EndDate, &g.CampaignID, &g.UserID); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (r *goalRepository) Insert(ctx context.Context, goal *domain.Goal) error {
	const query = `
        INSERT INTO kpi_goals (metric, target_value, start_date, end_date, campaign_id, user_id, team_id)
        VALUES ($1, $2, $3, $4, $5, $6, (SELECT team_id FROM profiles WHERE id=$6))
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		goal.Metric,
		goal.TargetValue,
		goal.StartDate,
		goal.EndDate,
		goal.CampaignID,
		goal.UserID,
	).Scan(&goal.ID)
}
