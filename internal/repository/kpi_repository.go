package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// KpiRepository reads and writes kpi_data rows.
type KpiRepository interface {
	List(ctx context.Context, userID string) ([]domain.KpiEntry, error)
	Insert(ctx context.Context, entry *domain.KpiEntry) error
}

type kpiRepository struct {
	pool *pgxpool.Pool
}

// NewKpiRepository constructs repository.
func NewKpiRepository(pool *pgxpool.Pool) KpiRepository {
	return &kpiRepository{pool: pool}
}

// List returns the entries visible to the user's team, newest first.
func (r *kpiRepository) List(ctx context.Context, userID string) ([]domain.KpiEntry, error) {
	const query = `
        SELECT k.id, k.date, k.type, k.metric, k.quantity, COALESCE(k.notes, ''), k.campaign_id, COALESCE(k.link, ''), k.user_id
        FROM kpi_data k
        WHERE %s
        ORDER BY k.date DESC, k.id DESC`
	rows, err := r.pool.Query(ctx, scoped(query, "k"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.KpiEntry{}
	for rows.Next() {
		var e domain.KpiEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Type, &e.Metric, &e.Quantity, &e.Notes, &e.CampaignID, &e.Link, &e.UserID); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Insert tags the entry with the acting user and their team.
func (r *kpiRepository) Insert(ctx context.Context, entry *domain.KpiEntry) error {
	const query = `
        INSERT INTO kpi_data (date, type, metric, quantity, notes, campaign_id, link, user_id, team_id)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, (SELECT team_id FROM profiles WHERE id=$8))
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.Date,
		entry.Type,
		entry.Metric,
		entry.Quantity,
		entry.Notes,
		entry.CampaignID,
		entry.Link,
		entry.UserID,
	).Scan(&entry.ID)
}
