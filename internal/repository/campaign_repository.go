package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// CampaignRepository reads and writes campaigns.
type CampaignRepository interface {
	List(ctx context.Context, userID string) ([]domain.Campaign, error)
	Insert(ctx context.Context, campaign *domain.Campaign) error
}

type campaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository constructs repository.
func NewCampaignRepository(pool *pgxpool.Pool) CampaignRepository {
	return &campaignRepository{pool: pool}
}

func (r *campaignRepository) List(ctx context.Context, userID string) ([]domain.Campaign, error) {
	const query = `
        SELECT c.id, c.name, c.description, c.start_date, c.end_date, c.user_id
        FROM campaigns c
        WHERE %s
        ORDER BY c.start_date DESC, c.id DESC`
	rows, err := r.pool.Query(ctx, scoped(query, "c"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Campaign{}
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.UserID); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *campaignRepository) Insert(ctx context.Context, campaign *domain.Campaign) error {
	const query = `
        INSERT INTO campaigns (name, description, start_date, end_date, user_id, team_id)
        VALUES ($1, $2, $3, $4, $5, (SELECT team_id FROM profiles WHERE id=$5))
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		campaign.Name,
		campaign.Description,
		campaign.StartDate,
		campaign.EndDate,
		campaign.UserID,
	).Scan(&campaign.ID)
}
