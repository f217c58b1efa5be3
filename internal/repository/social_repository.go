package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// SocialRepository manages team social media entries and feed connections.
type SocialRepository interface {
	ListEntries(ctx context.Context, teamID int64) ([]domain.SocialMediaEntry, error)
	InsertEntry(ctx context.Context, entry *domain.SocialMediaEntry) error
	DeleteEntry(ctx context.Context, teamID, id int64) error
	ListConnections(ctx context.Context, teamID int64) ([]domain.SocialConnection, error)
	UpsertConnection(ctx context.Context, teamID int64, updatedBy string, conn domain.SocialConnection) error
}

type socialRepository struct {
	pool *pgxpool.Pool
}

// NewSocialRepository constructs repository.
func NewSocialRepository(pool *pgxpool.Pool) SocialRepository {
	return &socialRepository{pool: pool}
}

func (r *socialRepository) ListEntries(ctx context.Context, teamID int64) ([]domain.SocialMediaEntry, error) {
	const query = `
        SELECT id, network, title, url, placement, notes, created_at, team_id, user_id
        FROM social_media_entries
        WHERE team_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SocialMediaEntry{}
	for rows.Next() {
		var (
			e       domain.SocialMediaEntry
			network string
		)
		if err := rows.Scan(&e.ID, &network, &e.Title, &e.URL, &e.Placement, &e.Notes, &e.CreatedAt, &e.TeamID, &e.UserID); err != nil {
			return nil, err
		}
		e.Network = domain.NormalizeNetwork(network)
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *socialRepository) InsertEntry(ctx context.Context, entry *domain.SocialMediaEntry) error {
	const query = `
        INSERT INTO social_media_entries (network, title, url, placement, notes, team_id, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.Network,
		entry.Title,
		entry.URL,
		entry.Placement,
		entry.Notes,
		entry.TeamID,
		entry.UserID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *socialRepository) DeleteEntry(ctx context.Context, teamID, id int64) error {
	const query = `DELETE FROM social_media_entries WHERE id=$1 AND team_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, teamID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *socialRepository) ListConnections(ctx context.Context, teamID int64) ([]domain.SocialConnection, error) {
	const query = `
        SELECT id, network, connected, auto_sync_cadence, last_synced
        FROM social_media_connections
        WHERE team_id=$1`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SocialConnection{}
	for rows.Next() {
		var (
			id         int64
			network    string
			cadence    *string
			lastSynced *time.Time
			c          domain.SocialConnection
		)
		if err := rows.Scan(&id, &network, &c.Connected, &cadence, &lastSynced); err != nil {
			return nil, err
		}
		c.ID = &id
		c.Network = domain.NormalizeNetwork(network)
		if cadence != nil {
			c.AutoSync = domain.NormalizeCadence(*cadence)
		} else {
			c.AutoSync = domain.CadenceManual
		}
		c.LastSynced = lastSynced
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *socialRepository) UpsertConnection(ctx context.Context, teamID int64, updatedBy string, conn domain.SocialConnection) error {
	const query = `
        INSERT INTO social_media_connections (team_id, network, connected, auto_sync_cadence, last_synced, updated_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (team_id, network) DO UPDATE SET
            connected=EXCLUDED.connected,
            auto_sync_cadence=EXCLUDED.auto_sync_cadence,
            last_synced=EXCLUDED.last_synced,
            updated_by=EXCLUDED.updated_by,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		teamID,
		conn.Network,
		conn.Connected,
		conn.AutoSync,
		conn.LastSynced,
		updatedBy,
	)
	return err
}
