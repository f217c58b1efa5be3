package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRow is the wire shape of a profile joined to its team.
// Every column may be NULL; defaulting happens in the session resolver.
type ProfileRow struct {
	Role      *string
	AvatarURL *string
	TeamID    *int64
	TeamName  *string
}

// ProfileRepository manages profiles and their team references.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*ProfileRow, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	Assign(ctx context.Context, userID, role string, teamID *int64) error
	EnsureTeam(ctx context.Context, name string) (int64, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

// GetProfile returns pgx.ErrNoRows when the user has no profile record.
func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*ProfileRow, error) {
	const query = `
        SELECT p.role, p.avatar_url, t.id, t.name
        FROM profiles p
        LEFT JOIN teams t ON t.id = p.team_id
        WHERE p.id=$1`
	var row ProfileRow
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&row.Role,
		&row.AvatarURL,
		&row.TeamID,
		&row.TeamName,
	); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *profileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	const query = `UPDATE profiles SET avatar_url=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, avatarURL, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) Assign(ctx context.Context, userID, role string, teamID *int64) error {
	const query = `
        INSERT INTO profiles (id, role, team_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET role=EXCLUDED.role, team_id=EXCLUDED.team_id, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, userID, role, teamID)
	return err
}

func (r *profileRepository) EnsureTeam(ctx context.Context, name string) (int64, error) {
	const query = `
        INSERT INTO teams (name) VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
        RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, name).Scan(&id)
	return id, err
}
