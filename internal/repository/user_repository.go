package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// UserRepository defines persistence access for auth accounts.
type UserRepository interface {
	// CreateWithProfile inserts the account and its profile in one
	// transaction. A nil teamID leaves the profile without a team.
	CreateWithProfile(ctx context.Context, user *domain.User, role domain.Role, teamID *int64) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) CreateWithProfile(ctx context.Context, user *domain.User, role domain.Role, teamID *int64) error {
	const insertUser = `
        INSERT INTO users (email, password_hash)
        VALUES (lower($1), $2)
        RETURNING id, email, created_at, updated_at`
	const insertProfile = `
        INSERT INTO profiles (id, role, team_id)
        VALUES ($1, $2, $3)`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertUser, user.Email, user.PasswordHash).
			Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertProfile, user.ID, string(role), teamID)
		return err
	})
}

func (r *userRepository) UpdateEmail(ctx context.Context, id, email string) error {
	const query = `UPDATE users SET email=lower($1), updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, email, id)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	const query = `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, hash, id)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, created_at, updated_at
        FROM users WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, created_at, updated_at
        FROM users WHERE email=lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
