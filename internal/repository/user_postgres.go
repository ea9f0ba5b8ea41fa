package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tubedash-backend/internal/models"
)

// UserPostgresRepo mirrors the session provider's identities into the
// local users table so note ownership has a foreign key to hang off.
type UserPostgresRepo struct {
	pool *pgxpool.Pool
}

func NewUserPostgresRepo(pool *pgxpool.Pool) *UserPostgresRepo {
	return &UserPostgresRepo{pool: pool}
}

func (r *UserPostgresRepo) Ensure(ctx context.Context, user models.SessionUser) error {
	query := `
		INSERT INTO users (id, email, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.Name)
	return err
}
