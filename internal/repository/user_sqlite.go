package repository

import (
	"context"
	"database/sql"

	"tubedash-backend/internal/models"
)

// UserSQLiteRepo mirrors the session provider's identities into the
// local users table.
type UserSQLiteRepo struct {
	db *sql.DB
}

func NewUserSQLiteRepo(db *sql.DB) *UserSQLiteRepo {
	return &UserSQLiteRepo{db: db}
}

func (r *UserSQLiteRepo) Ensure(ctx context.Context, user models.SessionUser) error {
	query := `
		INSERT INTO users (id, email, full_name)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, full_name = excluded.full_name`
	_, err := r.db.ExecContext(ctx, query, user.ID.String(), user.Email, user.Name)
	return err
}
