package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProbe answers the health endpoint's reachability check.
type PostgresProbe struct {
	pool *pgxpool.Pool
}

func NewPostgresProbe(pool *pgxpool.Pool) *PostgresProbe {
	return &PostgresProbe{pool: pool}
}

func (p *PostgresProbe) Probe(ctx context.Context) error {
	var one int
	return p.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// SQLiteProbe answers the health endpoint's reachability check.
type SQLiteProbe struct {
	db *sql.DB
}

func NewSQLiteProbe(db *sql.DB) *SQLiteProbe {
	return &SQLiteProbe{db: db}
}

func (p *SQLiteProbe) Probe(ctx context.Context) error {
	var one int
	return p.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
