package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the database connection pool
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying connection pool
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// PostgresRepository reads tests mirrored into a Postgres table.
// Each row holds the REST document shape as JSONB:
//
//	CREATE TABLE tests (
//	    id       TEXT PRIMARY KEY,
//	    position INTEGER NOT NULL DEFAULT 0,
//	    doc      JSONB NOT NULL
//	);
type PostgresRepository struct {
	db *DB
}

// NewPostgresRepository creates a repository over an open connection
func NewPostgresRepository(d *DB) *PostgresRepository {
	return &PostgresRepository{db: d}
}

// Name returns the source name
func (r *PostgresRepository) Name() string {
	return "postgres"
}

// ListTests returns up to limit tests ordered by position
func (r *PostgresRepository) ListTests(ctx context.Context, limit int) ([]catalog.TestDocument, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, doc
		FROM tests
		ORDER BY position ASC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	defer rows.Close()

	var items []json.RawMessage
	var ids []string
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan test row: %w", err)
		}
		ids = append(ids, id)
		items = append(items, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test rows: %w", err)
	}

	tests := catalog.DecodeTests(items)
	for i := range tests {
		if tests[i].ID == "" {
			tests[i].ID = ids[i]
		}
	}
	return tests, nil
}

// Close closes the underlying pool
func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}
