package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/alumni-hub-api/pkg/config"
)

// OpenPostgres returns a configured PostgreSQL client.
func OpenPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

const (
	createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`
	selectKV = `SELECT value FROM kv_store WHERE key = $1`
	upsertKV = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteKV = `DELETE FROM kv_store WHERE key = $1`
)

// PostgresStore keeps values in a single kv_store table.
type PostgresStore struct {
	db    *sqlx.DB
	limit int64
	now   func() time.Time
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sqlx.DB, limit int64) *PostgresStore {
	return &PostgresStore{db: db, limit: limit, now: time.Now}
}

// EnsureSchema creates the kv_store table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createKVTable); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

// Get fetches key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := s.db.GetContext(ctx, &value, selectKV, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select kv %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value. A full disk (SQLSTATE 53100) is reported as ErrQuotaExceeded.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if exceeds(s.limit, len(value)) {
		return ErrQuotaExceeded
	}
	if _, err := s.db.ExecContext(ctx, upsertKV, key, value, s.now().UTC()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "53100" {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("upsert kv %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteKV, key); err != nil {
		return fmt.Errorf("delete kv %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
