package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"iotower.com/console/pg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS console_session (
	profile    TEXT PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// dbtx is the part of pgxpool.Pool the repository uses
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDB stores console sessions in PostgreSQL
type PostgresDB struct {
	db  dbtx
	now func() time.Time
}

var _ model.SessionRepository = (*PostgresDB)(nil)

func NewPostgresDB(pool *pgxpool.Pool) *PostgresDB {
	return &PostgresDB{db: pool, now: time.Now}
}

// Connect opens a pool on databaseURL and checks it answers
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach session database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the session table when missing
func (p *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create session table: %w", err)
	}
	return nil
}

func (p *PostgresDB) SaveSession(ctx context.Context, rec *model.SessionRecord) error {
	if rec.Profile == "" {
		return fmt.Errorf("session profile is required")
	}
	raw, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	rec.UpdatedAt = p.now().UTC()

	query := `
    INSERT INTO console_session (profile, snapshot, updated_at)
    VALUES ($1, $2, $3)
    ON CONFLICT (profile) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`

	_, err = p.db.Exec(ctx, query, rec.Profile, raw, rec.UpdatedAt)
	return err
}

func (p *PostgresDB) LoadSession(ctx context.Context, profile string) (*model.SessionRecord, error) {
	rec := &model.SessionRecord{Profile: profile}
	var raw []byte
	query := `SELECT snapshot, updated_at FROM console_session WHERE profile = $1`

	err := p.db.QueryRow(ctx, query, profile).Scan(&raw, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode session %q: %w", profile, err)
	}
	return rec, nil
}

func (p *PostgresDB) DeleteSession(ctx context.Context, profile string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM console_session WHERE profile = $1`, profile)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}
