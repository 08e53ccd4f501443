// Package pgcheckpoint implements a PostgreSQL-backed checkpoint store: an
// alternative to the file-based Save/Load for deployments that already run
// a Postgres instance and want checkpoints queryable/centralized rather
// than scattered across local disk. One row per run, keyed by an opaque
// id, storing a JSONB payload.
package pgcheckpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shapeless/lspgo/checkpoint"
)

// defaultTableName is the table used when no custom name is provided.
const defaultTableName = "lsp_checkpoints"

// Querier abstracts the pgx query methods pgcheckpoint needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so callers can inject either a
// connection pool or a single transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements a checkpoint backend on top of PostgreSQL. Each
// instance is scoped to a single run, identified by RunID.
type Store struct {
	db        Querier
	runID     uuid.UUID
	tableName string
}

// Option configures optional Store behavior.
type Option func(*Store)

// WithTableName overrides the default table name ("lsp_checkpoints"). The
// name is sanitized via pgx.Identifier before being interpolated into
// queries.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New creates a Postgres-backed checkpoint store for the given run. db is
// typically a *pgxpool.Pool. runID identifies this run distinct from the
// caller-chosen file path a file-based checkpoint would otherwise use.
func New(db Querier, runID uuid.UUID, opts ...Option) *Store {
	s := &Store{db: db, runID: runID, tableName: defaultTableName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the checkpoints table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id UUID PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.tableName)
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("pgcheckpoint: ensure schema: %w", err)
	}
	return nil
}

// Save upserts the checkpoint for this run. Checkpoint writes are
// best-effort: callers decide whether to log or propagate a failure.
func (s *Store) Save(ctx context.Context, cp checkpoint.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("pgcheckpoint: marshal: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (run_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, s.tableName)

	if _, err := s.db.Exec(ctx, query, s.runID, payload); err != nil {
		return fmt.Errorf("pgcheckpoint: upsert: %w", err)
	}
	return nil
}

// Load reads the most recently saved checkpoint for this run. A missing
// row is a recoverable condition: the caller should start fresh rather
// than treat it as fatal.
func (s *Store) Load(ctx context.Context) (checkpoint.Checkpoint, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE run_id = $1`, s.tableName)

	var payload []byte
	if err := s.db.QueryRow(ctx, query, s.runID).Scan(&payload); err != nil {
		if err == pgx.ErrNoRows {
			return checkpoint.Checkpoint{}, fmt.Errorf("pgcheckpoint: no checkpoint for run %s: %w", s.runID, err)
		}
		return checkpoint.Checkpoint{}, fmt.Errorf("pgcheckpoint: load: %w", err)
	}

	var cp checkpoint.Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("pgcheckpoint: unmarshal: %w", err)
	}
	return cp, nil
}

// Delete removes any stored checkpoint for this run. Errors are logged
// rather than returned; a leftover row is harmless and the next Save
// overwrites it.
func (s *Store) Delete(ctx context.Context) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE run_id = $1`, s.tableName)
	if _, err := s.db.Exec(ctx, query, s.runID); err != nil {
		slog.Error("pgcheckpoint: failed to delete checkpoint", "run_id", s.runID, "error", err)
	}
}
