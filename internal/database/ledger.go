// Package database holds the run ledger: a small Postgres-backed table
// recording the status of every repository a worker has processed, so an
// operator can see what is queued, running, loaded, or failed without
// grepping logs. It repurposes a pgxpool-based client away from its
// original per-metric validation schema toward per-repository run status.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunStatus is one of the lifecycle states a repository run passes through.
type RunStatus string

const (
	RunQueued  RunStatus = "queued"
	RunRunning RunStatus = "running"
	RunLoaded  RunStatus = "loaded"
	RunFailed  RunStatus = "failed"
)

// Ledger records repository run status in Postgres. A nil *Ledger (when
// PostgresDSN is unset) makes every method a no-op, so callers never need
// to branch on whether ledger recording is enabled.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger connects to dsn and ensures the runs table exists. An empty
// dsn returns a nil *Ledger, disabling recording without error.
func NewLedger(ctx context.Context, dsn string) (*Ledger, error) {
	if dsn == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	l := &Ledger{pool: pool}
	if err := l.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) ensureSchema(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS repository_runs (
	repo_full_name    TEXT PRIMARY KEY,
	status            TEXT NOT NULL,
	nodes_written     INTEGER NOT NULL DEFAULT 0,
	edges_written     INTEGER NOT NULL DEFAULT 0,
	tokens_exhausted  INTEGER NOT NULL DEFAULT 0,
	last_error        TEXT,
	started_at        TIMESTAMPTZ,
	finished_at       TIMESTAMPTZ
)`)
	return err
}

// Start marks repoFullName as running, creating its row if absent.
func (l *Ledger) Start(ctx context.Context, repoFullName string) error {
	if l == nil {
		return nil
	}
	_, err := l.pool.Exec(ctx, `
INSERT INTO repository_runs (repo_full_name, status, started_at)
VALUES ($1, $2, $3)
ON CONFLICT (repo_full_name) DO UPDATE
SET status = $2, started_at = $3, last_error = NULL`,
		repoFullName, string(RunRunning), time.Now().UTC())
	return err
}

// Finish records the terminal state of a run: loaded with counts, or
// failed with the triggering error.
func (l *Ledger) Finish(ctx context.Context, repoFullName string, status RunStatus, nodesWritten, edgesWritten int, runErr error) error {
	if l == nil {
		return nil
	}
	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}
	_, err := l.pool.Exec(ctx, `
UPDATE repository_runs
SET status = $2, nodes_written = $3, edges_written = $4, last_error = $5, finished_at = $6
WHERE repo_full_name = $1`,
		repoFullName, string(status), nodesWritten, edgesWritten, errMsg, time.Now().UTC())
	return err
}

// RecordTokenExhaustion increments the exhausted-credential counter on a
// repository's ledger row. The token pool does not call it.
func (l *Ledger) RecordTokenExhaustion(ctx context.Context, repoFullName string) error {
	if l == nil {
		return nil
	}
	_, err := l.pool.Exec(ctx, `
UPDATE repository_runs SET tokens_exhausted = tokens_exhausted + 1 WHERE repo_full_name = $1`,
		repoFullName)
	return err
}

// Close releases the connection pool.
func (l *Ledger) Close() {
	if l != nil {
		l.pool.Close()
	}
}
