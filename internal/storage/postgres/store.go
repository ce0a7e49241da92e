// Package postgres persists run metadata in PostgreSQL through pgxpool.
//
// Only counts and request metadata are stored. Uploaded alumni rows never
// reach the database.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/alumnicsv/internal/config"
	"github.com/JonMunkholm/alumnicsv/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversion_runs (
	id            UUID PRIMARY KEY,
	mode          TEXT        NOT NULL,
	filename      TEXT        NOT NULL,
	size_bytes    BIGINT      NOT NULL,
	encoding      TEXT,
	rows_total    INTEGER     NOT NULL DEFAULT 0,
	rows_accepted INTEGER     NOT NULL DEFAULT 0,
	rows_dropped  INTEGER     NOT NULL DEFAULT 0,
	status        TEXT        NOT NULL,
	error         TEXT,
	duration_ms   BIGINT      NOT NULL,
	ip_address    INET,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conversion_runs_created_at_idx ON conversion_runs (created_at DESC);
`

// Store is a core.RunRecorder backed by the conversion_runs table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens and pings a pool sized from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the conversion_runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Record inserts run.
func (s *Store) Record(ctx context.Context, run core.Run) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversion_runs (
			id, mode, filename, size_bytes, encoding, rows_total, rows_accepted,
			rows_dropped, status, error, duration_ms, ip_address, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID.String(),
		string(run.Mode),
		run.Filename,
		run.SizeBytes,
		toPgText(run.Encoding),
		run.RowsTotal,
		run.RowsAccepted,
		run.RowsDropped,
		string(run.Status),
		toPgText(run.Error),
		run.DurationMS,
		toInet(run.IPAddress),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs ordered by created_at, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, mode, filename, size_bytes, encoding, rows_total,
			rows_accepted, rows_dropped, status, error, duration_ms,
			host(ip_address), created_at
		FROM conversion_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]core.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}

	return runs, nil
}

func scanRun(rows pgx.Rows) (core.Run, error) {
	var (
		run                  core.Run
		id, mode, status     string
		encoding, errMsg, ip pgtype.Text
	)

	err := rows.Scan(
		&id, &mode, &run.Filename, &run.SizeBytes, &encoding, &run.RowsTotal,
		&run.RowsAccepted, &run.RowsDropped, &status, &errMsg, &run.DurationMS,
		&ip, &run.CreatedAt,
	)
	if err != nil {
		return core.Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return core.Run{}, fmt.Errorf("parse run id %q: %w", id, err)
	}
	run.Mode = core.Mode(mode)
	run.Status = core.RunStatus(status)
	run.Encoding = encoding.String
	run.Error = errMsg.String
	run.IPAddress = ip.String
	return run, nil
}

// toPgText maps "" to SQL NULL.
func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// toInet parses an IP, stripping any port. Unparseable input is stored as NULL.
func toInet(s string) *netip.Addr {
	if s == "" {
		return nil
	}
	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}

var _ core.RunRecorder = (*Store)(nil)
