package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/duelforge/arena-server/internal/config"
	"github.com/duelforge/arena-server/internal/engine"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS matches (
	match_id   TEXT PRIMARY KEY,
	phase      TEXT NOT NULL,
	seq        BIGINT NOT NULL,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_matches_phase ON matches(phase);
`

// Store persists full match snapshots in Postgres, one row per match. The
// snapshot is written whole after every accepted intent, so the newest row
// is always a consistent resume point.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to Postgres and ensures the schema exists. An empty URL
// returns (nil, nil): persistence is optional and the caller runs without
// it.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("match store connected",
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Save upserts the match snapshot.
func (s *Store) Save(ctx context.Context, p *engine.PersistedMatch) error {
	state, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", p.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO matches (match_id, phase, seq, state, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (match_id) DO UPDATE
		SET phase = EXCLUDED.phase,
		    seq = EXCLUDED.seq,
		    state = EXCLUDED.state,
		    updated_at = now()`,
		p.ID, string(p.Phase), int64(p.Seq), state,
	)
	if err != nil {
		return fmt.Errorf("save match %s: %w", p.ID, err)
	}
	return nil
}

// Load reads one match snapshot. Returns (nil, nil) when the match is
// unknown.
func (s *Store) Load(ctx context.Context, matchID string) (*engine.PersistedMatch, error) {
	var state []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM matches WHERE match_id = $1`, matchID,
	).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}

	var p engine.PersistedMatch
	if err := json.Unmarshal(state, &p); err != nil {
		return nil, fmt.Errorf("unmarshal match %s: %w", matchID, err)
	}
	return &p, nil
}

// LoadUnfinished reads every match snapshot that has not been decided yet,
// for re-adoption after a restart.
func (s *Store) LoadUnfinished(ctx context.Context) ([]*engine.PersistedMatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT state FROM matches WHERE phase != $1 ORDER BY updated_at`,
		string(engine.PhaseFinished),
	)
	if err != nil {
		return nil, fmt.Errorf("load unfinished matches: %w", err)
	}
	defer rows.Close()

	var out []*engine.PersistedMatch
	for rows.Next() {
		var state []byte
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		var p engine.PersistedMatch
		if err := json.Unmarshal(state, &p); err != nil {
			// A corrupt row should not block the rest of the recovery.
			s.logger.Warn("skipping unreadable match snapshot", zap.Error(err))
			continue
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Delete removes a match snapshot.
func (s *Store) Delete(ctx context.Context, matchID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM matches WHERE match_id = $1`, matchID,
	); err != nil {
		return fmt.Errorf("delete match %s: %w", matchID, err)
	}
	return nil
}
