package cachestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Postgres is a key-value store over a single table, shared across service
// replicas so any instance can replay another's cached results. Expired rows
// are invisible to Get immediately and physically removed by a background
// sweeper.
type Postgres struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPostgres creates a Postgres store, ensures its table exists and starts
// the expiry sweeper.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, sweepInterval time.Duration) (*Postgres, error) {
	p := &Postgres{
		pool:   pool,
		logger: log.With().Str("component", "cache_store").Logger(),
		stop:   make(chan struct{}),
	}

	if err := p.migrate(ctx); err != nil {
		return nil, fmt.Errorf("cachestore: ensure schema: %w", err)
	}

	if sweepInterval > 0 {
		go p.sweeper(sweepInterval)
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS optimization_cache (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS optimization_cache_expires_at_idx
			ON optimization_cache (expires_at);
	`)
	return err
}

// Get returns the value for key if present and unexpired.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM optimization_cache WHERE key = $1 AND expires_at > NOW()`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cachestore: get %s: %w", key, err)
	}
	return value, true, nil
}

// SetWithExpiry upserts value under key with the given TTL.
func (p *Postgres) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO optimization_cache (key, value, expires_at)
		VALUES ($1, $2, NOW() + make_interval(secs => $3))
		ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`, key, value, ttl.Seconds())
	if err != nil {
		return fmt.Errorf("cachestore: set %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes all expired rows and returns how many were deleted.
func (p *Postgres) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM optimization_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("cachestore: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close stops the sweeper. The pool is owned by the caller and not closed.
func (p *Postgres) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Postgres) sweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := p.DeleteExpired(ctx)
			cancel()
			if err != nil {
				p.logger.Warn().Err(err).Msg("Cache sweep failed")
			} else if n > 0 {
				p.logger.Debug().Int64("deleted", n).Msg("Swept expired cache entries")
			}
		}
	}
}
