package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresLedger struct {
	Pool *pgxpool.Pool
}

func NewPostgresLedger(ctx context.Context, connStr string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	l := &PostgresLedger{Pool: pool}
	if err := l.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return l, nil
}

func (l *PostgresLedger) initSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS post_quota (
		user_id      TEXT        NOT NULL,
		day          DATE        NOT NULL,
		day_start    TIMESTAMPTZ NOT NULL,
		post_count   INT         NOT NULL DEFAULT 0 CHECK (post_count >= 0),
		last_post_at TIMESTAMPTZ,
		PRIMARY KEY (user_id, day)
	)`
	if _, err := l.Pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Usage(ctx context.Context, userID string, day Day) (int, error) {
	var n int
	err := l.Pool.QueryRow(ctx,
		`SELECT post_count FROM post_quota WHERE user_id = $1 AND day = $2::date`,
		userID, day.Key,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Consume relies on the conditional DO UPDATE: a full row yields no RETURNING row.
func (l *PostgresLedger) Consume(ctx context.Context, userID string, day Day, limit int, at time.Time) (int, bool, error) {
	if limit <= 0 {
		return limit, false, nil
	}
	var n int
	err := l.Pool.QueryRow(ctx, `
		INSERT INTO post_quota (user_id, day, day_start, post_count, last_post_at)
		VALUES ($1, $2::date, $3, 1, $4)
		ON CONFLICT (user_id, day) DO UPDATE
			SET post_count = post_quota.post_count + 1,
			    last_post_at = EXCLUDED.last_post_at
			WHERE post_quota.post_count < $5
		RETURNING post_count`,
		userID, day.Key, day.Start, at, limit,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return limit, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (l *PostgresLedger) Release(ctx context.Context, userID string, day Day) error {
	_, err := l.Pool.Exec(ctx,
		`UPDATE post_quota SET post_count = post_count - 1 WHERE user_id = $1 AND day = $2::date AND post_count > 0`,
		userID, day.Key,
	)
	return err
}

func (l *PostgresLedger) Close() {
	l.Pool.Close()
}
