package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres records plays in a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a Postgres recorder.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewWithPool wraps an existing pool (used by tests).
func NewWithPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close closes the database connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// RecordPlay inserts one finished play.
func (p *Postgres) RecordPlay(ctx context.Context, play Play) error {
	playedAt := play.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO plays (room_id, user_id, user_name, chart_id, chart_name, score, accuracy, full_combo, played_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		play.RoomID, play.UserID, play.UserName, play.ChartID, play.ChartName,
		play.Score, play.Accuracy, play.FullCombo, playedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting play for user %d: %w", play.UserID, err)
	}
	return nil
}

// RecentByRoom returns the latest plays recorded for a room, newest first.
func (p *Postgres) RecentByRoom(ctx context.Context, roomID string, limit int) ([]Play, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT room_id, user_id, user_name, chart_id, chart_name, score, accuracy, full_combo, played_at
		 FROM plays WHERE room_id = $1
		 ORDER BY played_at DESC, id DESC
		 LIMIT $2`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying plays for room %q: %w", roomID, err)
	}
	defer rows.Close()

	plays := []Play{}
	for rows.Next() {
		var pl Play
		if err := rows.Scan(
			&pl.RoomID, &pl.UserID, &pl.UserName, &pl.ChartID, &pl.ChartName,
			&pl.Score, &pl.Accuracy, &pl.FullCombo, &pl.PlayedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning play row: %w", err)
		}
		plays = append(plays, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading play rows: %w", err)
	}
	return plays, nil
}
