package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Postgres keeps one row per browser session in evex_sessions.
type Postgres struct {
	db  *sql.DB
	sid string
}

func NewPostgres(db *sql.DB, sid string) *Postgres {
	return &Postgres{db: db, sid: sid}
}

func PostgresFactory(db *sql.DB) Factory {
	return func(sid string) Store { return NewPostgres(db, sid) }
}

func (p *Postgres) Load(ctx context.Context) (Tokens, error) {
	var t Tokens
	err := p.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM evex_sessions WHERE sid = $1`, p.sid,
	).Scan(&t.Access, &t.Refresh)
	if errors.Is(err, sql.ErrNoRows) {
		return Tokens{}, nil
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("tokenstore: load %s: %w", p.sid, err)
	}
	return t, nil
}

func (p *Postgres) Save(ctx context.Context, t Tokens) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO evex_sessions (sid, access_token, refresh_token, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (sid) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     updated_at = NOW()`,
		p.sid, t.Access, t.Refresh,
	)
	if err != nil {
		return fmt.Errorf("tokenstore: save %s: %w", p.sid, err)
	}
	return nil
}

func (p *Postgres) SetAccess(ctx context.Context, access string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE evex_sessions SET access_token = $1, updated_at = NOW() WHERE sid = $2`,
		access, p.sid,
	)
	if err != nil {
		return fmt.Errorf("tokenstore: set access %s: %w", p.sid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM evex_sessions WHERE sid = $1`, p.sid); err != nil {
		return fmt.Errorf("tokenstore: clear %s: %w", p.sid, err)
	}
	return nil
}

// PurgeIdle removes sessions not written for the given interval.
func PurgeIdle(ctx context.Context, db *sql.DB, idle time.Duration) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM evex_sessions WHERE updated_at < NOW() - ($1 * INTERVAL '1 second')`, int64(idle.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("tokenstore: purge: %w", err)
	}
	return res.RowsAffected()
}
