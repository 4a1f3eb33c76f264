package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/agromart/sandbox"
)

func (a *Adapter) CreateSession(ctx context.Context, s *sandbox.Session) error {
	query := `INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, created_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := a.pool.Exec(ctx, query, s.ID, s.UserID, s.TokenHash, s.IPAddress, s.UserAgent, s.CreatedAt, s.ExpiresAt)
	return err
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*sandbox.Session, error) {
	query := `SELECT id, user_id, token_hash, ip_address, user_agent, created_at, expires_at
	          FROM sessions WHERE token_hash = $1`

	s := &sandbox.Session{}
	err := a.pool.QueryRow(ctx, query, tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sandbox.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sandbox.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
