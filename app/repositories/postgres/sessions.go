package postgres

import (
	"context"
	"database/sql"
	"time"

	"inkpost/app/models"
)

// SessionRepository handles persistence for login sessions.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.CreatedAt,
		nullTime(session.ExpiresAt),
	)
	return mapError(err)
}

// Get returns the session unless it is unknown or expired.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	const query = `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)`
	var (
		session models.Session
		expires sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id, r.now()).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&expires,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if expires.Valid {
		session.ExpiresAt = expires.Time
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions that expired before now and reports how
// many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`, r.now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
