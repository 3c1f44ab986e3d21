package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// SessionRepository handles persistence for server-side sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session types.Session) (types.Session, error) {
	session.CreatedAt = time.Now()

	const query = `
		INSERT INTO sessions (token, user_id, username, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		session.Token,
		session.UserID,
		session.Username,
		session.ExpiresAt,
		session.CreatedAt,
	); err != nil {
		return types.Session{}, conflictOr(err)
	}
	return session, nil
}

func (r *SessionRepository) Get(ctx context.Context, token string) (types.Session, error) {
	const query = `
		SELECT token, user_id, username, expires_at, created_at
		FROM sessions
		WHERE token = $1`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.Username,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}
	return session, nil
}

// Delete removes the session. Deleting an absent token is not an error;
// logout is idempotent.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

// Touch extends the session deadline, used in sliding-expiry mode.
func (r *SessionRepository) Touch(ctx context.Context, token string, expiresAt time.Time) error {
	const query = `UPDATE sessions SET expires_at = $1 WHERE token = $2`
	_, err := r.db.ExecContext(ctx, query, expiresAt, token)
	return err
}

// DeleteExpired clears sessions past their deadline.
func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	const query = `DELETE FROM sessions WHERE expires_at < now()`
	_, err := r.db.ExecContext(ctx, query)
	return err
}
