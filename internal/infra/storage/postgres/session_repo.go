package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/authkit/internal/core/domain"
)

// SessionRepo implements storage.SessionRepository using PostgreSQL.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new PostgreSQL session repository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

type sessionRow struct {
	Subject      string       `db:"subject"`
	UserID       string       `db:"user_id"`
	AccessToken  string       `db:"access_token"`
	RefreshToken string       `db:"refresh_token"`
	ExpiresAt    sql.NullTime `db:"expires_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

const upsertSession = `
INSERT INTO sessions (subject, user_id, access_token, refresh_token, expires_at, updated_at)
VALUES (:subject, :user_id, :access_token, :refresh_token, :expires_at, :updated_at)
ON CONFLICT (subject) DO UPDATE SET
    user_id       = EXCLUDED.user_id,
    access_token  = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    expires_at    = EXCLUDED.expires_at,
    updated_at    = EXCLUDED.updated_at`

// Save upserts the session keyed by subject.
func (r *SessionRepo) Save(ctx context.Context, session *domain.Session) error {
	row := sessionRow{
		Subject:      session.Subject,
		UserID:       session.UserID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    sql.NullTime{Time: session.ExpiresAt, Valid: !session.ExpiresAt.IsZero()},
		UpdatedAt:    time.Now().UTC(),
	}
	if _, err := r.db.NamedExecContext(ctx, upsertSession, row); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session by subject.
func (r *SessionRepo) Get(ctx context.Context, subject string) (*domain.Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT subject, user_id, access_token, refresh_token, expires_at, updated_at
		FROM sessions WHERE subject = $1`, subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &domain.Session{
		Subject:      row.Subject,
		UserID:       row.UserID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt.Time,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// Delete removes a session by subject.
func (r *SessionRepo) Delete(ctx context.Context, subject string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE subject = $1`, subject); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
