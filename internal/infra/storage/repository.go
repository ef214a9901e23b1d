package storage

import (
	"context"

	"github.com/vietddude/authkit/internal/core/domain"
)

// SessionRepository persists the tokens of signed-in profiles.
type SessionRepository interface {
	// Save creates or replaces the session for session.Subject
	Save(ctx context.Context, session *domain.Session) error

	// Get returns the session for subject, or nil when there is none
	Get(ctx context.Context, subject string) (*domain.Session, error)

	// Delete removes the session for subject; deleting a missing session is not an error
	Delete(ctx context.Context, subject string) error
}
