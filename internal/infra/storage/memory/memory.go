package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/authkit/internal/core/domain"
)

// SessionRepo keeps sessions in process memory.
type SessionRepo struct {
	sessions map[string]domain.Session
	mu       sync.RWMutex
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions: make(map[string]domain.Session),
	}
}

func (r *SessionRepo) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *session
	s.UpdatedAt = time.Now().UTC()
	r.sessions[s.Subject] = s
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, subject string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[subject]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, subject)
	return nil
}
