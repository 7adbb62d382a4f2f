package memory

import (
	"context"
	"sync"
	"time"

	"lms-grading-service/internal/domain"
)

// UploadSessionStore keeps import sessions in process memory. Only suitable for
// single-instance deployments; use the Redis store otherwise.
type UploadSessionStore struct {
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]storedSession
}

type storedSession struct {
	session   domain.ImportSession
	expiresAt time.Time
}

func NewUploadSessionStore() *UploadSessionStore {
	return NewUploadSessionStoreWithClock(time.Now)
}

// NewUploadSessionStoreWithClock is test-only for deterministic expiry.
func NewUploadSessionStoreWithClock(clock func() time.Time) *UploadSessionStore {
	return &UploadSessionStore{
		clock:    clock,
		sessions: make(map[string]storedSession),
	}
}

func (s *UploadSessionStore) Get(_ context.Context, sessionID string) (domain.ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sessionID]
	if !ok {
		return domain.ImportSession{}, domain.ErrImportSessionNotFound
	}
	if !stored.expiresAt.IsZero() && !stored.expiresAt.After(s.clock()) {
		delete(s.sessions, sessionID)
		return domain.ImportSession{}, domain.ErrImportSessionNotFound
	}
	return stored.session, nil
}

// Put stores a session; a non-positive ttl keeps it until Expire.
func (s *UploadSessionStore) Put(_ context.Context, session domain.ImportSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.clock().Add(ttl)
	}
	s.sessions[session.ID] = storedSession{session: session, expiresAt: expiresAt}
	return nil
}

func (s *UploadSessionStore) Expire(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
