package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lms-grading-service/internal/domain"
)

// UploadSessionStore keeps import sessions in Redis so any instance can serve
// the next request of an upload.
type UploadSessionStore struct {
	client *redis.Client
}

func NewUploadSessionStore(client *redis.Client) *UploadSessionStore {
	return &UploadSessionStore{client: client}
}

func (s *UploadSessionStore) Get(ctx context.Context, sessionID string) (domain.ImportSession, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ImportSession{}, domain.ErrImportSessionNotFound
	}
	if err != nil {
		return domain.ImportSession{}, fmt.Errorf("get import session: %w", err)
	}
	var session domain.ImportSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.ImportSession{}, fmt.Errorf("decode import session: %w", err)
	}
	return session, nil
}

// Put stores a session; a non-positive ttl keeps it until Expire.
func (s *UploadSessionStore) Put(ctx context.Context, session domain.ImportSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(session.ID), data, ttl).Err()
}

func (s *UploadSessionStore) Expire(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *UploadSessionStore) key(sessionID string) string {
	return "import:session:" + sessionID
}
