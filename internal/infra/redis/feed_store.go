package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lms-grading-service/internal/app"
	"lms-grading-service/internal/domain"
)

// FeedStore is a Redis-aware implementation of app.FeedRepository.
// Subscribers are still fanned out in-process; Redis only marks which tests
// have a live feed on some instance.
type FeedStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	feeds  map[string]*app.Feed
}

func NewFeedStore(client *redis.Client, ttl time.Duration) *FeedStore {
	return &FeedStore{
		client: client,
		ttl:    ttl,
		feeds:  make(map[string]*app.Feed),
	}
}

func (s *FeedStore) Subscribe(testID string) (<-chan domain.ResultFeed, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[testID]
	if !ok {
		feed = app.NewFeed(testID)
		s.feeds[testID] = feed
		// best-effort liveness marker
		_ = s.client.Set(context.Background(), s.key(testID), "1", s.ttl).Err()
	}
	ch, unsubscribe := feed.Subscribe()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsubscribe()
		if s.feeds[testID] == feed && feed.IsIdle() {
			delete(s.feeds, testID)
			_ = s.client.Del(context.Background(), s.key(testID)).Err()
		}
	}
	return ch, cancel
}

func (s *FeedStore) Get(testID string) (*app.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, ok := s.feeds[testID]
	return feed, ok
}

func (s *FeedStore) key(testID string) string {
	return "results:feed:" + testID
}
