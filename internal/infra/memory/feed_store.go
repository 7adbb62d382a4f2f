package memory

import (
	"sync"

	"lms-grading-service/internal/app"
	"lms-grading-service/internal/domain"
)

// FeedStore is an in-memory implementation of app.FeedRepository.
type FeedStore struct {
	mu    sync.RWMutex
	feeds map[string]*app.Feed
}

func NewFeedStore() *FeedStore {
	return &FeedStore{
		feeds: make(map[string]*app.Feed),
	}
}

func (s *FeedStore) Subscribe(testID string) (<-chan domain.ResultFeed, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[testID]
	if !ok {
		feed = app.NewFeed(testID)
		s.feeds[testID] = feed
	}
	ch, unsubscribe := feed.Subscribe()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsubscribe()
		if s.feeds[testID] == feed && feed.IsIdle() {
			delete(s.feeds, testID)
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
