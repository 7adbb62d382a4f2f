package app

import (
	"sync"
	"time"

	"lms-grading-service/internal/domain"
)

// recentSubmissions bounds how many summaries a feed snapshot carries.
const recentSubmissions = 20

// FeedRepository abstracts how result feeds are stored (in-memory, Redis, etc).
type FeedRepository interface {
	// Subscribe attaches to the test's feed, creating it if needed. The
	// returned cancel detaches and drops the feed once nobody watches it.
	// Both happen under the repository's lock so Get never misses a live
	// subscriber.
	Subscribe(testID string) (<-chan domain.ResultFeed, func())
	Get(testID string) (*Feed, bool)
}

// NewFeed is exported for infrastructure layers that need to seed feeds.
func NewFeed(testID string) *Feed {
	return newFeedWithClock(testID, time.Now)
}

// NewFeedWithClock is test-only for deterministic timestamps.
func NewFeedWithClock(testID string, now func() time.Time) *Feed {
	return newFeedWithClock(testID, now)
}

// Feed is the in-memory live view of submissions for one test.
type Feed struct {
	testID      string
	now         func() time.Time
	mu          sync.RWMutex
	submissions int
	passed      int
	pctSum      float64
	recent      []domain.SubmissionSummary
	subscribers map[chan domain.ResultFeed]struct{}
}

func newFeedWithClock(testID string, now func() time.Time) *Feed {
	return &Feed{
		testID:      testID,
		now:         now,
		subscribers: make(map[chan domain.ResultFeed]struct{}),
	}
}

func (f *Feed) record(summary domain.SubmissionSummary) domain.ResultFeed {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submissions++
	f.pctSum += summary.Percentage
	if summary.Passed {
		f.passed++
	}
	// newest first
	f.recent = append([]domain.SubmissionSummary{summary}, f.recent...)
	if len(f.recent) > recentSubmissions {
		f.recent = f.recent[:recentSubmissions]
	}
	return f.broadcastLocked()
}

// IsIdle reports whether nobody is watching the feed.
func (f *Feed) IsIdle() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers) == 0
}

// Snapshot returns the current feed state.
func (f *Feed) Snapshot() domain.ResultFeed {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

// Subscribe registers a listener that first receives the current snapshot.
// The cancel func is idempotent and closes the channel.
func (f *Feed) Subscribe() (<-chan domain.ResultFeed, func()) {
	ch := make(chan domain.ResultFeed, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	initial := f.snapshotLocked()
	f.mu.Unlock()

	ch <- initial

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) broadcastLocked() domain.ResultFeed {
	snap := f.snapshotLocked()
	for ch := range f.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow subscriber: replace its oldest pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (f *Feed) snapshotLocked() domain.ResultFeed {
	recent := make([]domain.SubmissionSummary, len(f.recent))
	copy(recent, f.recent)

	var avg float64
	if f.submissions > 0 {
		avg = f.pctSum / float64(f.submissions)
	}
	return domain.ResultFeed{
		TestID:            f.testID,
		Submissions:       f.submissions,
		Passed:            f.passed,
		AveragePercentage: avg,
		Recent:            recent,
		UpdatedAt:         f.now(),
	}
}
