package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"lms-grading-service/internal/domain"
	"lms-grading-service/internal/infra/memory"
)

func TestTestRepositoryCachesInRedis(t *testing.T) {
	mr := startMiniredis(t)
	client := newClient(mr)

	loader := &countingLoader{
		TestLoader: memory.NewStaticTestLoader(map[string]domain.Test{
			"test-1": sampleTest(),
		}),
	}
	repo := NewTestRepository(client, loader, time.Minute)

	test, err := repo.GetTest(context.Background(), "test-1")
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("test:test-1") {
		t.Fatalf("expected test cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetTest(context.Background(), "test-1")
	if err != nil {
		t.Fatalf("get cached test: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Questions) != len(test.Questions) || !cached.Questions[0].Options[1].Correct {
		t.Fatalf("cached test lost question data: %+v", cached)
	}
}

func TestTestRepositoryInvalidateDropsKey(t *testing.T) {
	mr := startMiniredis(t)
	client := newClient(mr)
	loader := &countingLoader{TestLoader: memory.NewStaticTestLoader(map[string]domain.Test{"test-1": sampleTest()})}
	repo := NewTestRepository(client, loader, time.Minute)

	_, _ = repo.GetTest(context.Background(), "test-1")
	if err := repo.Invalidate(context.Background(), "test-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("test:test-1") {
		t.Fatalf("expected cache key removed")
	}
	_, _ = repo.GetTest(context.Background(), "test-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestTestRepositoryPropagatesLoaderError(t *testing.T) {
	mr := startMiniredis(t)
	repo := NewTestRepository(newClient(mr), memory.NewStaticTestLoader(nil), time.Minute)

	_, err := repo.GetTest(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestFeedStoreSetsAndClearsKeys(t *testing.T) {
	mr := startMiniredis(t)
	store := NewFeedStore(newClient(mr), time.Minute)

	_, cancel := store.Subscribe("test-1")
	if !mr.Exists("results:feed:test-1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, ok := store.Get("test-1"); !ok {
		t.Fatalf("expected feed present")
	}

	cancel()
	if _, ok := store.Get("test-1"); ok {
		t.Fatalf("expected feed removed when idle")
	}
	if mr.Exists("results:feed:test-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestUploadSessionStoreRoundTrip(t *testing.T) {
	mr := startMiniredis(t)
	store := NewUploadSessionStore(newClient(mr))
	ctx := context.Background()

	session := domain.ImportSession{ID: "s1", TestID: "test-1", Questions: sampleTest().Questions}
	if err := store.Put(ctx, session, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ttl := mr.TTL("import:session:s1"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TestID != "test-1" || len(got.Questions) != 1 {
		t.Fatalf("unexpected session %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrImportSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestUploadSessionStoreExpire(t *testing.T) {
	mr := startMiniredis(t)
	store := NewUploadSessionStore(newClient(mr))
	ctx := context.Background()

	_ = store.Put(ctx, domain.ImportSession{ID: "s1"}, 0)
	if err := store.Expire(ctx, "s1"); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if mr.Exists("import:session:s1") {
		t.Fatalf("expected key removed")
	}
}

type countingLoader struct {
	memory.TestLoader
	calls int
}

func (l *countingLoader) LoadTest(ctx context.Context, testID string) (domain.Test, error) {
	l.calls++
	return l.TestLoader.LoadTest(ctx, testID)
}

func sampleTest() domain.Test {
	return domain.Test{
		ID:                "test-1",
		PassingPercentage: 50,
		Questions: []domain.Question{
			{
				ID:     "q1",
				Type:   domain.SingleChoice,
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{Text: "3", Correct: false},
					{Text: "4", Correct: true},
				},
				Marks: 1,
			},
		},
	}
}

func startMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
