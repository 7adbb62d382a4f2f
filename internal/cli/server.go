package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lms-grading-service/internal/app"
	"lms-grading-service/internal/config"
	"lms-grading-service/internal/domain"
	"lms-grading-service/internal/infra/memory"
	"lms-grading-service/internal/infra/postgres"
	infraredis "lms-grading-service/internal/infra/redis"
	transport "lms-grading-service/internal/transport/http"
)

// testSource loads tests and accepts committed question imports.
type testSource interface {
	memory.TestLoader
	app.QuestionWriter
}

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the grading server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var source testSource
	var attemptStore app.AttemptRepository
	if cfg.Postgres.URL != "" {
		if err := Migrate(ctx, cfg.Postgres.URL); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = postgres.NewTestLoader(pool)
		attemptStore = postgres.NewAttemptStore(pool)
	} else {
		tests := sampleTests()
		if cfg.Tests.SeedFile != "" {
			if tests, err = readTestsFile(cfg.Tests.SeedFile); err != nil {
				return err
			}
		}
		log.Printf("[start] postgres not configured, serving %d tests from memory", len(tests))
		source = memory.NewStaticTestLoader(tests)
		attemptStore = memory.NewAttemptStore()
	}

	cacheTTL := config.TTLDuration(cfg.Tests.CacheTTL, 10*time.Minute)
	var tests app.TestRepository
	var feeds app.FeedRepository
	var sessions app.UploadSessionStore
	if redisClient != nil {
		tests = infraredis.NewTestRepository(redisClient, source, cacheTTL)
		feeds = infraredis.NewFeedStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		sessions = infraredis.NewUploadSessionStore(redisClient)
	} else {
		tests = memory.NewTestRepository(source, cacheTTL)
		feeds = memory.NewFeedStore()
		sessions = memory.NewUploadSessionStore()
	}

	attempts := app.NewAttemptService(tests, attemptStore, feeds)
	imports := app.NewImportService(sessions, source, tests, config.TTLDuration(cfg.Imports.SessionTTL, 30*time.Minute))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(attempts, imports),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Printf("[start] grading service listening on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[start] server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("[start] shutting down server...")
	case <-ctx.Done():
		log.Println("[start] context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleTests is served when neither Postgres nor a seed file is configured.
func sampleTests() map[string]domain.Test {
	return map[string]domain.Test{
		"test-1": {
			ID:                "test-1",
			Title:             "Arithmetic basics",
			PassingPercentage: 60,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Type:   domain.SingleChoice,
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{Text: "3"},
						{Text: "4", Correct: true},
						{Text: "5"},
					},
					Marks: 1,
					Topic: "addition",
				},
				{
					ID:     "q2",
					Type:   domain.MultipleChoice,
					Prompt: "Which numbers are even?",
					Options: []domain.Option{
						{Text: "2", Correct: true},
						{Text: "3"},
						{Text: "4", Correct: true},
					},
					Marks: 2,
					Topic: "parity",
				},
				{
					ID:     "q3",
					Type:   domain.TrueFalse,
					Prompt: "Zero is a natural number in ISO 80000-2.",
					Options: []domain.Option{
						{Text: "True", Correct: true},
						{Text: "False"},
					},
					Marks: 1,
					Topic: "definitions",
				},
			},
		},
	}
}
