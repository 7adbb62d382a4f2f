package cli

import (
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"lms-grading-service/internal/config"
	"lms-grading-service/internal/infra/postgres"
)

// NewSeedCmd upserts tests from a JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load tests from a JSON file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errNoPostgres
			}
			if file == "" {
				file = cfg.Tests.SeedFile
			}
			tests, err := readTestsFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := Migrate(ctx, cfg.Postgres.URL); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := postgres.NewTestLoader(pool)
			for _, t := range tests {
				if err := loader.SaveTest(ctx, t); err != nil {
					return err
				}
			}
			log.Printf("[seed] saved %d tests from %s", len(tests), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON array of tests (defaults to tests.seed_file)")
	return cmd
}
