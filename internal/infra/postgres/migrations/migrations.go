package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change; each numbered file registers one.
var Migrations = migrate.NewMigrations()
