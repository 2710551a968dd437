package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered schema history applied by the migrate command and on start.
var Migrations = migrate.NewMigrations()
