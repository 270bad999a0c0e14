// Package migrations holds the schema history for the SQL backends.
// Table structs are snapshots and must not follow later model changes.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
