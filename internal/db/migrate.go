package db

import (
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the sqlite3 driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// runSQLMigrations executes migrations in ./migrations using golang-migrate
// file source. Versions are recorded in schema_migrations, so each file
// applies exactly once per database file.
func runSQLMigrations(dbPath string) error {
	m, err := migrate.New("file://migrations", "sqlite3://"+dbPath)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
