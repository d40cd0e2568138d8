package repository

import (
	"database/sql"
	"fmt"

	// Registers the "postgres" driver used by goose.
	_ "github.com/lib/pq"
	"github.com/pressly/goose"
)

// Migrate applies every pending goose migration in dir.
func Migrate(databaseURL, dir string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back every applied migration in dir.
func MigrateDown(databaseURL, dir string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	for {
		version, err := goose.GetDBVersion(db)
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		if version == 0 {
			return nil
		}
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("failed to roll back migration %d: %w", version, err)
		}
	}
}

// MigrationStatus prints the state of every migration in dir to stdout.
func MigrationStatus(databaseURL, dir string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.Status(db, dir)
}
