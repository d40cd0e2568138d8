// Package main applies the LifeGuard SQL migrations with goose.
//
// Usage:
//
//	migrate [up|down|status]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/evansachie/lifeguard/internal/config"
	"github.com/evansachie/lifeguard/internal/repository"
)

func main() {
	_ = config.LoadDotEnv()

	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		dir         = flag.String("dir", envOr("MIGRATIONS_DIR", "migrations"), "Directory holding the goose migrations")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	var err error
	switch command {
	case "up":
		err = repository.Migrate(*databaseURL, *dir)
	case "down":
		err = repository.MigrateDown(*databaseURL, *dir)
	case "status":
		err = repository.MigrationStatus(*databaseURL, *dir)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q; use up, down or status\n", command)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
