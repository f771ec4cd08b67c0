package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var databaseURL string
	var migrationsPath string
	var command string

	flag.StringVar(&databaseURL, "database", "", "Receipt journal database URL (or PARKFEE_JOURNAL_DSN)")
	flag.StringVar(&migrationsPath, "path", "migrations", "Path to migrations directory")
	flag.StringVar(&command, "command", "up", "Migration command: up, down, version")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("PARKFEE_JOURNAL_DSN")
	}
	if databaseURL == "" {
		log.Fatal("database URL is required: use -database or PARKFEE_JOURNAL_DSN")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		log.Fatalf("create migration instance: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		err := m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("run migrations: %v", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("journal schema already up to date")
		} else {
			log.Println("journal schema migrated")
		}

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("rollback migrations: %v", err)
		}
		log.Println("journal schema rolled back")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("read schema version: %v", err)
		}
		log.Printf("schema version %d (dirty: %v)", version, dirty)

	default:
		log.Fatalf("unknown command %q (use: up, down, version)", command)
	}
}
