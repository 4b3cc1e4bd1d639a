package main

import (
	"errors"
	"flag"
	"log"

	"crimson-db/internal/config"
	"crimson-db/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	databaseURL := cfg.DatabaseURL
	if cfg.DBSchema != "" {
		if err := ensureSchema(cfg); err != nil {
			log.Fatalf("prepare schema %q: %v", cfg.DBSchema, err)
		}
		if databaseURL, err = db.SearchPathDSN(databaseURL, cfg.DBSchema); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
	}

	m, err := migrate.New("file://"+*dir, databaseURL)
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("database migration failed: %v", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("read migration version: %v", err)
	}
	log.Printf("database migrations applied (version %d, dirty %t)", version, dirty)
}

func ensureSchema(cfg config.Config) error {
	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}
	return db.EnsureSchema(conn, cfg.DBSchema)
}
