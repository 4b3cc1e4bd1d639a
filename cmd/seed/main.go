package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"crimson-db/internal/config"
	"crimson-db/internal/db"
)

func main() {
	games := flag.String("games", "", "CSV file of games to load")
	roles := flag.String("roles", "", "comma separated contributor roles (default: the built-in set)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stderr)

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	var names []string
	if *roles != "" {
		names = strings.Split(*roles, ",")
	}
	if err := db.EnsureRoles(conn, names...); err != nil {
		logger.Error("seed roles failed", "error", err)
		os.Exit(1)
	}
	logger.Info("roles seeded")

	if *games == "" {
		return
	}
	inserted, err := db.LoadGames(conn, *games)
	if err != nil {
		logger.Error("load games failed", "path", *games, "error", err)
		os.Exit(1)
	}
	logger.Info("games loaded", "path", *games, "inserted", inserted)
}
