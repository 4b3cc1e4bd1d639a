package db

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"crimson-db/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. Postgres is the production
// driver; sqlite is accepted for local development and tests.
func Open(cfg config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres", "postgresql":
		if cfg.DBSchema != "" {
			var err error
			if dsn, err = SearchPathDSN(dsn, cfg.DBSchema); err != nil {
				return nil, err
			}
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// a single long-lived connection keeps ":memory:" databases alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return conn, nil
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)
	return conn, nil
}

// SearchPathDSN points dsn at schema through the search_path run-time
// parameter, so unqualified table names resolve inside it. Both URL and
// keyword/value DSNs are accepted.
func SearchPathDSN(dsn, schema string) (string, error) {
	if !schemaPattern.MatchString(schema) {
		return "", fmt.Errorf("invalid DB_SCHEMA %q", schema)
	}
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return strings.TrimSpace(dsn) + " search_path=" + schema, nil
}

// EnsureSchema creates schema on postgres when it does not exist yet.
func EnsureSchema(conn *gorm.DB, schema string) error {
	if schema == "" || conn.Dialector.Name() != "postgres" {
		return nil
	}
	if !schemaPattern.MatchString(schema) {
		return fmt.Errorf("invalid DB_SCHEMA %q", schema)
	}
	return conn.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

var schemaPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sqliteDSN turns on foreign key enforcement for every connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// OpenMemory opens a private in-memory sqlite database with every table migrated.
func OpenMemory() (*gorm.DB, error) {
	cfg := config.Default()
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = ":memory:"
	conn, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate runs GORM auto-migrations for the core tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	return conn.AutoMigrate(Models()...)
}
