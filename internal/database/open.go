package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/config"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	dialector, err := dialectorFor(cfg.DatabaseURL)
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "open", "error")
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	observability.RecordDatabaseStartupDuration(context.Background(), "open", time.Since(start))
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "open", "error")
		return nil, fmt.Errorf("open database: %w", err)
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "open", "success")
	return db, nil
}

// dialectorFor selects postgres for postgres URLs and sqlite for file DSNs.
func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "file:"):
		return sqlite.Open(url), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme")
	}
}
