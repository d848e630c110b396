package common

import (
	"github.com/bookshelf-labs/bookshelf-api/internal/config"
	"github.com/bookshelf-labs/bookshelf-api/internal/database"

	"gorm.io/gorm"
)

// LoadConfigDB loads the env file, the runtime config and opens the configured database.
// Callers own closing the returned connection pool.
func LoadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
