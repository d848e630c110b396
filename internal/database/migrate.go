package database

import (
	"context"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"

	"gorm.io/gorm"
)

// Models lists every table managed by Migrate, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Author{},
		&domain.Book{},
	}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(Models()...)
	observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

// PendingTables reports managed tables that do not exist yet.
func PendingTables(db *gorm.DB) []string {
	var pending []string
	for _, m := range Models() {
		if db.Migrator().HasTable(m) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			continue
		}
		pending = append(pending, stmt.Schema.Table)
	}
	return pending
}
