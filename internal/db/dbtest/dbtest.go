// Package dbtest opens throwaway SQLite databases with the service schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yla-umzug/quotes-service/internal/db"
	"github.com/yla-umzug/quotes-service/internal/model"
)

var models = []any{
	&model.Setting{},
	&model.Service{},
	&model.PricingRule{},
	&model.SequenceCounter{},
	&model.QuoteRequest{},
	&model.Notification{},
}

// Open returns an isolated in-memory database. Seeded databases carry the
// default settings and service catalog.
func Open(t testing.TB, seed bool) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(models...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if seed {
		if err := db.Seed(database); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return database
}
