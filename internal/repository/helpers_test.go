package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"fitnessbooking/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func seedClass(t *testing.T, repo *ClassRepository, name string, start time.Time, slots int) *domain.FitnessClass {
	t.Helper()
	c := &domain.FitnessClass{
		Name:           name,
		Instructor:     "Priya Sharma",
		StartTime:      start,
		TotalSlots:     slots,
		RemainingSlots: slots,
	}
	if err := repo.Create(t.Context(), c); err != nil {
		t.Fatalf("failed to create class: %v", err)
	}
	return c
}
