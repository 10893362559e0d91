package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"fitnessbooking/internal/repository"
)

func Connect(dsn string) (*gorm.DB, error) {
	return open(dsn, &gorm.Config{})
}

// ConnectQuiet opens the database with SQL logging disabled. Used by tests
// and one-shot commands.
func ConnectQuiet(dsn string) (*gorm.DB, error) {
	return open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if isPostgres(dsn) {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        sqliteDSN(dsn),
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases from splitting across the pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(repository.Models()...)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
