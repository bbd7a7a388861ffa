package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamerlog/domain"
)

// DB wraps the gorm connection handle.
type DB struct {
	Gorm *gorm.DB

	DSN string
}

// NewDB returns a DB configured with the given connection string.
func NewDB(dsn string) *DB {
	return &DB{
		DSN: dsn,
	}
}

// Open establishes the gorm postgres connection. In production the query log
// stays quiet, in development every statement gets logged.
func Open(db *DB, prod bool) (err error) {
	if db.DSN == "" {
		return fmt.Errorf("dsn required")
	}
	logMode := logger.Info
	if prod {
		logMode = logger.Warn
	}
	db.Gorm, err = gorm.Open(postgres.Open(db.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return fmt.Errorf("err opening gorm postgres connection: %w", err)
	}
	return nil
}

// AutoMigrate brings the schema up to date with the domain models.
func AutoMigrate(db *DB) error {
	err := db.Gorm.AutoMigrate(
		&domain.User{},
		&domain.Blog{},
		&domain.Like{},
		&domain.Message{},
	)
	if err != nil {
		return fmt.Errorf("err migrating: %w", err)
	}
	return nil
}

// Close shuts down the underlying sql connection pool.
func Close(db *DB) error {
	if db.Gorm == nil {
		return nil
	}
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
