package database

import (
	"database/sql"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"libris/internal/entities"
)

// Database owns the physical sqlite connection and the schema lifecycle.
// Construct one per database path and share it between repositories.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (creating if absent) the sqlite database at dbPath and
// idempotently ensures the users/authors/books tables exist.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Book{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// SQLDB exposes the underlying *sql.DB, used by the HTTP session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

// Close releases the connection. Safe to call during shutdown; callers log
// the returned error instead of treating it as fatal.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
