package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewSQLite opens a file backed (or ":memory:") sqlite database.
// sqlite allows a single writer, so the pool is pinned to one connection.
func NewSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
