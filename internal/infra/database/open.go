package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/totegamma/tagnote/internal/config"
)

// Open connects to the database selected by the configuration and sizes the pool.
func Open(conf config.Database) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch conf.Driver {
	case "", config.DriverPostgres:
		db, err = NewPostgres(conf.Dsn)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if conf.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
		}
		if conf.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	case config.DriverSQLite:
		db, err = NewSQLite(conf.Dsn)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}

	return db, nil
}
