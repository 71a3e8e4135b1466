package db

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Open connects to Postgres and applies pool limits.
func Open(dsn string, pool PoolConfig) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}
	return conn, nil
}

// Migrate runs GORM auto-migrations for the content tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(&WordCard{}, &Theme{}); err != nil {
		return err
	}
	log.Info().Msg("database migration complete")
	return nil
}
