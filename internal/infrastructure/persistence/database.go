package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/transitpay/settlement/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the PostgreSQL pool behind every settlement repository.
type Database struct {
	DB *gorm.DB
}

// NewDatabase connects to PostgreSQL using cfg. A nil logger silences GORM.
func NewDatabase(cfg *config.DatabaseConfig, log gormlogger.Interface) (*Database, error) {
	return Open(postgres.Open(cfg.DSN()), PoolSettingsFrom(cfg), log)
}

// PoolSettings sizes the connection pool. Zero values keep database/sql
// defaults.
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func PoolSettingsFrom(cfg *config.DatabaseConfig) PoolSettings {
	return PoolSettings{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Minute,
		MaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Minute,
	}
}

func (p PoolSettings) apply(db *sql.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.MaxLifetime > 0 {
		db.SetConnMaxLifetime(p.MaxLifetime)
	}
	if p.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

// Open builds a Database over any GORM dialector, sizes its pool and checks
// the connection once. Timestamps are written in UTC.
func Open(dialector gorm.Dialector, pool PoolSettings, log gormlogger.Interface) (*Database, error) {
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 log,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		DisableAutomaticPing:   true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open settlement database: %w", err)
	}

	d := &Database{DB: db}
	sqlDB, err := d.sql()
	if err != nil {
		return nil, err
	}
	pool.apply(sqlDB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping settlement database: %w", err)
	}
	return d, nil
}

func (d *Database) sql() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return sqlDB, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.sql()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping backs the health endpoint.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.sql()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ConnectionStats is the pool snapshot reported by /system/info.
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.sql()
	if err != nil {
		return ConnectionStats{}, err
	}
	s := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}, nil
}
