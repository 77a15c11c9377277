package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"postboard/internal/config"
	"postboard/internal/database/migrations"
)

type MethodsDB interface {
	CloseDB() error
	RunMigrations() error
	HealthCheck(ctx context.Context) error
}

type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// ConnectDB opens the pool, verifies it and returns an owned handle the
// caller must close.
func ConnectDB(cfg config.DB, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("connecting to database", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	dbStruct := &DB{DB: db, logger: logger}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbStruct.HealthCheck(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}

	logger.Info("connected to postgres")
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	if db == nil || db.DB == nil {
		return nil
	}
	db.logger.Info("closing database pool")
	return db.DB.Close()
}

func (db *DB) RunMigrations() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if err := migrations.Up(db.DB.DB); err != nil {
		return err
	}

	version, dirty, err := migrations.Version(db.DB.DB)
	if err != nil {
		return err
	}
	db.logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return db.PingContext(ctx)
}

var _ MethodsDB = (*DB)(nil)
