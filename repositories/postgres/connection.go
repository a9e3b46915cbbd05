package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/config"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Pipeline records: one append-only row per event traversal
		CREATE TABLE IF NOT EXISTS sentinel_events (
			id UUID PRIMARY KEY,
			fingerprint VARCHAR(64) NOT NULL,
			source VARCHAR(50) NOT NULL,
			disaster_type VARCHAR(100) NOT NULL,
			bucket VARCHAR(20) NOT NULL,
			description TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			severity VARCHAR(50),
			processed BOOLEAN NOT NULL DEFAULT FALSE,
			outcome VARCHAR(30) NOT NULL,
			recipient_id VARCHAR(100),
			recipient_name VARCHAR(255),
			recipient_address VARCHAR(42),
			payout_tx VARCHAR(120),
			payout_amount VARCHAR(30),
			ai_confidence INTEGER,
			ai_reasoning TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			payout_at TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_sentinel_events_fingerprint ON sentinel_events(fingerprint);
		CREATE INDEX IF NOT EXISTS idx_sentinel_events_created_at ON sentinel_events(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_sentinel_events_bucket ON sentinel_events(bucket);

		-- Operator log stream
		CREATE TABLE IF NOT EXISTS sentinel_logs (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			text TEXT NOT NULL,
			status VARCHAR(10) NOT NULL,
			source VARCHAR(50)
		);

		CREATE INDEX IF NOT EXISTS idx_sentinel_logs_timestamp ON sentinel_logs(timestamp DESC);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized")
	return nil
}
