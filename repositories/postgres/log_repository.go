package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/repositories"
	"github.com/kushwahaamar-dev/sentinel/services"
)

// LogRepository implements the repositories.LogRepository interface
type LogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLogRepository creates a new operator log repository
func NewLogRepository(db *DB, logger *zap.Logger) repositories.LogRepository {
	return &LogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new log entry
// This method supports async insert patterns by being non-blocking
func (r *LogRepository) Insert(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO sentinel_logs (id, timestamp, text, status, source)
		VALUES ($1, $2, $3, $4, $5)
	`

	var source sql.NullString
	if entry.Source != "" {
		source = sql.NullString{String: entry.Source, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.Text,
		entry.Status,
		source,
	)

	if err != nil {
		return services.WrapInternal("failed to insert log entry", err)
	}

	return nil
}

// GetRecent returns the most recent log entries, newest first
func (r *LogRepository) GetRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	query := `
		SELECT id, timestamp, text, status, source
		FROM sentinel_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, services.WrapInternal("failed to query log entries", err)
	}
	defer rows.Close()

	entries := make([]*models.LogEntry, 0, limit)
	for rows.Next() {
		entry := &models.LogEntry{}
		var source sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Text, &entry.Status, &source); err != nil {
			return nil, services.WrapInternal("failed to scan log entry", err)
		}
		entry.Source = source.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate log entries", err)
	}

	return entries, nil
}
