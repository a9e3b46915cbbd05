package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/kushwahaamar-dev/sentinel/models"
)

// RecordRepository defines the interface for pipeline record persistence
type RecordRepository interface {
	// Insert stores a new pipeline record
	Insert(ctx context.Context, record *models.PipelineRecord) error

	// GetByID retrieves a record by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRecord, error)

	// ExistsByFingerprint reports whether any record carries the fingerprint
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)

	// GetRecent returns the most recent records, newest first
	GetRecent(ctx context.Context, limit int) ([]*models.PipelineRecord, error)

	// TotalPaidOut returns the sum of completed payout amounts in whole USDC
	TotalPaidOut(ctx context.Context) (float64, error)

	// CountPayouts returns the number of records with a recorded disbursement
	CountPayouts(ctx context.Context) (int, error)

	// CountByBucket returns record counts grouped by bucket
	CountByBucket(ctx context.Context) (map[string]int, error)

	// CountByOutcome returns record counts grouped by outcome
	CountByOutcome(ctx context.Context) (map[string]int, error)
}

// LogRepository defines the interface for operator log persistence
type LogRepository interface {
	// Insert stores a new log entry
	Insert(ctx context.Context, entry *models.LogEntry) error

	// GetRecent returns the most recent log entries, newest first
	GetRecent(ctx context.Context, limit int) ([]*models.LogEntry, error)
}
