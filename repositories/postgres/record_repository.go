package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/repositories"
	"github.com/kushwahaamar-dev/sentinel/services"
)

// RecordRepository implements the repositories.RecordRepository interface
type RecordRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRecordRepository creates a new pipeline record repository
func NewRecordRepository(db *DB, logger *zap.Logger) repositories.RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new pipeline record
func (r *RecordRepository) Insert(ctx context.Context, record *models.PipelineRecord) error {
	query := `
		INSERT INTO sentinel_events (
			id, fingerprint, source, disaster_type, bucket, description,
			lat, lon, severity, processed, outcome,
			recipient_id, recipient_name, recipient_address,
			payout_tx, payout_amount, ai_confidence, ai_reasoning,
			created_at, payout_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Fingerprint,
		record.Source,
		record.DisasterType,
		record.Bucket,
		record.Description,
		record.Lat,
		record.Lon,
		record.Severity,
		record.Processed,
		record.Outcome,
		record.RecipientID,
		record.RecipientName,
		record.RecipientAddress,
		record.PayoutTx,
		record.PayoutAmount,
		record.AIConfidence,
		record.AIReasoning,
		record.CreatedAt,
		record.PayoutAt,
	)

	if err != nil {
		return services.ErrDatabaseError.WithDetail("operation", "insert record").WithDetail("error", err.Error())
	}

	r.logger.Debug("pipeline record inserted",
		zap.String("id", record.ID.String()),
		zap.String("fingerprint", record.Fingerprint),
		zap.String("outcome", string(record.Outcome)))
	return nil
}

// GetByID retrieves a record by ID
func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRecord, error) {
	query := selectColumns + ` WHERE id = $1`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrRecordNotFound.WithDetail("id", id.String())
		}
		return nil, services.WrapInternal(fmt.Sprintf("failed to get record %s", id), err)
	}

	return record, nil
}

// ExistsByFingerprint reports whether any record carries the fingerprint
func (r *RecordRepository) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sentinel_events WHERE fingerprint = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fingerprint).Scan(&exists); err != nil {
		return false, services.WrapInternal("failed to check fingerprint", err)
	}

	return exists, nil
}

// GetRecent returns the most recent records, newest first
func (r *RecordRepository) GetRecent(ctx context.Context, limit int) ([]*models.PipelineRecord, error) {
	query := selectColumns + ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, services.WrapInternal("failed to query recent records", err)
	}
	defer rows.Close()

	records := make([]*models.PipelineRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, services.WrapInternal("failed to scan record", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate records", err)
	}

	return records, nil
}

// TotalPaidOut returns the sum of completed payout amounts in whole USDC
func (r *RecordRepository) TotalPaidOut(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(CAST(payout_amount AS NUMERIC)), 0)
		FROM sentinel_events
		WHERE payout_tx IS NOT NULL
	`

	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, services.WrapInternal("failed to sum payouts", err)
	}

	return total, nil
}

// CountPayouts returns the number of records with a recorded disbursement
func (r *RecordRepository) CountPayouts(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM sentinel_events WHERE payout_tx IS NOT NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, services.WrapInternal("failed to count payouts", err)
	}

	return count, nil
}

// CountByBucket returns record counts grouped by bucket
func (r *RecordRepository) CountByBucket(ctx context.Context) (map[string]int, error) {
	return r.countGrouped(ctx, `SELECT bucket, COUNT(*) FROM sentinel_events GROUP BY bucket`)
}

// CountByOutcome returns record counts grouped by outcome
func (r *RecordRepository) CountByOutcome(ctx context.Context) (map[string]int, error) {
	return r.countGrouped(ctx, `SELECT outcome, COUNT(*) FROM sentinel_events GROUP BY outcome`)
}

func (r *RecordRepository) countGrouped(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, services.WrapInternal("failed to count records", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, services.WrapInternal("failed to scan count", err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate counts", err)
	}

	return counts, nil
}

const selectColumns = `
	SELECT id, fingerprint, source, disaster_type, bucket, description,
	       lat, lon, severity, processed, outcome,
	       recipient_id, recipient_name, recipient_address,
	       payout_tx, payout_amount, ai_confidence, ai_reasoning,
	       created_at, payout_at
	FROM sentinel_events`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.PipelineRecord, error) {
	record := &models.PipelineRecord{}
	var severity sql.NullString

	err := row.Scan(
		&record.ID,
		&record.Fingerprint,
		&record.Source,
		&record.DisasterType,
		&record.Bucket,
		&record.Description,
		&record.Lat,
		&record.Lon,
		&severity,
		&record.Processed,
		&record.Outcome,
		&record.RecipientID,
		&record.RecipientName,
		&record.RecipientAddress,
		&record.PayoutTx,
		&record.PayoutAmount,
		&record.AIConfidence,
		&record.AIReasoning,
		&record.CreatedAt,
		&record.PayoutAt,
	)
	if err != nil {
		return nil, err
	}

	record.Severity = severity.String
	return record, nil
}
