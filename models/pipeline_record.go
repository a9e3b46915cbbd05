package models

import (
	"time"

	"github.com/google/uuid"
)

// PipelineOutcome is the terminal status of one event's pipeline run.
type PipelineOutcome string

const (
	// OutcomeCompleted means the run reached RECORDED, possibly without a
	// disbursement when authorization was NO.
	OutcomeCompleted PipelineOutcome = "completed"

	// OutcomeSkippedDuplicate means the event fingerprint was already
	// recorded; no authorization or disbursement was attempted.
	OutcomeSkippedDuplicate PipelineOutcome = "skipped_duplicate"

	// OutcomeFailedNoNGO means payout was authorized but no verified
	// recipient supports the disaster type.
	OutcomeFailedNoNGO PipelineOutcome = "failed_no_ngo"

	// OutcomeFailedValidation means the chosen recipient failed address
	// validation immediately before disbursement.
	OutcomeFailedValidation PipelineOutcome = "failed_validation"

	// OutcomeFailedTransaction means the disbursement sink reported failure.
	OutcomeFailedTransaction PipelineOutcome = "failed_transaction"

	// OutcomeFailed means an unexpected error occurred while recording the
	// completed disbursement.
	OutcomeFailed PipelineOutcome = "failed"
)

// PipelineRecord is the persisted, append-only audit record of one event's
// traversal of the payout pipeline. Records are never mutated after insert.
type PipelineRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	Source      string    `json:"source" db:"source"`

	DisasterType string  `json:"disaster_type" db:"disaster_type"`
	Bucket       string  `json:"bucket" db:"bucket"`
	Description  string  `json:"description" db:"description"`
	Lat          float64 `json:"lat" db:"lat"`
	Lon          float64 `json:"lon" db:"lon"`
	Severity     string  `json:"severity,omitempty" db:"severity"`

	Processed bool            `json:"processed" db:"processed"`
	Outcome   PipelineOutcome `json:"outcome" db:"outcome"`

	RecipientID      *string `json:"ngo_id,omitempty" db:"recipient_id"`
	RecipientName    *string `json:"ngo_name,omitempty" db:"recipient_name"`
	RecipientAddress *string `json:"ngo_address,omitempty" db:"recipient_address"`

	PayoutTx     *string `json:"payout_tx,omitempty" db:"payout_tx"`
	PayoutAmount *string `json:"payout_amount,omitempty" db:"payout_amount"`

	AIConfidence *int    `json:"ai_confidence,omitempty" db:"ai_confidence"`
	AIReasoning  *string `json:"ai_reasoning,omitempty" db:"ai_reasoning"`

	CreatedAt time.Time  `json:"timestamp" db:"created_at"`
	PayoutAt  *time.Time `json:"payout_timestamp,omitempty" db:"payout_at"`
}

// NewPipelineRecord creates a record for an event entering the pipeline.
func NewPipelineRecord(event SourceEvent, fingerprint, bucket string) *PipelineRecord {
	return &PipelineRecord{
		ID:           uuid.New(),
		Fingerprint:  fingerprint,
		Source:       event.Source,
		DisasterType: event.DisasterType,
		Bucket:       bucket,
		Description:  event.Description,
		Lat:          event.Lat,
		Lon:          event.Lon,
		Severity:     event.Severity,
		CreatedAt:    time.Now().UTC(),
	}
}

// WithDecision attaches the oracle decision to the record.
func (r *PipelineRecord) WithDecision(d *Decision) *PipelineRecord {
	confidence := d.Confidence
	reasoning := d.Reasoning
	r.AIConfidence = &confidence
	r.AIReasoning = &reasoning
	return r
}

// WithRecipient attaches the selected recipient identity.
func (r *PipelineRecord) WithRecipient(rec *Recipient) *PipelineRecord {
	id, name, addr := rec.ID, rec.Name, rec.Address
	r.RecipientID = &id
	r.RecipientName = &name
	r.RecipientAddress = &addr
	return r
}

// WithPayout attaches the disbursement reference and timestamp.
func (r *PipelineRecord) WithPayout(txID, amount string) *PipelineRecord {
	now := time.Now().UTC()
	r.PayoutTx = &txID
	r.PayoutAmount = &amount
	r.PayoutAt = &now
	return r
}

// Finish marks the record with its terminal outcome.
func (r *PipelineRecord) Finish(outcome PipelineOutcome) *PipelineRecord {
	r.Outcome = outcome
	r.Processed = outcome == OutcomeCompleted
	return r
}
