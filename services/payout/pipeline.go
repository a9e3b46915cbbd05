package payout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/repositories"
	"github.com/kushwahaamar-dev/sentinel/services"
	"github.com/kushwahaamar-dev/sentinel/services/audit"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
	"github.com/kushwahaamar-dev/sentinel/services/oracle"
	"github.com/kushwahaamar-dev/sentinel/services/recipients"
	"github.com/kushwahaamar-dev/sentinel/services/sink"
)

// DecisionOracle produces the coerced decision for an event.
type DecisionOracle interface {
	Decide(ctx context.Context, mode models.Mode, event models.SourceEvent, bucket normalize.Bucket) *models.Decision
}

// compile-time check that the gateway satisfies the pipeline's view of it
var _ DecisionOracle = (*oracle.Gateway)(nil)

// Result summarizes one event's traversal of the pipeline.
type Result struct {
	Event       models.SourceEvent      `json:"event"`
	Fingerprint string                  `json:"fingerprint"`
	Bucket      normalize.Bucket        `json:"bucket"`
	Decision    *models.Decision        `json:"ai_decision,omitempty"`
	Record      *models.PipelineRecord  `json:"record,omitempty"`
	Outcome     models.PipelineOutcome  `json:"outcome"`
}

// Pipeline runs one event from fingerprinting to the recorded outcome.
// Gates run in a fixed order: duplicate check, decision, recipient
// selection, address validation, disbursement, record. Funds move only
// after every prior gate passed; a failed disbursement is never retried
// here, the failure is recorded and the event can only re-enter with a
// new fingerprint.
type Pipeline struct {
	records  repositories.RecordRepository
	registry *recipients.Registry
	oracle   DecisionOracle
	sink     sink.DisbursementSink
	audit    *audit.Service
	logger   *zap.Logger
}

// NewPipeline creates a new payout pipeline
func NewPipeline(
	records repositories.RecordRepository,
	registry *recipients.Registry,
	decisionOracle DecisionOracle,
	disbursementSink sink.DisbursementSink,
	auditService *audit.Service,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		records:  records,
		registry: registry,
		oracle:   decisionOracle,
		sink:     disbursementSink,
		audit:    auditService,
		logger:   logger,
	}
}

// Process runs the full pipeline for one event.
func (p *Pipeline) Process(ctx context.Context, mode models.Mode, event models.SourceEvent) (*Result, error) {
	fingerprint := normalize.Fingerprint(event)
	bucket := normalize.BucketOf(event.DisasterType)

	result := &Result{
		Event:       event,
		Fingerprint: fingerprint,
		Bucket:      bucket,
	}

	p.logger.Info("processing event",
		zap.String("fingerprint", fingerprint),
		zap.String("bucket", string(bucket)),
		zap.String("description", event.Description))

	// Step 1: duplicate gate. Fail closed on a repository error; a
	// payout must never ride on an unverifiable duplicate check.
	exists, err := p.records.ExistsByFingerprint(ctx, fingerprint)
	if err != nil {
		p.audit.EmitFail("PIPELINE HALTED: Duplicate check unavailable")
		return nil, services.WrapInternal("duplicate check failed", err)
	}
	if exists {
		p.logger.Info("skipping duplicate event", zap.String("fingerprint", fingerprint))
		p.audit.EmitWarn(fmt.Sprintf("SKIPPED: Duplicate event %s", fingerprint))
		result.Outcome = models.OutcomeSkippedDuplicate
		return result, nil
	}

	// Step 2: decision. The gateway never fails; worst case it falls
	// back to the rule engine.
	p.audit.Emit(fmt.Sprintf("ANALYZING: %s...", event.Description), models.LogWarn, event.Source)

	decision := p.oracle.Decide(ctx, mode, event, bucket)
	result.Decision = decision

	decisionStatus := models.LogFail
	if decision.Authorized() {
		decisionStatus = models.LogOK
	}
	p.audit.Emit(fmt.Sprintf("AI DECISION: %s (%d%% Confidence)", decision.Verdict, decision.Confidence), decisionStatus, event.Source)

	record := models.NewPipelineRecord(event, fingerprint, string(bucket)).WithDecision(decision)
	result.Record = record

	if !decision.Authorized() {
		return p.finish(ctx, result, record, models.OutcomeCompleted)
	}

	// Step 3: recipient selection.
	recipient, err := p.registry.Select(event.DisasterType, event.Lat, event.Lon)
	if err != nil {
		p.audit.EmitFail("PAYOUT HALTED: No verified recipient for event")
		return p.finish(ctx, result, record, models.OutcomeFailedNoNGO)
	}
	record.WithRecipient(recipient)
	p.audit.EmitOK(fmt.Sprintf("RECIPIENT SELECTED: %s", recipient.Name))

	// Step 4: address validation, re-checked at the last moment.
	if err := p.registry.ValidateAddress(recipient.Address); err != nil {
		p.logger.Error("recipient address validation failed",
			zap.String("recipient", recipient.Name),
			zap.Error(err))
		p.audit.EmitFail("PAYOUT HALTED: Recipient address validation failed")
		return p.finish(ctx, result, record, models.OutcomeFailedValidation)
	}

	amountUnits, err := sink.ToUnits(decision.PayoutAmountUSDC)
	if err != nil {
		p.logger.Error("invalid payout amount",
			zap.String("amount", decision.PayoutAmountUSDC),
			zap.Error(err))
		p.audit.EmitFail("PAYOUT HALTED: Invalid payout amount")
		return p.finish(ctx, result, record, models.OutcomeFailedValidation)
	}

	// Step 5: disbursement.
	p.audit.EmitWarn("INITIATING PAYOUT TRANSACTION...")

	reason := fmt.Sprintf("%s [%s]", event.Description, fingerprint)
	txHash, err := p.sink.Disburse(ctx, recipient.Address, amountUnits, reason)
	if err != nil {
		p.logger.Error("disbursement failed",
			zap.String("recipient", recipient.Name),
			zap.Error(err))
		p.audit.EmitFail("PAYOUT FAILED: Transaction Error")
		return p.finish(ctx, result, record, models.OutcomeFailedTransaction)
	}

	decision.TxID = txHash
	record.WithPayout(txHash, decision.PayoutAmountUSDC)
	p.audit.EmitOK(fmt.Sprintf("PAYOUT COMPLETE: %s USDC", decision.PayoutAmountUSDC))

	return p.finish(ctx, result, record, models.OutcomeCompleted)
}

// finish stamps the terminal outcome and persists the record. A record
// that fails to persist after funds moved is the one error surfaced to
// the caller with the result still attached.
func (p *Pipeline) finish(ctx context.Context, result *Result, record *models.PipelineRecord, outcome models.PipelineOutcome) (*Result, error) {
	record.Finish(outcome)
	result.Outcome = outcome

	if err := p.records.Insert(ctx, record); err != nil {
		p.logger.Error("failed to persist pipeline record",
			zap.String("fingerprint", record.Fingerprint),
			zap.Error(err))
		p.audit.EmitFail("RECORDING FAILED: Event history may be incomplete")
		return result, services.WrapInternal("failed to persist pipeline record", err)
	}

	p.logger.Info("event recorded",
		zap.String("fingerprint", record.Fingerprint),
		zap.String("outcome", string(outcome)))
	return result, nil
}
