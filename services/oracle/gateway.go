package oracle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
)

// Judge is a live decision backend. A judge may be slow or fail; the
// gateway enforces the time budget and substitutes the rule fallback,
// callers never see a judge error.
type Judge interface {
	// Name returns the judge name for logging
	Name() string

	// Judge produces a raw decision for the event
	Judge(ctx context.Context, event models.SourceEvent, bucket normalize.Bucket) (*models.Decision, error)
}

// Gateway produces exactly one coerced decision per event. In MOCK mode
// the decision comes from a fixed table keyed by bucket; in LIVE mode
// the judge runs under a hard deadline with the rule fallback behind it.
type Gateway struct {
	judge   Judge
	timeout time.Duration
	logger  *zap.Logger
}

// NewGateway creates a new decision gateway. judge may be nil, in which
// case LIVE decisions always use the rule fallback.
func NewGateway(judge Judge, timeout time.Duration, logger *zap.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gateway{
		judge:   judge,
		timeout: timeout,
		logger:  logger,
	}
}

// Decide returns the decision for an event. The returned decision is
// always coerced: authorization is exactly YES or NO, the verdict
// agrees with it, and a NO carries a zero payout amount.
func (g *Gateway) Decide(ctx context.Context, mode models.Mode, event models.SourceEvent, bucket normalize.Bucket) *models.Decision {
	if mode == models.ModeMock {
		g.logger.Info("mock mode: returning deterministic decision",
			zap.String("bucket", string(bucket)))
		return coerce(mockDecision(bucket, event.DisasterType))
	}

	if g.judge == nil {
		g.logger.Info("no judge configured, using rule fallback")
		return coerce(ruleFallback(event, bucket))
	}

	decision, err := g.judgeWithTimeout(ctx, event, bucket)
	if err != nil {
		g.logger.Warn("judge unavailable, using rule fallback",
			zap.String("judge", g.judge.Name()),
			zap.Error(err))
		return coerce(ruleFallback(event, bucket))
	}

	return coerce(decision)
}

// judgeWithTimeout runs the judge under the gateway's time budget. The
// result channel is buffered so an abandoned judge goroutine can still
// complete its send and exit.
func (g *Gateway) judgeWithTimeout(ctx context.Context, event models.SourceEvent, bucket normalize.Bucket) (*models.Decision, error) {
	judgeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type judgeResult struct {
		decision *models.Decision
		err      error
	}
	resultCh := make(chan judgeResult, 1)

	go func() {
		decision, err := g.judge.Judge(judgeCtx, event, bucket)
		resultCh <- judgeResult{decision: decision, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.decision, r.err
	case <-judgeCtx.Done():
		return nil, fmt.Errorf("judge timed out after %s: %w", g.timeout, judgeCtx.Err())
	}
}

// coerce enforces the decision post-conditions regardless of what the
// judge produced. Anything other than an exact YES is a NO, the verdict
// always agrees with the authorization, a denial pays nothing, and the
// amount never exceeds the policy maximum.
func coerce(d *models.Decision) *models.Decision {
	if d == nil {
		d = &models.Decision{}
	}

	auth := models.Authorization(strings.ToUpper(strings.TrimSpace(string(d.Authorization))))
	if auth != models.AuthorizationYes {
		auth = models.AuthorizationNo
	}
	d.Authorization = auth

	if auth == models.AuthorizationYes {
		d.Verdict = models.VerdictPayout
	} else {
		d.Verdict = models.VerdictDeny
		d.PayoutAmountUSDC = "0"
	}

	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 100 {
		d.Confidence = 100
	}
	d.PayoutAmountUSDC = clampAmount(d.PayoutAmountUSDC)

	return d
}

// clampAmount bounds a judge-supplied amount string to
// [0, MaxPayoutUSDC]. Unparseable amounts become zero.
func clampAmount(amount string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "0"
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || value < 0 {
		return "0"
	}
	max := models.DefaultPolicyConfig().MaxPayoutUSDC
	if value > float64(max) {
		return strconv.Itoa(max)
	}
	return amount
}
