package sink

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// MockSink simulates a vault disbursement without moving funds. Every
// call succeeds with the same well-known transaction hash, so demo
// flows are fully reproducible.
type MockSink struct {
	logger *zap.Logger
}

// NewMockSink creates a new mock sink
func NewMockSink(logger *zap.Logger) *MockSink {
	return &MockSink{logger: logger}
}

// Name returns the sink name
func (s *MockSink) Name() string {
	return "mock"
}

// Disburse logs the simulated payout and returns the fixed mock hash.
func (s *MockSink) Disburse(ctx context.Context, toAddress string, amountUnits int64, reason string) (string, error) {
	s.logger.Info("mock disbursement",
		zap.String("to", toAddress),
		zap.Int64("amount_units", amountUnits),
		zap.String("reason", reason))
	return "0x" + strings.Repeat("e", 64), nil
}
