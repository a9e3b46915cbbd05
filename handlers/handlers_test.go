package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/app"
	"github.com/kushwahaamar-dev/sentinel/config"
	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/audit"
	"github.com/kushwahaamar-dev/sentinel/services/ingest"
	"github.com/kushwahaamar-dev/sentinel/services/oracle"
	"github.com/kushwahaamar-dev/sentinel/services/payout"
	"github.com/kushwahaamar-dev/sentinel/services/recipients"
	"github.com/kushwahaamar-dev/sentinel/services/sink"
)

type fakeRecordRepo struct {
	mu       sync.Mutex
	records  []*models.PipelineRecord
	existing map[string]bool
	failWith error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{existing: make(map[string]bool)}
}

func (f *fakeRecordRepo) Insert(_ context.Context, record *models.PipelineRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	f.existing[record.Fingerprint] = true
	return nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.PipelineRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRecordRepo) ExistsByFingerprint(_ context.Context, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[fingerprint], nil
}

func (f *fakeRecordRepo) GetRecent(_ context.Context, limit int) ([]*models.PipelineRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeRecordRepo) TotalPaidOut(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, r := range f.records {
		if r.PayoutTx != nil && r.PayoutAmount != nil {
			total += parseAmount(*r.PayoutAmount)
		}
	}
	return total, nil
}

func (f *fakeRecordRepo) CountPayouts(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.records {
		if r.PayoutTx != nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeRecordRepo) CountByBucket(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range f.records {
		counts[r.Bucket]++
	}
	return counts, nil
}

func (f *fakeRecordRepo) CountByOutcome(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range f.records {
		counts[string(r.Outcome)]++
	}
	return counts, nil
}

func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.LogEntry
}

func (f *fakeLogRepo) Insert(_ context.Context, entry *models.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepo) GetRecent(_ context.Context, limit int) ([]*models.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// newest first
	out := make([]*models.LogEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func writeScenarios(t *testing.T, dir string) {
	t.Helper()
	scenarios := `[
		{"type": "earthquake", "description": "M8.2 Earthquake near Tokyo", "lat": 35.6762, "lon": 139.6503, "severity": "extreme"},
		{"type": "hurricane", "description": "Category 4 Hurricane approaching Miami", "lat": 25.7617, "lon": -80.1918, "severity": "extreme"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenarios.json"), []byte(scenarios), 0o644))
}

func testDeps(t *testing.T, mode models.Mode) (*app.Dependencies, *fakeRecordRepo, *fakeLogRepo) {
	t.Helper()

	dir := t.TempDir()
	writeScenarios(t, dir)

	records := newFakeRecordRepo()
	logRepo := &fakeLogRepo{}

	auditSvc := audit.NewService(logRepo, zap.NewNop(), audit.Config{BufferSize: 100, WorkerCount: 1})
	require.NoError(t, auditSvc.Start())
	t.Cleanup(func() { _ = auditSvc.Stop(2 * time.Second) })

	registry := recipients.NewRegistryFromRecipients([]models.Recipient{
		{
			ID:            "global-fund",
			Name:          "Global Relief Fund",
			Address:       "0x" + strings.Repeat("4", 40),
			Verified:      true,
			DisasterTypes: []string{"earthquake", "wildfire", "hurricane", "storm"},
			Regions:       []string{"global"},
		},
	}, zap.NewNop())

	statuses := ingest.NewStatusCache()
	events := ingest.NewEventCache(100, time.Hour)
	switchboard := ingest.NewSwitchboard(nil, filepath.Join(dir, "scenarios.json"), statuses, zap.NewNop())
	gateway := oracle.NewGateway(nil, time.Second, zap.NewNop())
	mockSink := sink.NewMockSink(zap.NewNop())
	pipeline := payout.NewPipeline(records, registry, gateway, mockSink, auditSvc, zap.NewNop())

	cfg := &config.Config{
		Mode:    mode,
		DataDir: dir,
	}
	cfg.Oracle.Model = "gemini-1.5-flash"

	return &app.Dependencies{
		Config:      cfg,
		Logger:      zap.NewNop(),
		Records:     records,
		Logs:        logRepo,
		Switchboard: switchboard,
		Statuses:    statuses,
		Events:      events,
		Gateway:     gateway,
		Registry:    registry,
		Sink:        mockSink,
		Pipeline:    pipeline,
		Audit:       auditSvc,
		StartedAt:   time.Now().UTC().Add(-time.Minute),
	}, records, logRepo
}

// flushAudit stops the audit workers so queued entries are persisted.
func flushAudit(t *testing.T, deps *app.Dependencies) {
	t.Helper()
	require.NoError(t, deps.Audit.Stop(2*time.Second))
}
