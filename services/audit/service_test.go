package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
)

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.LogEntry
}

func (f *fakeLogRepo) Insert(ctx context.Context, entry *models.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepo) GetRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.LogEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeLogRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func TestServicePersistsEntriesAsynchronously(t *testing.T) {
	repo := &fakeLogRepo{}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})
	require.NoError(t, svc.Start())

	svc.EmitOK("GDACS: 2 significant alerts")
	svc.EmitWarn("NWS: Timeout")
	svc.EmitFail("Payout failed: vault unavailable")
	svc.Emit("EONET: Quiet", models.LogOK, "eonet")

	require.NoError(t, svc.Stop(time.Second))
	assert.Equal(t, 4, repo.count())

	entries, err := repo.GetRecent(context.Background(), 10)
	require.NoError(t, err)

	bySeverity := map[models.LogSeverity]int{}
	for _, e := range entries {
		bySeverity[e.Status]++
		assert.NotEmpty(t, e.Text)
		assert.False(t, e.Timestamp.IsZero())
	}
	assert.Equal(t, 2, bySeverity[models.LogOK])
	assert.Equal(t, 1, bySeverity[models.LogWarn])
	assert.Equal(t, 1, bySeverity[models.LogFail])
}

func TestServiceRejectsEventsBeforeStart(t *testing.T) {
	svc := NewService(&fakeLogRepo{}, zap.NewNop(), DefaultConfig())

	err := svc.LogEvent(&Event{Entry: models.NewLogEntry("too early", models.LogOK)})
	assert.Error(t, err)
}

func TestServiceDropsWhenBufferFull(t *testing.T) {
	repo := &fakeLogRepo{}
	// No workers drain the channel, so it fills immediately.
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 1, WorkerCount: 0})
	require.NoError(t, svc.Start())

	first := svc.LogEvent(&Event{Entry: models.NewLogEntry("fits", models.LogOK)})
	second := svc.LogEvent(&Event{Entry: models.NewLogEntry("dropped", models.LogOK)})

	assert.NoError(t, first)
	assert.Error(t, second)

	require.NoError(t, svc.Stop(time.Second))
}

func TestServiceDoubleStartFails(t *testing.T) {
	svc := NewService(&fakeLogRepo{}, zap.NewNop(), DefaultConfig())
	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())
	require.NoError(t, svc.Stop(time.Second))
}
