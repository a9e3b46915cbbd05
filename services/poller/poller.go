package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/audit"
	"github.com/kushwahaamar-dev/sentinel/services/ingest"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
	"github.com/kushwahaamar-dev/sentinel/services/payout"
)

// Config holds poller settings
type Config struct {
	// Interval between scan cycles
	Interval time.Duration

	// SuppressWindow is how long an identical status line is muted
	// after it was last persisted, so a feed that stays down does not
	// flood the operator log every cycle.
	SuppressWindow time.Duration
}

// DefaultConfig returns sensible poller defaults
func DefaultConfig() Config {
	return Config{
		Interval:       60 * time.Second,
		SuppressWindow: 5 * time.Minute,
	}
}

// Poller periodically scans the live feeds and runs every discovered
// event through the payout pipeline. It only ever runs in LIVE mode;
// MOCK deployments trigger scans through the simulate endpoint instead.
type Poller struct {
	switchboard *ingest.Switchboard
	pipeline    *payout.Pipeline
	events      *ingest.EventCache
	audit       *audit.Service
	config      Config
	logger      *zap.Logger

	mu          sync.Mutex
	lastEmitted map[string]time.Time
	cancel      context.CancelFunc
	done        chan struct{}
	started     bool
}

// NewPoller creates a new background poller
func NewPoller(
	switchboard *ingest.Switchboard,
	pipeline *payout.Pipeline,
	events *ingest.EventCache,
	auditService *audit.Service,
	config Config,
	logger *zap.Logger,
) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.SuppressWindow <= 0 {
		config.SuppressWindow = DefaultConfig().SuppressWindow
	}
	return &Poller{
		switchboard: switchboard,
		pipeline:    pipeline,
		events:      events,
		audit:       auditService,
		config:      config,
		logger:      logger,
		lastEmitted: make(map[string]time.Time),
	}
}

// Start launches the scan loop. The first scan runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true
	p.mu.Unlock()

	p.logger.Info("starting live feed poller",
		zap.Duration("interval", p.config.Interval))

	go p.run(ctx)
	return nil
}

// Stop signals the loop to exit and waits for the current cycle.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.started = false
	p.mu.Unlock()

	cancel()
	<-done
	p.logger.Info("live feed poller stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.Scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Scan(ctx)
			p.events.CleanupExpired()
		}
	}
}

// Scan runs one full cycle: fetch all feeds, persist their status
// lines, cache the events, and pipeline anything new.
func (p *Poller) Scan(ctx context.Context) {
	result := p.switchboard.Ingest(ctx, models.ModeLive)

	for _, line := range result.Logs {
		p.emitStatusLine(line)
	}

	for _, event := range result.Events {
		fingerprint := normalize.Fingerprint(event)
		if _, seen := p.events.Get(fingerprint); seen {
			continue
		}
		p.events.Put(fingerprint, event)

		if _, err := p.pipeline.Process(ctx, models.ModeLive, event); err != nil {
			p.logger.Error("pipeline run failed",
				zap.String("fingerprint", fingerprint),
				zap.Error(err))
		}
	}

	p.logger.Debug("scan cycle complete",
		zap.Int("events", len(result.Events)),
		zap.Int("sources", len(result.Logs)))
}

// emitStatusLine persists one feed status line, muting repeats inside
// the suppression window.
func (p *Poller) emitStatusLine(line string) {
	now := time.Now()

	p.mu.Lock()
	if last, ok := p.lastEmitted[line]; ok && now.Sub(last) < p.config.SuppressWindow {
		p.mu.Unlock()
		return
	}
	p.lastEmitted[line] = now
	p.mu.Unlock()

	p.audit.Emit(line, ingest.StatusLineSeverity(line), "poller")
}
