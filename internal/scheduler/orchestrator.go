package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/fortuna/splash/internal/reconciliation"
	"github.com/robfig/cron/v3"
)

// Config holds scheduler configuration
type Config struct {
	// CronSpec is a six-field cron expression (with seconds).
	// Default runs one pass daily at 06:00.
	CronSpec string
	Enabled  bool
	// PassTimeout bounds a single reconciliation pass
	PassTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		CronSpec:    "0 0 6 * * *",
		Enabled:     true,
		PassTimeout: 2 * time.Minute,
	}
}

// Orchestrator runs reconciliation passes on a cron schedule. Passes
// never overlap: a tick that fires while a pass is still running is
// skipped, matching the engine's assumption of one invocation at a time.
type Orchestrator struct {
	engine  *reconciliation.Engine
	cron    *cron.Cron
	config  *Config
	running atomic.Bool
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(engine *reconciliation.Engine, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		engine: engine,
		cron:   cron.New(cron.WithSeconds()),
		config: config,
	}
}

// Start registers the reconciliation job and starts the cron loop
func (o *Orchestrator) Start() error {
	if !o.config.Enabled {
		log.Println("Scheduler disabled, reconciliation passes must be triggered manually")
		return nil
	}

	if _, err := o.cron.AddFunc(o.config.CronSpec, o.runScheduledPass); err != nil {
		return fmt.Errorf("registering reconciliation job: %w", err)
	}

	o.cron.Start()
	log.Printf("→ Reconciliation scheduler started (spec: %q)", o.config.CronSpec)

	return nil
}

// Stop stops the cron loop and waits for a running pass to finish
func (o *Orchestrator) Stop() {
	ctx := o.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Reconciliation scheduler stopped")
}

// TriggerManualPass runs a reconciliation pass outside the schedule.
// Fails fast when a scheduled pass is already running.
func (o *Orchestrator) TriggerManualPass(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return fmt.Errorf("a reconciliation pass is already running")
	}
	defer o.running.Store(false)

	return o.engine.RunPass(ctx)
}

// runScheduledPass is the cron job body
func (o *Orchestrator) runScheduledPass() {
	if !o.running.CompareAndSwap(false, true) {
		log.Println("⚠️  Skipping scheduled pass: previous pass still running")
		return
	}
	defer o.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), o.config.PassTimeout)
	defer cancel()

	startTime := time.Now()
	log.Println("═══ Reconciliation Pass Starting ═══")

	if err := o.engine.RunPass(ctx); err != nil {
		log.Printf("❌ Reconciliation pass failed: %v", err)
		return
	}

	log.Printf("═══ Reconciliation Pass Complete (%v) ═══", time.Since(startTime).Round(time.Second))
}
