package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/service/runs"
)

// runTimeout bounds a single background run.
const runTimeout = 30 * time.Minute

// Executor runs one smoke run.
type Executor interface {
	Execute(ctx context.Context, opts runs.Options) (runs.Run, error)
}

// Scheduler triggers smoke runs on a cron schedule and on demand. At most one
// background run is in flight at a time.
type Scheduler struct {
	cron     *cron.Cron
	exec     Executor
	schedule string
	defaults runs.Options
	logger   *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	// mu orders Trigger's wg.Add against Stop's cancel and wg.Wait.
	mu      sync.Mutex
	stopped bool
}

// NewScheduler creates a new scheduler instance. The schedule is a standard
// five-field cron expression evaluated in cfg.Timezone.
func NewScheduler(cfg config.SmokeConfig, exec Executor, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		exec:     exec,
		schedule: cfg.CronSchedule,
		defaults: runs.Options{Policy: cfg.Policy},
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if _, err := s.cron.AddFunc(cfg.CronSchedule, s.scheduledRun); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule smoke run %q: %w", cfg.CronSchedule, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
}

// Stop stops the cron loop, cancels any background run and waits for it.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()

	s.mu.Lock()
	s.stopped = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

// Running reports whether a background run is in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Next returns the next scheduled activation, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Trigger starts a background run unless one is already in flight or the
// scheduler has been stopped.
func (s *Scheduler) Trigger(opts runs.Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || !s.running.CompareAndSwap(false, true) {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.execute(opts)
	}()
	return true
}

func (s *Scheduler) scheduledRun() {
	if !s.Trigger(s.defaults) {
		s.logger.Warn("previous smoke run still in progress, skipping tick")
	}
}

func (s *Scheduler) execute(opts runs.Options) {
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()

	s.logger.Info("smoke run started", zap.String("policy", opts.Policy), zap.Strings("modules", opts.Modules))
	run, err := s.exec.Execute(ctx, opts)
	if err != nil {
		s.logger.Error("smoke run failed", zap.Error(err))
		return
	}

	s.logger.Info("smoke run completed",
		zap.String("run_id", run.Summary.RunID),
		zap.Int("passed", run.Summary.Passed),
		zap.Int("failed", run.Summary.Failed))
}
