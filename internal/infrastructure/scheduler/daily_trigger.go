package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTriggerConfig controls when the jobs fire.
type DailyTriggerConfig struct {
	// Hour of day, in the trigger's location, at which the jobs run.
	Hour int
	// CheckInterval is how often the clock is polled.
	CheckInterval time.Duration
	// JobTimeout bounds each job run.
	JobTimeout time.Duration
	Location   *time.Location
}

// DefaultDailyTriggerConfig runs at 06:00 UTC.
func DefaultDailyTriggerConfig() DailyTriggerConfig {
	return DailyTriggerConfig{
		Hour:          6,
		CheckInterval: time.Minute,
		JobTimeout:    10 * time.Minute,
		Location:      time.UTC,
	}
}

// DailyTrigger runs its jobs once per calendar day at the configured hour.
// A trigger started after the hour has passed runs on the next check.
type DailyTrigger struct {
	config DailyTriggerConfig
	jobs   []Job
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	sweeping    bool
	lastRunDate string
}

// NewDailyTrigger creates a trigger for jobs. Zero config fields take the
// defaults.
func NewDailyTrigger(config DailyTriggerConfig, logger *zap.Logger, jobs ...Job) *DailyTrigger {
	def := DefaultDailyTriggerConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = def.CheckInterval
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = def.JobTimeout
	}
	if config.Location == nil {
		config.Location = def.Location
	}
	return &DailyTrigger{
		config: config,
		jobs:   jobs,
		logger: logger.Named("scheduler"),
		now:    time.Now,
	}
}

// Start launches the polling loop.
func (t *DailyTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Daily trigger started",
		zap.Int("hour", t.config.Hour),
		zap.Duration("check_interval", t.config.CheckInterval),
		zap.Int("jobs", len(t.jobs)))
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep, bounded by ctx.
func (t *DailyTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.logger.Info("Daily trigger stopped")
		return nil
	case <-ctx.Done():
		t.logger.Warn("Daily trigger stop timed out")
		return ctx.Err()
	}
}

func (t *DailyTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	t.checkAndTrigger(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the jobs when the hour has been reached and they have
// not run yet today.
func (t *DailyTrigger) checkAndTrigger(ctx context.Context) bool {
	now := t.now().In(t.config.Location)
	today := now.Format(time.DateOnly)

	t.mu.Lock()
	if t.lastRunDate == today || now.Hour() < t.config.Hour || t.sweeping {
		t.mu.Unlock()
		return false
	}
	t.lastRunDate = today
	t.sweeping = true
	t.mu.Unlock()

	t.runJobs(ctx, now)
	return true
}

// RunNow runs every job immediately, outside the daily schedule.
func (t *DailyTrigger) RunNow(ctx context.Context) error {
	t.mu.Lock()
	if t.sweeping {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	t.sweeping = true
	t.mu.Unlock()

	t.runJobs(ctx, t.now().In(t.config.Location))
	return nil
}

// runJobs runs the jobs in order. A failing job is logged and does not stop
// the ones after it.
func (t *DailyTrigger) runJobs(ctx context.Context, now time.Time) {
	defer func() {
		t.mu.Lock()
		t.sweeping = false
		t.mu.Unlock()
	}()

	for _, job := range t.jobs {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		jobCtx, cancel := context.WithTimeout(ctx, t.config.JobTimeout)
		err := job.Run(jobCtx, now)
		cancel()
		if err != nil {
			t.logger.Error("Scheduled job failed", zap.String("job", job.Name()), zap.Error(err))
			continue
		}
		t.logger.Info("Scheduled job completed",
			zap.String("job", job.Name()),
			zap.Duration("duration", time.Since(start)))
	}
}
