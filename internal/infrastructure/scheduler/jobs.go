package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReminderSweeper stamps reminders and overdue notices on invoices and
// reports how many of each it stamped.
type ReminderSweeper interface {
	SweepReminders(ctx context.Context, now time.Time) (reminded, overdue int, err error)
}

// NewReminderJob wraps the invoice reminder sweep.
func NewReminderJob(sweeper ReminderSweeper, logger *zap.Logger) Job {
	return JobFunc{
		JobName: "invoice_reminders",
		Fn: func(ctx context.Context, now time.Time) error {
			reminded, overdue, err := sweeper.SweepReminders(ctx, now)
			logger.Info("Invoice reminder sweep finished",
				zap.Int("reminded", reminded),
				zap.Int("overdue", overdue))
			return err
		},
	}
}

// Pruner deletes rows older than a cutoff.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// NewRetentionJob deletes rows older than retention. For processed webhook
// ids the retention must exceed Stripe's three day retry window.
func NewRetentionJob(name string, pruner Pruner, retention time.Duration, logger *zap.Logger) Job {
	return JobFunc{
		JobName: name,
		Fn: func(ctx context.Context, now time.Time) error {
			n, err := pruner.DeleteOlderThan(ctx, now.Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("Pruned rows", zap.String("job", name), zap.Int64("deleted", n))
			}
			return nil
		},
	}
}
