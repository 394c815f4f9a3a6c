// Package scheduler runs the daily settlement housekeeping jobs.
package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRunning is returned by RunNow while a sweep is in progress.
var ErrAlreadyRunning = errors.New("scheduled jobs are already running")

// Job is a unit of daily work. Run must be safe to repeat for the same day.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context, now time.Time) error
}

func (f JobFunc) Name() string { return f.JobName }

func (f JobFunc) Run(ctx context.Context, now time.Time) error { return f.Fn(ctx, now) }
