package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-hrm/meridian-hrm/internal/jobs"
)

// SessionPurger removes expired session rows.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionCleanupJob drops expired persistent sessions.
type SessionCleanupJob struct {
	Purger  SessionPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSessionCleanupJob wires dependencies for the cleanup handler.
func NewSessionCleanupJob(purger SessionPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionCleanupJob {
	return &SessionCleanupJob{
		Purger:  purger,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes session cleanup tasks.
func (j *SessionCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Purger == nil {
		return errors.New("session cleanup: handler not configured")
	}

	tracker := j.Metrics.Track(TaskTypeSessionCleanup)
	defer func() { err = tracker.End(err) }()

	removed, err := j.Purger.PurgeExpiredSessions(ctx, j.clock())
	if err != nil {
		return err
	}
	if j.Logger != nil && removed > 0 {
		j.Logger.Info("expired sessions removed", slog.Int64("count", removed))
	}
	return nil
}
