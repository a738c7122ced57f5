package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridian-hrm/meridian-hrm/internal/jobs"
)

// AttendanceDigestJob summarises the previous day's attendance.
type AttendanceDigestJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAttendanceDigestJob wires dependencies for the digest handler.
func NewAttendanceDigestJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *AttendanceDigestJob {
	return &AttendanceDigestJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes attendance digest tasks.
func (j *AttendanceDigestJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Pool == nil {
		return errors.New("attendance digest: handler not configured")
	}
	var payload AttendanceDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeAttendanceDigest)
	defer func() { err = tracker.End(err) }()

	day := payload.ScheduledFor
	if day.IsZero() {
		day = j.clock()
	}
	// The digest covers the day before the scheduled run.
	day = day.AddDate(0, 0, -1)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var checkedIn, openRecords int
	if err := j.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT employee_id) FROM attendance WHERE work_date = $1`,
		start).Scan(&checkedIn); err != nil {
		return err
	}
	if err := j.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance WHERE work_date = $1 AND check_out IS NULL`,
		start).Scan(&openRecords); err != nil {
		return err
	}

	if j.Logger != nil {
		j.Logger.Info("attendance digest",
			slog.String("day", start.Format("2006-01-02")),
			slog.Int("checked_in", checkedIn),
			slog.Int("missing_checkout", openRecords),
		)
	}
	return nil
}
