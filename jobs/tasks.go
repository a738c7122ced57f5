package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeLeaveDecision notifies an employee about a leave decision.
	TaskTypeLeaveDecision = "leave:decision"
	// TaskTypeAttendanceDigest produces the nightly attendance summary.
	TaskTypeAttendanceDigest = "attendance:digest"
	// TaskTypeSessionCleanup removes expired session rows.
	TaskTypeSessionCleanup = "session:cleanup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// TODO: deliver via SMTP once the mail relay is provisioned.
	slog.Default().Info("email delivery pending relay",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject),
	)
	return nil
}

// LeaveDecisionPayload carries everything the notification needs; the
// handler never reloads the request from the database.
type LeaveDecisionPayload struct {
	RequestID     int64  `json:"request_id"`
	EmployeeEmail string `json:"employee_email"`
	LeaveType     string `json:"leave_type"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
	Status        string `json:"status"`
	Note          string `json:"note,omitempty"`
}

// NewLeaveDecisionTask constructs an Asynq task for a decided request.
func NewLeaveDecisionTask(payload LeaveDecisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLeaveDecision, data, asynq.Queue(QueueDefault)), nil
}

// AttendanceDigestPayload carries scheduling metadata for the digest.
type AttendanceDigestPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAttendanceDigestTask constructs the nightly digest task.
func NewAttendanceDigestTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(AttendanceDigestPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAttendanceDigest, data, asynq.Queue(QueueDefault)), nil
}

// NewSessionCleanupTask constructs the session cleanup task.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionCleanup, nil, asynq.Queue(QueueDefault))
}
