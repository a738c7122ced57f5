package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-hrm/meridian-hrm/internal/jobs"
	"github.com/meridian-hrm/meridian-hrm/internal/leave"
)

// LeaveDecisionJob turns leave decisions into notification emails.
type LeaveDecisionJob struct {
	Enqueuer *Client
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewLeaveDecisionJob wires dependencies for the decision handler.
func NewLeaveDecisionJob(enqueuer *Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *LeaveDecisionJob {
	return &LeaveDecisionJob{Enqueuer: enqueuer, Logger: logger, Metrics: metrics}
}

// Handle processes leave decision tasks.
func (j *LeaveDecisionJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("leave decision: handler not configured")
	}
	var payload LeaveDecisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeLeaveDecision)
	defer func() { err = tracker.End(err) }()

	subject := fmt.Sprintf("Your %s leave request was %s", payload.LeaveType, payload.Status)
	body := fmt.Sprintf("Your leave request for %s to %s has been %s.", payload.FromDate, payload.ToDate, payload.Status)
	if payload.Note != "" {
		body += "\n\nNote from the approver: " + payload.Note
	}

	if j.Enqueuer != nil {
		if _, err := j.Enqueuer.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      payload.EmployeeEmail,
			Subject: subject,
			Body:    body,
		}); err != nil {
			return err
		}
	}

	j.Metrics.AddDecision(payload.Status)
	if j.Logger != nil {
		j.Logger.Info("leave decision notified",
			slog.Int64("request_id", payload.RequestID),
			slog.String("status", payload.Status),
		)
	}
	return nil
}

// LeaveNotifier adapts the queue client to the leave service. Resolve
// maps an employee ID to the account email the notification targets.
type LeaveNotifier struct {
	Client  *Client
	Resolve func(ctx context.Context, employeeID int64) (string, error)
}

// NotifyDecision enqueues a decision notification for the request.
func (n LeaveNotifier) NotifyDecision(ctx context.Context, req leave.Request) error {
	if n.Client == nil {
		return errors.New("leave notifier: client not configured")
	}
	payload := LeaveDecisionPayload{
		RequestID: req.ID,
		LeaveType: req.Type,
		FromDate:  req.FromDate.Format("2006-01-02"),
		ToDate:    req.ToDate.Format("2006-01-02"),
		Status:    req.Status,
		Note:      req.DecisionNote,
	}
	if n.Resolve != nil {
		email, err := n.Resolve(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		payload.EmployeeEmail = email
	}
	_, err := n.Client.EnqueueLeaveDecision(ctx, payload)
	return err
}
