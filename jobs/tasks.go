package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/procureflow/internal/jobs"
	"github.com/odyssey-erp/procureflow/internal/procurement"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskApprovalNotify tells the candidates of an approval level that a requisition awaits them.
	TaskApprovalNotify = "procurement:approval_notify"

	approvalNotifyMaxRetry = 5
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ApprovalNotifyPayload is the serialized approval routing event.
type ApprovalNotifyPayload struct {
	procurement.ApprovalRequestedEvent
}

// NewApprovalNotifyTask constructs an Asynq task. The task id is unique per
// requisition level so repeated routing of the same level is deduplicated.
// The request date is part of the id because a reset reissues PR numbers.
func NewApprovalNotifyTask(evt procurement.ApprovalRequestedEvent) (*asynq.Task, error) {
	if evt.PRID == "" {
		return nil, errors.New("jobs: approval notify requires a requisition id")
	}
	data, err := json.Marshal(ApprovalNotifyPayload{ApprovalRequestedEvent: evt})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskApprovalNotify, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(approvalNotifyMaxRetry),
		asynq.TaskID(ApprovalTaskID(evt)),
	), nil
}

// ApprovalTaskID identifies the notification of one requisition level.
func ApprovalTaskID(evt procurement.ApprovalRequestedEvent) string {
	return fmt.Sprintf("approval:%s:%d:%d", evt.PRID, evt.RequestDate.UnixNano(), evt.LevelIndex)
}

// ApprovalNotifyJob delivers approval requests to the candidate approvers.
type ApprovalNotifyJob struct {
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewApprovalNotifyJob initialises the notification handler.
func NewApprovalNotifyJob(logger *slog.Logger, metrics *jobmetrics.Metrics) *ApprovalNotifyJob {
	return &ApprovalNotifyJob{Logger: logger, Metrics: metrics}
}

// Handle processes TaskApprovalNotify tasks.
func (j *ApprovalNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ApprovalNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.PRID == "" {
		return asynq.SkipRetry
	}
	metrics := j.metrics()
	tracker := metrics.Track(TaskApprovalNotify)

	logger := j.logger().With(
		slog.String("pr", payload.Number),
		slog.Int("level", payload.LevelIndex),
	)
	if len(payload.CandidateIDs) == 0 {
		logger.Warn("approval level has no candidates", slog.Any("roles", payload.Roles))
		return tracker.End(nil)
	}
	for _, id := range payload.CandidateIDs {
		logger.Info("approval requested",
			slog.String("approver", id),
			slog.String("total", payload.TotalAmount),
		)
	}
	for role, count := range payload.RoleCandidates {
		metrics.AddNotified(role, count)
	}
	return tracker.End(nil)
}

func (j *ApprovalNotifyJob) logger() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskApprovalNotify))
	}
	return slog.Default().With(slog.String("job", TaskApprovalNotify))
}

func (j *ApprovalNotifyJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
