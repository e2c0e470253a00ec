package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/procureflow/internal/jobs"
	"github.com/odyssey-erp/procureflow/internal/procurement"
)

// TaskUrgentScan reports pending requisitions whose needed-by date is close.
const TaskUrgentScan = "procurement:urgent_scan"

// NewUrgentScanTask builds the scheduled scan task.
func NewUrgentScanTask() *asynq.Task {
	return asynq.NewTask(TaskUrgentScan, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(1))
}

// UrgentScanJob reads the persisted store and logs urgent requisitions.
type UrgentScanJob struct {
	Snapshots procurement.SnapshotStore
	Fallback  *procurement.Store
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewUrgentScanJob initialises the urgent scan handler.
func NewUrgentScanJob(snapshots procurement.SnapshotStore, fallback *procurement.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *UrgentScanJob {
	return &UrgentScanJob{
		Snapshots: snapshots,
		Fallback:  fallback,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan.
func (j *UrgentScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Snapshots == nil {
		return errors.New("urgent scan: handler not configured")
	}
	tracker := j.metrics().Track(TaskUrgentScan)
	logger := j.logger()

	fallback := j.Fallback
	if fallback == nil {
		fallback = procurement.DefaultDataset()
	}
	store, err := procurement.LoadStore(ctx, j.Snapshots, fallback, logger)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return tracker.End(err)
	}

	urgent := procurement.UrgentRequisitions(store, j.now())
	for _, p := range urgent {
		logger.Warn("urgent requisition awaiting approval",
			slog.String("pr", p.Number),
			slog.Time("needed_by", p.NeededBy),
			slog.Any("pending_roles", p.PendingRoles),
		)
	}
	j.metrics().SetUrgent(len(urgent))
	logger.Info("completed urgent scan", slog.Int("urgent", len(urgent)))
	return tracker.End(nil)
}

func (j *UrgentScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskUrgentScan))
	}
	return slog.Default().With(slog.String("job", TaskUrgentScan))
}

func (j *UrgentScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *UrgentScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
