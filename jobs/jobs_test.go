package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/procureflow/internal/jobs"
	"github.com/odyssey-erp/procureflow/internal/procurement"
	"github.com/odyssey-erp/procureflow/internal/snapshot"
)

var _ procurement.Notifier = (*Client)(nil)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func sampleEvent() procurement.ApprovalRequestedEvent {
	return procurement.ApprovalRequestedEvent{
		PRID:           "PR-0001",
		Number:         "PR-0001",
		LevelIndex:     1,
		Roles:          []string{"CFO"},
		CandidateIDs:   []string{"emp-cfo"},
		RoleCandidates: map[string]int{"CFO": 1},
		TotalAmount:    "75000000",
		RequestDate:    time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewApprovalNotifyTask(t *testing.T) {
	task, err := NewApprovalNotifyTask(sampleEvent())
	require.NoError(t, err)
	require.Equal(t, TaskApprovalNotify, task.Type())

	var payload ApprovalNotifyPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "PR-0001", payload.PRID)
	require.Equal(t, []string{"emp-cfo"}, payload.CandidateIDs)

	_, err = NewApprovalNotifyTask(procurement.ApprovalRequestedEvent{})
	require.Error(t, err)
}

func TestApprovalTaskIDSurvivesNumberReuse(t *testing.T) {
	first := sampleEvent()
	again := sampleEvent()
	require.Equal(t, ApprovalTaskID(first), ApprovalTaskID(again))

	nextLevel := sampleEvent()
	nextLevel.LevelIndex = 2
	require.NotEqual(t, ApprovalTaskID(first), ApprovalTaskID(nextLevel))

	// Same PR number issued again after a reset.
	reissued := sampleEvent()
	reissued.RequestDate = first.RequestDate.Add(time.Hour)
	require.NotEqual(t, ApprovalTaskID(first), ApprovalTaskID(reissued))
}

func TestApprovalNotifyJobCountsCandidatesPerRole(t *testing.T) {
	registry := prometheus.NewRegistry()
	job := NewApprovalNotifyJob(quietLogger(), jobmetrics.NewMetrics(registry))

	evt := sampleEvent()
	evt.Roles = []string{"Department Head", "Line Manager"}
	evt.CandidateIDs = []string{"emp-head", "emp-mgr-1", "emp-mgr-2"}
	evt.RoleCandidates = map[string]int{"Department Head": 1, "Line Manager": 2}
	task, err := NewApprovalNotifyTask(evt)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	expected := `
# HELP procureflow_approvers_notified_total Approval notifications delivered grouped by role.
# TYPE procureflow_approvers_notified_total counter
procureflow_approvers_notified_total{role="Department Head"} 1
procureflow_approvers_notified_total{role="Line Manager"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "procureflow_approvers_notified_total"))
}

func TestClientNotifyApprovalRequested(t *testing.T) {
	fake := &fakeEnqueuer{}
	client := newClient(fake, quietLogger())

	require.NoError(t, client.NotifyApprovalRequested(context.Background(), sampleEvent()))
	require.Len(t, fake.tasks, 1)

	fake.err = asynq.ErrTaskIDConflict
	require.NoError(t, client.NotifyApprovalRequested(context.Background(), sampleEvent()))

	fake.err = errors.New("redis down")
	require.Error(t, client.NotifyApprovalRequested(context.Background(), sampleEvent()))
}

func TestApprovalNotifyJobHandle(t *testing.T) {
	job := NewApprovalNotifyJob(quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewApprovalNotifyTask(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	err = job.Handle(context.Background(), asynq.NewTask(TaskApprovalNotify, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	empty := sampleEvent()
	empty.CandidateIDs = nil
	task, err = NewApprovalNotifyTask(empty)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestUrgentScanJob(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

	store := procurement.DefaultDataset()
	store.Requisitions = append(store.Requisitions,
		procurement.Requisition{ID: "PR-0001", Number: "PR-0001", Status: procurement.PRStatusPendingApproval, NeededBy: now.Add(24 * time.Hour), TotalAmount: decimal.NewFromInt(10)},
		procurement.Requisition{ID: "PR-0002", Number: "PR-0002", Status: procurement.PRStatusPendingApproval, NeededBy: now.Add(10 * 24 * time.Hour), TotalAmount: decimal.NewFromInt(10)},
		procurement.Requisition{ID: "PR-0003", Number: "PR-0003", Status: procurement.PRStatusApproved, NeededBy: now, TotalAmount: decimal.NewFromInt(10)},
	)
	payload, err := procurement.EncodeSnapshot(store)
	require.NoError(t, err)
	snaps := snapshot.NewMemory()
	require.NoError(t, snaps.Save(ctx, payload))

	job := NewUrgentScanJob(snaps, nil, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return now }
	require.NoError(t, job.Handle(ctx, NewUrgentScanTask()))

	var unconfigured *UrgentScanJob
	require.Error(t, unconfigured.Handle(ctx, NewUrgentScanTask()))
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) { return f.info, f.err }

func TestJobsHealth(t *testing.T) {
	serve := func(h *Handler) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		h.MountRoutes(r)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec
	}

	rec := serve(NewHandler(nil, quietLogger()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0,"retry":0}`, rec.Body.String())

	rec = serve(&Handler{inspector: fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4, Retry: 1}}, logger: quietLogger()})
	require.JSONEq(t, `{"queue":"default","pending":4,"retry":1}`, rec.Body.String())

	rec = serve(&Handler{inspector: fakeInspector{err: errors.New("down")}, logger: quietLogger()})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
