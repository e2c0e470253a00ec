package procurement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memorySnapshots struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	saveErr error
	loadErr error
}

func (m *memorySnapshots) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]byte(nil), m.payload...), nil
}

func (m *memorySnapshots) Save(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.payload = append([]byte(nil), payload...)
	m.saves++
	return nil
}

type recordingNotifier struct {
	events []ApprovalRequestedEvent
	err    error
}

func (n *recordingNotifier) NotifyApprovalRequested(ctx context.Context, evt ApprovalRequestedEvent) error {
	n.events = append(n.events, evt)
	return n.err
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) RecordTransition(intent string, outcome OutcomeStatus) {
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[intent+"/"+string(outcome)]++
}

// steppingClock advances one hour on every call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Hour)
		return now
	}
}

var testStart = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testStore() *Store {
	small := dec(500_000)
	s := &Store{
		Departments: []Department{{ID: "d1", Code: "OPS", Name: "Operations"}},
		Categories: []Category{
			{ID: "c1", Name: "Equipment", Type: "Capex"},
			{ID: "c2", Name: "Unrouted", Type: "Opex"},
			{ID: "c3", Name: "Auto", Type: "Opex"},
		},
		Employees: []Employee{
			{ID: "r1", FullName: "Requester One", Roles: []string{RoleRequester}, DepartmentID: "d1", ManagerID: "m1"},
			{ID: "m1", FullName: "Manager One", Roles: []string{RoleLineManager}, DepartmentID: "d1", ManagerID: "dh1"},
			{ID: "dh1", FullName: "Head One", Roles: []string{RoleDepartmentHead}, DepartmentID: "d1"},
			{ID: "cfo", FullName: "Chief One", Roles: []string{"CFO"}, DepartmentID: "d1"},
			{ID: "p1", FullName: "Buyer One", Roles: []string{RoleProcurementLead}, DepartmentID: "d1"},
			{ID: "w1", FullName: "Keeper One", Roles: []string{RoleWarehouseLead}, DepartmentID: "d1"},
			{ID: "f1", FullName: "Payer One", Roles: []string{RoleFinanceAP}, DepartmentID: "d1"},
		},
		Vendors: []Vendor{{ID: "v1", Name: "Vendor One", Rating: 4.5, Categories: []string{"c1"}}},
		Budgets: []Budget{
			{ID: "b1", Name: "Equipment", DepartmentID: "d1", CategoryID: "c1", Allocation: dec(1_000_000)},
			{ID: "b2", Name: "Small", DepartmentID: "d1", CategoryID: "c1", Allocation: dec(500_000)},
		},
		ApprovalMatrix: []ApprovalRule{
			{
				ID: "rule-auto", Name: "Auto approve", Departments: []string{MatchAll}, Categories: []string{"c3"},
				MinAmount: decimal.Zero, Levels: []Level{},
			},
			{
				ID: "rule-small", Name: "Small purchases", Departments: []string{MatchAll}, Categories: []string{"c1"},
				MinAmount: decimal.Zero, MaxAmount: &small,
				Levels: []Level{{Type: LevelSequential, Roles: []string{RoleLineManager}}},
			},
			{
				ID: "rule-large", Name: "Large purchases", Departments: []string{"d1"}, Categories: []string{"c1"},
				MinAmount: decimal.Zero,
				Levels: []Level{
					{Type: LevelParallel, Roles: []string{RoleDepartmentHead, RoleLineManager}},
					{Type: LevelSequential, Roles: []string{"CFO"}},
				},
			},
		},
	}
	s.Normalize()
	return s
}

func newTestService(t *testing.T) (*Service, *memorySnapshots, *recordingNotifier, *countingRecorder) {
	t.Helper()
	snaps := &memorySnapshots{}
	notifier := &recordingNotifier{}
	recorder := &countingRecorder{}
	svc := NewService(testStore(), snaps, ServiceConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Notifier: notifier,
		Recorder: recorder,
		Clock:    steppingClock(testStart),
		Fallback: testStore(),
	})
	return svc, snaps, notifier, recorder
}

func submitInput(budgetID string, qty, price int64) SubmitInput {
	return SubmitInput{
		RequestorID:   "r1",
		DepartmentID:  "d1",
		CategoryID:    "c1",
		VendorID:      "v1",
		BudgetID:      budgetID,
		Justification: "laptops",
		NeededBy:      testStart.Add(48 * time.Hour),
		Items:         []ItemInput{{Description: "Laptop", Quantity: dec(qty), UnitPrice: dec(price)}},
	}
}

func budgetOf(t *testing.T, svc *Service, id string) Budget {
	t.Helper()
	for _, b := range svc.Budgets() {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("budget %s not found", id)
	return Budget{}
}

func requireDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %d got %s", want, got)
}

func TestFullLifecycle(t *testing.T) {
	svc, snaps, _, recorder := newTestService(t)
	ctx := context.Background()

	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 2, 100_000))
	require.NoError(t, err)
	require.Equal(t, "PR-0001", pr.ID)
	require.Equal(t, pr.ID, pr.Number)
	require.Equal(t, PRStatusPendingApproval, pr.Status)
	require.Equal(t, "rule-small", pr.ApprovalRuleID)
	requireDecimal(t, 200_000, pr.TotalAmount)
	requireDecimal(t, 200_000, pr.Items[0].Total)
	require.Len(t, pr.ApprovalProgress, 1)
	require.Equal(t, []Candidate{{ID: "m1", FullName: "Manager One"}}, pr.ApprovalProgress[0].Roles[0].Candidates)
	require.Equal(t, ActionSubmitted, pr.History[0].Action)
	require.Contains(t, pr.History[0].Notes, "to Vendor One (Small purchases)")
	requireDecimal(t, 200_000, budgetOf(t, svc, "b1").Committed)

	pr, outcome, err := svc.Decide(ctx, DecisionInput{PRID: pr.ID, ActorID: "m1", Decision: DecisionApprove})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.Equal(t, PRStatusApproved, pr.Status)
	require.Equal(t, ActionFullyApproved, pr.History[len(pr.History)-1].Action)
	require.True(t, svc.CanIssuePO(pr.ID))

	po, outcome, err := svc.IssuePurchaseOrder(ctx, pr.ID, "")
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.Equal(t, "PO-0001", po.Number)
	require.Equal(t, POStatusIssued, po.Status)
	require.Equal(t, "p1", po.History[0].ActorID)
	require.Equal(t, "Converted from PR-0001", po.History[0].Notes)
	require.False(t, svc.CanIssuePO(pr.ID))

	stored, err := svc.Requisition(pr.ID)
	require.NoError(t, err)
	require.Equal(t, PRStatusPOIssued, stored.Status)
	require.Equal(t, "PO-0001", stored.History[len(stored.History)-1].Notes)

	po, outcome, err = svc.RecordGoodsReceipt(ctx, ReceiptInput{POID: po.ID, Reference: "DO-77"})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.Equal(t, POStatusReceived, po.Status)
	require.Len(t, po.Receipts, 1)
	require.Equal(t, "GR-0001", po.Receipts[0].ID)
	require.Equal(t, "w1", po.Receipts[0].ReceivedBy)

	b1 := budgetOf(t, svc, "b1")
	requireDecimal(t, 0, b1.Committed)
	requireDecimal(t, 200_000, b1.Spent)
	requireDecimal(t, 800_000, svc.ledger.Available(b1))

	po, outcome, err = svc.RecordInvoice(ctx, InvoiceInput{POID: po.ID, InvoiceNumber: "INV-A1"})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.Equal(t, POStatusClosed, po.Status)
	require.Equal(t, "INV-0001", po.Invoices[0].ID)
	require.Equal(t, "f1", po.Invoices[0].ProcessedBy)
	requireDecimal(t, 200_000, po.Invoices[0].Amount)

	stored, err = svc.Requisition(pr.ID)
	require.NoError(t, err)
	require.Equal(t, PRStatusClosed, stored.Status)
	require.Equal(t, ActionPaymentScheduled, stored.History[len(stored.History)-1].Action)
	requireDecimal(t, 200_000, budgetOf(t, svc, "b1").Spent)

	require.Equal(t, 5, snaps.saves)
	require.Equal(t, 1, recorder.counts[IntentInvoice+"/applied"])
}

func TestSubmitRejectsOverBudget(t *testing.T) {
	svc, snaps, notifier, recorder := newTestService(t)

	_, err := svc.SubmitRequisition(context.Background(), submitInput("b2", 1, 900_000))
	require.ErrorIs(t, err, ErrBudgetExceeded)
	var exceeded *BudgetExceededError
	require.True(t, errors.As(err, &exceeded))
	requireDecimal(t, 500_000, exceeded.Available)
	requireDecimal(t, 900_000, exceeded.Requested)

	requireDecimal(t, 0, budgetOf(t, svc, "b2").Committed)
	require.Empty(t, svc.Requisitions())
	require.Zero(t, snaps.saves)
	require.Empty(t, notifier.events)
	require.Equal(t, 1, recorder.counts[IntentSubmit+"/failed"])

	// The failed attempt must not consume a number.
	pr, err := svc.SubmitRequisition(context.Background(), submitInput("b2", 1, 100_000))
	require.NoError(t, err)
	require.Equal(t, "PR-0001", pr.Number)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	noItems := submitInput("b1", 1, 1)
	noItems.Items = nil
	_, err := svc.SubmitRequisition(ctx, noItems)
	require.ErrorIs(t, err, ErrValidation)

	zeroQty := submitInput("b1", 0, 10)
	_, err = svc.SubmitRequisition(ctx, zeroQty)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "items[0].quantity", verr.Field)

	_, err = svc.SubmitRequisition(ctx, submitInput("missing", 1, 10))
	require.ErrorIs(t, err, ErrBudgetNotFound)

	unrouted := submitInput("b1", 1, 10)
	unrouted.CategoryID = "c2"
	_, err = svc.SubmitRequisition(ctx, unrouted)
	require.ErrorIs(t, err, ErrNoApprovalRule)

	unknownVendor := submitInput("b1", 1, 10)
	unknownVendor.VendorID = "nope"
	_, err = svc.SubmitRequisition(ctx, unknownVendor)
	require.ErrorIs(t, err, ErrValidation)

	blank := submitInput("b1", 1, 10)
	blank.Items[0].Description = "   "
	_, err = svc.SubmitRequisition(ctx, blank)
	require.ErrorIs(t, err, ErrValidation)

	requireDecimal(t, 0, budgetOf(t, svc, "b1").Committed)

	padded := submitInput("b1", 1, 10)
	padded.Items[0].Description = "  Laptop  "
	pr, err := svc.SubmitRequisition(ctx, padded)
	require.NoError(t, err)
	require.Equal(t, "Laptop", pr.Items[0].Description)
}

func TestRejectInLaterLevelReleasesCommitment(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 600_000))
	require.NoError(t, err)
	require.Equal(t, "rule-large", pr.ApprovalRuleID)
	require.Len(t, pr.ApprovalProgress, 2)
	require.Equal(t, []Candidate{{ID: "dh1", FullName: "Head One"}}, pr.ApprovalProgress[0].Roles[0].Candidates)

	pr, outcome, err := svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 0, RoleIndex: 0, ActorID: "dh1", Decision: DecisionApprove})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.False(t, pr.ApprovalProgress[0].Completed)
	require.Equal(t, PRStatusPendingApproval, pr.Status)

	pr, outcome, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 1, RoleIndex: 0, ActorID: "cfo", Decision: DecisionReject})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.Equal(t, PRStatusRejected, pr.Status)
	require.Equal(t, SlotApproved, pr.ApprovalProgress[0].Roles[0].Status)
	require.Equal(t, SlotPending, pr.ApprovalProgress[0].Roles[1].Status)
	require.Equal(t, SlotRejected, pr.ApprovalProgress[1].Roles[0].Status)
	require.True(t, pr.ApprovalProgress[1].Completed)
	requireDecimal(t, 0, budgetOf(t, svc, "b1").Committed)

	// Further votes on a rejected requisition are ignored.
	_, outcome, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 0, RoleIndex: 1, ActorID: "m1", Decision: DecisionApprove})
	require.NoError(t, err)
	require.False(t, outcome.Applied())
	requireDecimal(t, 0, budgetOf(t, svc, "b1").Committed)
}

func TestDecideIsIdempotent(t *testing.T) {
	svc, snaps, _, recorder := newTestService(t)
	ctx := context.Background()

	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 600_000))
	require.NoError(t, err)
	input := DecisionInput{PRID: pr.ID, LevelIndex: 0, RoleIndex: 0, ActorID: "dh1", Decision: DecisionApprove}

	first, outcome, err := svc.Decide(ctx, input)
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	saves := snaps.saves

	second, outcome, err := svc.Decide(ctx, input)
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, outcome.Status)
	require.NotEmpty(t, outcome.Reason)
	require.Equal(t, len(first.History), len(second.History))
	require.Equal(t, saves, snaps.saves)
	require.Equal(t, 1, recorder.counts[IntentDecide+"/ignored"])
}

func TestDecideErrors(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 100))
	require.NoError(t, err)

	_, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, Decision: DecisionApprove})
	require.ErrorIs(t, err, ErrMissingActor)

	_, _, err = svc.Decide(ctx, DecisionInput{PRID: "PR-9999", ActorID: "m1", Decision: DecisionApprove})
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 3, ActorID: "m1", Decision: DecisionApprove})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, ActorID: "m1", Decision: "maybe"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestNotifiesEachLevel(t *testing.T) {
	svc, _, notifier, _ := newTestService(t)
	ctx := context.Background()
	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 600_000))
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	require.Equal(t, 0, notifier.events[0].LevelIndex)
	require.ElementsMatch(t, []string{"dh1", "m1"}, notifier.events[0].CandidateIDs)
	require.Equal(t, map[string]int{RoleDepartmentHead: 1, RoleLineManager: 1}, notifier.events[0].RoleCandidates)
	require.False(t, notifier.events[0].RequestDate.IsZero())

	for role, actor := range []string{"dh1", "m1"} {
		_, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 0, RoleIndex: role, ActorID: actor, Decision: DecisionApprove})
		require.NoError(t, err)
	}
	require.Len(t, notifier.events, 2)
	require.Equal(t, 1, notifier.events[1].LevelIndex)
	require.Equal(t, []string{"cfo"}, notifier.events[1].CandidateIDs)

	notifier.err = errors.New("queue down")
	pr, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 1, RoleIndex: 0, ActorID: "cfo", Decision: DecisionApprove})
	require.NoError(t, err)
	require.Equal(t, PRStatusApproved, pr.Status)
}

func TestIgnoredLifecycleTransitions(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 100))
	require.NoError(t, err)

	_, outcome, err := svc.IssuePurchaseOrder(ctx, pr.ID, "p1")
	require.NoError(t, err)
	require.False(t, outcome.Applied())

	_, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, ActorID: "m1", Decision: DecisionApprove})
	require.NoError(t, err)
	po, outcome, err := svc.IssuePurchaseOrder(ctx, pr.ID, "p1")
	require.NoError(t, err)
	require.True(t, outcome.Applied())

	_, outcome, err = svc.IssuePurchaseOrder(ctx, pr.ID, "p1")
	require.NoError(t, err)
	require.False(t, outcome.Applied())
	require.Len(t, svc.PurchaseOrders(), 1)

	_, outcome, err = svc.RecordInvoice(ctx, InvoiceInput{POID: po.ID, InvoiceNumber: "X"})
	require.NoError(t, err)
	require.False(t, outcome.Applied())

	_, _, err = svc.RecordGoodsReceipt(ctx, ReceiptInput{POID: po.ID, Reference: "   "})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.RecordGoodsReceipt(ctx, ReceiptInput{POID: "PO-9999", Reference: "DO-1"})
	require.ErrorIs(t, err, ErrNotFound)

	_, outcome, err = svc.RecordGoodsReceipt(ctx, ReceiptInput{POID: po.ID, Reference: "DO-1", ActorID: "w1"})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	_, outcome, err = svc.RecordGoodsReceipt(ctx, ReceiptInput{POID: po.ID, Reference: "DO-2"})
	require.NoError(t, err)
	require.False(t, outcome.Applied())
	b1 := budgetOf(t, svc, "b1")
	requireDecimal(t, 100, b1.Spent)
	requireDecimal(t, 0, b1.Committed)
}

func TestZeroLevelRuleApprovesOnSubmit(t *testing.T) {
	svc, _, notifier, _ := newTestService(t)
	input := submitInput("b1", 1, 100)
	input.CategoryID = "c3"
	pr, err := svc.SubmitRequisition(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, PRStatusApproved, pr.Status)
	require.Empty(t, pr.ApprovalProgress)
	require.Empty(t, notifier.events)
	require.True(t, svc.CanIssuePO(pr.ID))
}

func TestLevelsWithoutRolesDoNotBlockApproval(t *testing.T) {
	store := testStore()
	store.ApprovalMatrix = append([]ApprovalRule{
		{
			ID: "rule-gap", Name: "Gap level", Departments: []string{MatchAll}, Categories: []string{"c1"},
			MinAmount: decimal.Zero,
			Levels: []Level{
				{Type: LevelParallel, Roles: []string{}},
				{Type: LevelSequential, Roles: []string{RoleLineManager}},
			},
		},
		{
			ID: "rule-hollow", Name: "Hollow levels", Departments: []string{MatchAll}, Categories: []string{"c2"},
			MinAmount: decimal.Zero,
			Levels:    []Level{{Type: LevelSequential, Roles: []string{}}},
		},
	}, store.ApprovalMatrix...)
	notifier := &recordingNotifier{}
	svc := NewService(store, &memorySnapshots{}, ServiceConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Notifier: notifier,
		Clock:    steppingClock(testStart),
	})
	ctx := context.Background()

	pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 100))
	require.NoError(t, err)
	require.Equal(t, "rule-gap", pr.ApprovalRuleID)
	require.Equal(t, PRStatusPendingApproval, pr.Status)
	require.Len(t, notifier.events, 1)
	require.Equal(t, 1, notifier.events[0].LevelIndex)

	pr, outcome, err := svc.Decide(ctx, DecisionInput{PRID: pr.ID, LevelIndex: 1, RoleIndex: 0, ActorID: "m1", Decision: DecisionApprove})
	require.NoError(t, err)
	require.True(t, outcome.Applied())
	require.Equal(t, PRStatusApproved, pr.Status)
	require.True(t, svc.CanIssuePO(pr.ID))

	hollow := submitInput("b1", 1, 100)
	hollow.CategoryID = "c2"
	pr, err = svc.SubmitRequisition(ctx, hollow)
	require.NoError(t, err)
	require.Equal(t, PRStatusApproved, pr.Status)
	require.Equal(t, ActionFullyApproved, pr.History[len(pr.History)-1].Action)
	require.Len(t, notifier.events, 1)
}

func TestPersistFailureDiscardsTransition(t *testing.T) {
	svc, snaps, _, _ := newTestService(t)
	snaps.saveErr = errors.New("disk full")

	_, err := svc.SubmitRequisition(context.Background(), submitInput("b1", 1, 100))
	require.Error(t, err)
	require.Empty(t, svc.Requisitions())
	requireDecimal(t, 0, budgetOf(t, svc, "b1").Committed)

	snaps.saveErr = nil
	pr, err := svc.SubmitRequisition(context.Background(), submitInput("b1", 1, 100))
	require.NoError(t, err)
	require.Equal(t, "PR-0001", pr.Number)
}

func TestReadersReturnCopies(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	pr, err := svc.SubmitRequisition(context.Background(), submitInput("b1", 1, 100))
	require.NoError(t, err)

	prs := svc.Requisitions()
	prs[0].Status = PRStatusClosed
	prs[0].ApprovalProgress[0].Roles[0].Status = SlotApproved
	budgets := svc.Budgets()
	budgets[0].Committed = dec(1)

	stored, err := svc.Requisition(pr.ID)
	require.NoError(t, err)
	require.Equal(t, PRStatusPendingApproval, stored.Status)
	require.Equal(t, SlotPending, stored.ApprovalProgress[0].Roles[0].Status)
	requireDecimal(t, 100, budgetOf(t, svc, "b1").Committed)
}

func TestBudgetsNeverNegative(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		pr, err := svc.SubmitRequisition(ctx, submitInput("b1", 1, 100_000))
		require.NoError(t, err)
		decision := DecisionApprove
		if i%2 == 1 {
			decision = DecisionReject
		}
		_, _, err = svc.Decide(ctx, DecisionInput{PRID: pr.ID, ActorID: "m1", Decision: decision})
		require.NoError(t, err)
		for _, b := range svc.Budgets() {
			require.False(t, b.Committed.IsNegative())
			require.False(t, b.Spent.IsNegative())
		}
	}
	requireDecimal(t, 200_000, budgetOf(t, svc, "b1").Committed)
}
