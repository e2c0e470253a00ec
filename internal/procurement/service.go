package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Intent names reported to the Recorder.
const (
	IntentSubmit       = "submit"
	IntentDecide       = "decide"
	IntentIssuePO      = "issue_po"
	IntentReceiveGoods = "receive_goods"
	IntentInvoice      = "invoice"
	IntentCreateBudget = "create_budget"
	IntentCreateVendor = "create_vendor"
	IntentReset        = "reset"
)

// OutcomeFailed is only reported to the Recorder; callers receive the error instead.
const OutcomeFailed OutcomeStatus = "failed"

// ServiceConfig collects optional collaborators.
type ServiceConfig struct {
	Logger   *slog.Logger
	Notifier Notifier
	Recorder Recorder
	Clock    func() time.Time
	// Fallback is the dataset restored by Reset. Defaults to DefaultDataset.
	Fallback *Store
}

// Service orchestrates the requisition to invoice lifecycle. Intents are
// serialized and applied to a copy of the store which replaces the live
// store only after the snapshot has been persisted.
type Service struct {
	mu        sync.RWMutex
	store     *Store
	snapshots SnapshotStore
	ledger    Ledger
	plans     *PlanBuilder
	validate  *validator.Validate
	logger    *slog.Logger
	notifier  Notifier
	recorder  Recorder
	now       func() time.Time
	fallback  *Store
}

// NewService constructs the orchestrator around store.
func NewService(store *Store, snapshots SnapshotStore, cfg ServiceConfig) *Service {
	if store == nil {
		store = DefaultDataset()
	}
	store.Normalize()
	svc := &Service{
		store:     store,
		snapshots: snapshots,
		plans:     NewPlanBuilder(),
		validate:  validator.New(),
		logger:    cfg.Logger,
		notifier:  cfg.Notifier,
		recorder:  cfg.Recorder,
		now:       cfg.Clock,
		fallback:  cfg.Fallback,
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.fallback == nil {
		svc.fallback = DefaultDataset()
	}
	return svc
}

// Plans exposes the plan builder so callers can register role strategies.
func (s *Service) Plans() *PlanBuilder { return s.plans }

// ItemInput describes a requested line.
type ItemInput struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// SubmitInput describes a new requisition.
type SubmitInput struct {
	RequestorID   string      `json:"requestorId" validate:"required"`
	DepartmentID  string      `json:"departmentId" validate:"required"`
	CategoryID    string      `json:"categoryId" validate:"required"`
	VendorID      string      `json:"vendorId" validate:"required"`
	BudgetID      string      `json:"budgetId"`
	Justification string      `json:"justification"`
	NeededBy      time.Time   `json:"neededBy"`
	Items         []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// DecisionInput identifies the slot being decided.
type DecisionInput struct {
	PRID       string
	LevelIndex int
	RoleIndex  int
	ActorID    string
	Decision   Decision
}

// ReceiptInput records the goods receipt for a PO.
type ReceiptInput struct {
	POID      string `json:"poId" validate:"required"`
	Reference string `json:"reference" validate:"required"`
	ActorID   string `json:"actorId"`
}

// InvoiceInput records the vendor invoice for a PO.
type InvoiceInput struct {
	POID          string `json:"poId" validate:"required"`
	InvoiceNumber string `json:"invoiceNumber" validate:"required"`
	ActorID       string `json:"actorId"`
}

// SubmitRequisition validates, routes and commits a new requisition.
func (s *Service) SubmitRequisition(ctx context.Context, input SubmitInput) (Requisition, error) {
	input.Items = cloneSlice(input.Items)
	for i := range input.Items {
		input.Items[i].Description = strings.TrimSpace(input.Items[i].Description)
	}
	if err := s.check(input); err != nil {
		return Requisition{}, err
	}
	built, total, err := buildItems(input.Items)
	if err != nil {
		return Requisition{}, err
	}

	var created Requisition
	var events []ApprovalRequestedEvent
	_, err = s.withTx(ctx, IntentSubmit, func(tx *Store) (Outcome, error) {
		budget := tx.Budget(input.BudgetID)
		if budget == nil {
			return Outcome{}, ErrBudgetNotFound
		}
		if tx.Employee(input.RequestorID) == nil {
			return Outcome{}, invalid("requestorId", "unknown employee")
		}
		if tx.Department(input.DepartmentID) == nil {
			return Outcome{}, invalid("departmentId", "unknown department")
		}
		if tx.Category(input.CategoryID) == nil {
			return Outcome{}, invalid("categoryId", "unknown category")
		}
		vendor := tx.Vendor(input.VendorID)
		if vendor == nil {
			return Outcome{}, invalid("vendorId", "unknown vendor")
		}
		if available := s.ledger.Available(*budget); total.GreaterThan(available) {
			return Outcome{}, &BudgetExceededError{BudgetID: budget.ID, Available: available, Requested: total}
		}
		draft := RuleDraft{
			RequestorID:  input.RequestorID,
			DepartmentID: input.DepartmentID,
			CategoryID:   input.CategoryID,
			TotalAmount:  total,
		}
		rule, err := ResolveRule(tx.ApprovalMatrix, draft)
		if err != nil {
			return Outcome{}, err
		}

		now := s.now()
		number := nextNumber(tx, SeqPR)
		pr := Requisition{
			ID:               number,
			Number:           number,
			RequestorID:      input.RequestorID,
			DepartmentID:     input.DepartmentID,
			CategoryID:       input.CategoryID,
			VendorID:         input.VendorID,
			BudgetID:         input.BudgetID,
			Items:            built,
			TotalAmount:      total,
			Justification:    input.Justification,
			NeededBy:         input.NeededBy,
			RequestDate:      now,
			Status:           PRStatusPendingApproval,
			ApprovalRuleID:   rule.ID,
			ApprovalProgress: s.plans.Build(rule, draft, tx.Employees),
		}
		notes := fmt.Sprintf("Total %s to %s (%s)", FormatAmount(total), vendor.Name, rule.Name)
		pr.History = appendHistory(pr.History, ActionSubmitted, input.RequestorID, notes, now)
		if allLevelsCompleted(pr.ApprovalProgress) {
			note := "Rule has no approval levels."
			if len(pr.ApprovalProgress) > 0 {
				note = "Rule levels have no approver roles."
			}
			pr.Status = PRStatusApproved
			pr.History = appendHistory(pr.History, ActionFullyApproved, input.RequestorID, note, now)
		}
		tx.Requisitions = append(tx.Requisitions, pr)
		s.ledger.Commit(budget, total)

		if level := CurrentLevel(pr); level != nil {
			events = append(events, approvalRequested(pr, *level))
		}
		created = pr.clone()
		return applied(), nil
	})
	if err != nil {
		return Requisition{}, err
	}
	s.logger.Info("requisition submitted",
		slog.String("pr", created.Number),
		slog.String("total", created.TotalAmount.String()),
		slog.String("rule", created.ApprovalRuleID))
	s.notify(ctx, events)
	return created, nil
}

// Decide applies an approve or reject vote. Votes on decided slots are ignored.
func (s *Service) Decide(ctx context.Context, input DecisionInput) (Requisition, Outcome, error) {
	if strings.TrimSpace(input.ActorID) == "" {
		return Requisition{}, Outcome{}, ErrMissingActor
	}
	var result Requisition
	var events []ApprovalRequestedEvent
	outcome, err := s.withTx(ctx, IntentDecide, func(tx *Store) (Outcome, error) {
		pr := tx.Requisition(input.PRID)
		if pr == nil {
			return Outcome{}, fmt.Errorf("requisition %s: %w", input.PRID, ErrNotFound)
		}
		t, err := Decide(pr, input.LevelIndex, input.RoleIndex, input.ActorID, input.Decision, s.now())
		if err != nil {
			return Outcome{}, err
		}
		if t.Rejected {
			s.ledger.Release(tx.Budget(pr.BudgetID), pr.TotalAmount)
		}
		if t.LevelCompleted && !t.Approved {
			if next := CurrentLevel(*pr); next != nil {
				events = append(events, approvalRequested(*pr, *next))
			}
		}
		result = pr.clone()
		return t.Outcome, nil
	})
	if err != nil {
		return Requisition{}, Outcome{}, err
	}
	if !outcome.Applied() {
		s.logger.Debug("decision ignored", slog.String("pr", input.PRID), slog.String("reason", outcome.Reason))
		return result, outcome, nil
	}
	s.logger.Info("approval decision recorded",
		slog.String("pr", result.Number),
		slog.String("decision", string(input.Decision)),
		slog.String("actor", input.ActorID),
		slog.String("status", string(result.Status)))
	s.notify(ctx, events)
	return result, outcome, nil
}

// IssuePurchaseOrder converts an approved requisition into a PO. The actor
// defaults to the first Procurement Lead.
func (s *Service) IssuePurchaseOrder(ctx context.Context, prID, actorID string) (PurchaseOrder, Outcome, error) {
	var created PurchaseOrder
	outcome, err := s.withTx(ctx, IntentIssuePO, func(tx *Store) (Outcome, error) {
		pr := tx.Requisition(prID)
		if pr == nil {
			return Outcome{}, fmt.Errorf("requisition %s: %w", prID, ErrNotFound)
		}
		if pr.Status != PRStatusApproved {
			return ignored(fmt.Sprintf("requisition is %s", pr.Status)), nil
		}
		if existing := tx.PurchaseOrderForPR(pr.ID); existing != nil {
			return ignored(fmt.Sprintf("purchase order %s already issued", existing.Number)), nil
		}
		actorID = defaultActor(tx, actorID, RoleProcurementLead)
		now := s.now()
		number := nextNumber(tx, SeqPO)
		po := PurchaseOrder{
			ID:          number,
			Number:      number,
			PRID:        pr.ID,
			VendorID:    pr.VendorID,
			OrderDate:   now,
			Status:      POStatusIssued,
			TotalAmount: pr.TotalAmount,
			Items:       append([]Item(nil), pr.Items...),
			Receipts:    []GoodsReceipt{},
			Invoices:    []Invoice{},
		}
		po.History = appendHistory(po.History, ActionPOCreated, actorID, "Converted from "+pr.Number, now)
		pr.Status = PRStatusPOIssued
		pr.History = appendHistory(pr.History, ActionPOIssued, actorID, po.Number, now)
		tx.PurchaseOrders = append(tx.PurchaseOrders, po)
		created = po.clone()
		return applied(), nil
	})
	if err != nil {
		return PurchaseOrder{}, Outcome{}, err
	}
	if outcome.Applied() {
		s.logger.Info("purchase order issued", slog.String("po", created.Number), slog.String("pr", prID))
	}
	return created, outcome, nil
}

// RecordGoodsReceipt receives a whole PO and realizes its spend. The actor
// defaults to the first Warehouse Lead.
func (s *Service) RecordGoodsReceipt(ctx context.Context, input ReceiptInput) (PurchaseOrder, Outcome, error) {
	input.Reference = strings.TrimSpace(input.Reference)
	if err := s.check(input); err != nil {
		return PurchaseOrder{}, Outcome{}, err
	}
	var result PurchaseOrder
	outcome, err := s.withTx(ctx, IntentReceiveGoods, func(tx *Store) (Outcome, error) {
		po := tx.PurchaseOrder(input.POID)
		if po == nil {
			return Outcome{}, fmt.Errorf("purchase order %s: %w", input.POID, ErrNotFound)
		}
		if po.Status != POStatusIssued {
			return ignored(fmt.Sprintf("purchase order is %s", po.Status)), nil
		}
		actorID := defaultActor(tx, input.ActorID, RoleWarehouseLead)
		now := s.now()
		po.Receipts = append(po.Receipts, GoodsReceipt{
			ID:          nextNumber(tx, SeqGR),
			POID:        po.ID,
			Reference:   input.Reference,
			ReceivedBy:  actorID,
			ReceiptDate: now,
		})
		po.Status = POStatusReceived
		po.History = appendHistory(po.History, ActionGoodsReceived, actorID, input.Reference, now)
		if pr := tx.Requisition(po.PRID); pr != nil {
			pr.Status = PRStatusReceived
			pr.History = appendHistory(pr.History, ActionGoodsReceipt, actorID, input.Reference, now)
			s.ledger.Realize(tx.Budget(pr.BudgetID), pr.TotalAmount)
		}
		result = po.clone()
		return applied(), nil
	})
	if err != nil {
		return PurchaseOrder{}, Outcome{}, err
	}
	if outcome.Applied() {
		s.logger.Info("goods received", slog.String("po", result.Number), slog.String("reference", input.Reference))
	}
	return result, outcome, nil
}

// RecordInvoice closes a received PO. The actor defaults to the first Finance AP.
func (s *Service) RecordInvoice(ctx context.Context, input InvoiceInput) (PurchaseOrder, Outcome, error) {
	input.InvoiceNumber = strings.TrimSpace(input.InvoiceNumber)
	if err := s.check(input); err != nil {
		return PurchaseOrder{}, Outcome{}, err
	}
	var result PurchaseOrder
	outcome, err := s.withTx(ctx, IntentInvoice, func(tx *Store) (Outcome, error) {
		po := tx.PurchaseOrder(input.POID)
		if po == nil {
			return Outcome{}, fmt.Errorf("purchase order %s: %w", input.POID, ErrNotFound)
		}
		if po.Status != POStatusReceived {
			return ignored(fmt.Sprintf("purchase order is %s", po.Status)), nil
		}
		actorID := defaultActor(tx, input.ActorID, RoleFinanceAP)
		now := s.now()
		po.Invoices = append(po.Invoices, Invoice{
			ID:            nextNumber(tx, SeqINV),
			POID:          po.ID,
			InvoiceNumber: input.InvoiceNumber,
			InvoiceDate:   now,
			Amount:        po.TotalAmount,
			ProcessedBy:   actorID,
		})
		po.Status = POStatusClosed
		po.History = appendHistory(po.History, ActionInvoiceValidated, actorID, input.InvoiceNumber, now)
		if pr := tx.Requisition(po.PRID); pr != nil {
			pr.Status = PRStatusClosed
			pr.History = appendHistory(pr.History, ActionPaymentScheduled, actorID, input.InvoiceNumber, now)
		}
		result = po.clone()
		return applied(), nil
	})
	if err != nil {
		return PurchaseOrder{}, Outcome{}, err
	}
	if outcome.Applied() {
		s.logger.Info("invoice recorded", slog.String("po", result.Number), slog.String("invoice", input.InvoiceNumber))
	}
	return result, outcome, nil
}

// withTx runs fn against a copy of the store and swaps it in once persisted.
// Ignored and failed intents leave the live store untouched.
func (s *Service) withTx(ctx context.Context, intent string, fn func(tx *Store) (Outcome, error)) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.store.Clone()
	outcome, err := fn(tx)
	if err != nil {
		s.record(intent, OutcomeFailed)
		return Outcome{}, err
	}
	if !outcome.Applied() {
		s.record(intent, OutcomeIgnored)
		return outcome, nil
	}
	if err := s.persist(ctx, tx); err != nil {
		s.record(intent, OutcomeFailed)
		return Outcome{}, err
	}
	s.store = tx
	s.record(intent, OutcomeApplied)
	return outcome, nil
}

func (s *Service) persist(ctx context.Context, tx *Store) error {
	if s.snapshots == nil {
		return nil
	}
	payload, err := EncodeSnapshot(tx)
	if err != nil {
		return err
	}
	if err := s.snapshots.Save(ctx, payload); err != nil {
		s.logger.Error("persist snapshot", slog.Any("error", err))
		return fmt.Errorf("procurement: persist snapshot: %w", err)
	}
	return nil
}

func (s *Service) record(intent string, outcome OutcomeStatus) {
	if s.recorder != nil {
		s.recorder.RecordTransition(intent, outcome)
	}
}

func (s *Service) notify(ctx context.Context, events []ApprovalRequestedEvent) {
	if s.notifier == nil {
		return
	}
	for _, evt := range events {
		if err := s.notifier.NotifyApprovalRequested(ctx, evt); err != nil {
			s.logger.Warn("notify approvers", slog.String("pr", evt.Number), slog.Any("error", err))
		}
	}
}

// check runs struct validation and converts the first failure.
func (s *Service) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return invalid(fe.Namespace(), fmt.Sprintf("failed %s", fe.Tag()))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func buildItems(inputs []ItemInput) ([]Item, decimal.Decimal, error) {
	items := make([]Item, 0, len(inputs))
	total := decimal.Zero
	for i, in := range inputs {
		if !in.Quantity.IsPositive() {
			return nil, decimal.Zero, invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
		if !in.UnitPrice.IsPositive() {
			return nil, decimal.Zero, invalid(fmt.Sprintf("items[%d].unitPrice", i), "must be greater than zero")
		}
		lineTotal := in.Quantity.Mul(in.UnitPrice)
		items = append(items, Item{
			ID:          "item-" + uuid.NewString(),
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Total:       lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

func defaultActor(s *Store, actorID, role string) string {
	if actorID != "" {
		return actorID
	}
	if e := s.FirstWithRole(role); e != nil {
		return e.ID
	}
	return ""
}
