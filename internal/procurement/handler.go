package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/procureflow/internal/platform/httpx"
)

var errorMappings = []httpx.ErrorMapping{
	{Target: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Target: ErrBudgetNotFound, Status: http.StatusUnprocessableEntity, Title: "Budget Not Found"},
	{Target: ErrBudgetExceeded, Status: http.StatusConflict, Title: "Budget Exceeded"},
	{Target: ErrNoApprovalRule, Status: http.StatusUnprocessableEntity, Title: "No Approval Rule"},
	{Target: ErrMissingActor, Status: http.StatusBadRequest, Title: "Actor Required"},
	{Target: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
}

// Handler exposes the lifecycle as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	now     func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/departments", h.listDepartments)
	r.Get("/categories", h.listCategories)
	r.Get("/employees", h.listEmployees)
	r.Get("/approval-rules", h.listRules)
	r.Get("/roles", h.roleDirectory)

	r.Get("/budgets", h.listBudgets)
	r.Post("/budgets", h.createBudget)
	r.Get("/vendors", h.listVendors)
	r.Post("/vendors", h.createVendor)

	r.Route("/requisitions", func(r chi.Router) {
		r.Get("/", h.listRequisitions)
		r.Post("/", h.submitRequisition)
		r.Get("/{id}", h.getRequisition)
		r.Post("/{id}/levels/{level}/roles/{role}/{decision}", h.decide)
		r.Post("/{id}/purchase-order", h.issuePurchaseOrder)
	})

	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", h.listPurchaseOrders)
		r.Get("/{id}", h.getPurchaseOrder)
		r.Post("/{id}/receipts", h.recordReceipt)
		r.Post("/{id}/invoices", h.recordInvoice)
	})

	r.Get("/approvals", h.approvalQueue)
	r.Get("/dashboard", h.dashboard)
	r.Get("/analytics", h.analytics)
	r.Post("/reset", h.reset)
}

type actorRequest struct {
	ActorID string `json:"actorId"`
}

type receiptRequest struct {
	Reference string `json:"reference"`
	ActorID   string `json:"actorId"`
}

type invoiceRequest struct {
	InvoiceNumber string `json:"invoiceNumber"`
	ActorID       string `json:"actorId"`
}

type transitionResponse struct {
	Outcome
	Requisition   *Requisition   `json:"requisition,omitempty"`
	PurchaseOrder *PurchaseOrder `json:"purchaseOrder,omitempty"`
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Departments())
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Categories())
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Employees())
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ApprovalRules())
}

func (h *Handler) roleDirectory(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.RoleDirectory())
}

func (h *Handler) listBudgets(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Budgets())
}

func (h *Handler) createBudget(w http.ResponseWriter, r *http.Request) {
	var input BudgetInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	budget, err := h.service.CreateBudget(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, budget)
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Vendors())
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var input VendorInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	vendor, err := h.service.CreateVendor(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vendor)
}

func (h *Handler) listRequisitions(w http.ResponseWriter, r *http.Request) {
	status := PRStatus(r.URL.Query().Get("status"))
	prs := h.service.Requisitions()
	if status != "" {
		filtered := make([]Requisition, 0, len(prs))
		for _, pr := range prs {
			if pr.Status == status {
				filtered = append(filtered, pr)
			}
		}
		prs = filtered
	}
	httpx.JSON(w, http.StatusOK, prs)
}

func (h *Handler) submitRequisition(w http.ResponseWriter, r *http.Request) {
	var input SubmitInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	pr, err := h.service.SubmitRequisition(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pr)
}

func (h *Handler) getRequisition(w http.ResponseWriter, r *http.Request) {
	pr, err := h.service.Requisition(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		h.fail(w, r, invalid("level", "must be an integer"))
		return
	}
	role, err := strconv.Atoi(chi.URLParam(r, "role"))
	if err != nil {
		h.fail(w, r, invalid("role", "must be an integer"))
		return
	}
	var body actorRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	pr, outcome, err := h.service.Decide(r.Context(), DecisionInput{
		PRID:       chi.URLParam(r, "id"),
		LevelIndex: level,
		RoleIndex:  role,
		ActorID:    body.ActorID,
		Decision:   Decision(chi.URLParam(r, "decision")),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, transitionResponse{Outcome: outcome, Requisition: &pr})
}

func (h *Handler) issuePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var body actorRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	po, outcome, err := h.service.IssuePurchaseOrder(r.Context(), chi.URLParam(r, "id"), body.ActorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeTransition(w, outcome, po)
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.PurchaseOrders())
}

func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.PurchaseOrder(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) recordReceipt(w http.ResponseWriter, r *http.Request) {
	var body receiptRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	po, outcome, err := h.service.RecordGoodsReceipt(r.Context(), ReceiptInput{
		POID:      chi.URLParam(r, "id"),
		Reference: body.Reference,
		ActorID:   body.ActorID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeTransition(w, outcome, po)
}

func (h *Handler) recordInvoice(w http.ResponseWriter, r *http.Request) {
	var body invoiceRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	po, outcome, err := h.service.RecordInvoice(r.Context(), InvoiceInput{
		POID:          chi.URLParam(r, "id"),
		InvoiceNumber: body.InvoiceNumber,
		ActorID:       body.ActorID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeTransition(w, outcome, po)
}

func (h *Handler) approvalQueue(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ApprovalQueue())
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Dashboard(h.now()))
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Analytics())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeTransition(w http.ResponseWriter, outcome Outcome, po PurchaseOrder) {
	resp := transitionResponse{Outcome: outcome}
	if outcome.Applied() {
		resp.PurchaseOrder = &po
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var exceeded *BudgetExceededError
	switch {
	case errors.As(err, &exceeded):
		h.logger.Info("budget exceeded", slog.String("budget", exceeded.BudgetID), slog.String("path", r.URL.Path))
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrMissingActor),
		errors.Is(err, httpx.ErrValidation), errors.Is(err, ErrNoApprovalRule):
	default:
		h.logger.Error("procurement request failed", slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err, errorMappings...)
}
