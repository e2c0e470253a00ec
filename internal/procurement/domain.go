package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// PRStatus tracks the requisition lifecycle.
type PRStatus string

const (
	PRStatusPendingApproval PRStatus = "Pending Approval"
	PRStatusApproved        PRStatus = "Approved"
	PRStatusRejected        PRStatus = "Rejected"
	PRStatusPOIssued        PRStatus = "PO Issued"
	PRStatusReceived        PRStatus = "Received"
	PRStatusClosed          PRStatus = "Closed"
)

// POStatus tracks the purchase order lifecycle.
type POStatus string

const (
	POStatusIssued   POStatus = "Issued"
	POStatusReceived POStatus = "Received"
	POStatusClosed   POStatus = "Closed"
)

// LevelType is informational ordering metadata for a level; completion rules do not depend on it.
type LevelType string

const (
	LevelParallel   LevelType = "parallel"
	LevelSequential LevelType = "sequential"
)

// SlotStatus is the decision state of a role slot.
type SlotStatus string

const (
	SlotPending  SlotStatus = "pending"
	SlotApproved SlotStatus = "approved"
	SlotRejected SlotStatus = "rejected"
)

// MatchAll matches any department or category in an approval rule.
const MatchAll = "ALL"

// Well known role names used by routing and default actors.
const (
	RoleRequester       = "Requester"
	RoleLineManager     = "Line Manager"
	RoleDepartmentHead  = "Department Head"
	RoleProcurementLead = "Procurement Lead"
	RoleWarehouseLead   = "Warehouse Lead"
	RoleFinanceAP       = "Finance AP"
)

// Department is an organisational unit.
type Department struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// Category classifies spend.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Vendor supplies goods or services.
type Vendor struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone,omitempty"`
	ContactPerson string   `json:"contactPerson,omitempty"`
	Address       string   `json:"address,omitempty"`
	Rating        float64  `json:"rating"`
	Categories    []string `json:"categories"`
}

// Budget holds an allocation and its commitment/spend figures.
type Budget struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	DepartmentID string          `json:"departmentId"`
	CategoryID   string          `json:"categoryId"`
	Allocation   decimal.Decimal `json:"allocation"`
	Committed    decimal.Decimal `json:"committed"`
	Spent        decimal.Decimal `json:"spent"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	ParentID     string          `json:"parentId,omitempty"`
	Description  string          `json:"description,omitempty"`
}

// Employee is a requestor or approver.
type Employee struct {
	ID           string   `json:"id"`
	FullName     string   `json:"fullName"`
	Roles        []string `json:"roles"`
	DepartmentID string   `json:"departmentId"`
	ManagerID    string   `json:"managerId,omitempty"`
}

// HasRole reports whether the employee holds role.
func (e Employee) HasRole(role string) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Level is one stage of an approval rule.
type Level struct {
	Type  LevelType `json:"type"`
	Roles []string  `json:"roles"`
}

// ApprovalRule maps department/category/amount ranges to approval levels.
type ApprovalRule struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Departments []string         `json:"departments"`
	Categories  []string         `json:"categories"`
	MinAmount   decimal.Decimal  `json:"minAmount"`
	MaxAmount   *decimal.Decimal `json:"maxAmount"`
	Levels      []Level          `json:"levels"`
}

// Item is a requested line.
type Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Candidate is an approver captured when the plan was built.
type Candidate struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// RoleSlot is a single role decision inside a level.
type RoleSlot struct {
	Role       string      `json:"role"`
	Candidates []Candidate `json:"candidates"`
	Status     SlotStatus  `json:"status"`
	ActorID    string      `json:"actorId,omitempty"`
	DecidedAt  *time.Time  `json:"decidedAt,omitempty"`
}

// LevelProgress is the runtime state of one approval level.
type LevelProgress struct {
	Index     int        `json:"index"`
	Type      LevelType  `json:"type"`
	Roles     []RoleSlot `json:"roles"`
	Completed bool       `json:"completed"`
}

// AuditEntry is an append-only history record.
type AuditEntry struct {
	Action    string    `json:"action"`
	ActorID   string    `json:"actorId,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Requisition is a purchase request routed for approval.
type Requisition struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	RequestorID      string          `json:"requestorId"`
	DepartmentID     string          `json:"departmentId"`
	CategoryID       string          `json:"categoryId"`
	VendorID         string          `json:"vendorId"`
	BudgetID         string          `json:"budgetId"`
	Items            []Item          `json:"items"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Justification    string          `json:"justification"`
	NeededBy         time.Time       `json:"neededBy"`
	RequestDate      time.Time       `json:"requestDate"`
	Status           PRStatus        `json:"status"`
	ApprovalRuleID   string          `json:"approvalRuleId"`
	ApprovalProgress []LevelProgress `json:"approvalProgress"`
	History          []AuditEntry    `json:"history"`
}

// GoodsReceipt records a whole-PO receipt.
type GoodsReceipt struct {
	ID          string    `json:"id"`
	POID        string    `json:"poId"`
	Reference   string    `json:"reference"`
	ReceivedBy  string    `json:"receivedBy,omitempty"`
	ReceiptDate time.Time `json:"receiptDate"`
}

// Invoice records the vendor invoice for a PO.
type Invoice struct {
	ID            string          `json:"id"`
	POID          string          `json:"poId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	Amount        decimal.Decimal `json:"amount"`
	ProcessedBy   string          `json:"processedBy,omitempty"`
}

// PurchaseOrder is issued from a fully approved requisition.
type PurchaseOrder struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	PRID        string          `json:"prId"`
	VendorID    string          `json:"vendorId"`
	OrderDate   time.Time       `json:"orderDate"`
	Status      POStatus        `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []Item          `json:"items"`
	Receipts    []GoodsReceipt  `json:"receipts"`
	Invoices    []Invoice       `json:"invoices"`
	History     []AuditEntry    `json:"history"`
}

// OutcomeStatus distinguishes applied transitions from ignored ones.
type OutcomeStatus string

const (
	OutcomeApplied OutcomeStatus = "applied"
	OutcomeIgnored OutcomeStatus = "ignored"
)

// Outcome reports what a transition did.
type Outcome struct {
	Status OutcomeStatus `json:"outcome"`
	Reason string        `json:"reason,omitempty"`
}

// Applied reports whether the transition mutated state.
func (o Outcome) Applied() bool { return o.Status == OutcomeApplied }

func applied() Outcome { return Outcome{Status: OutcomeApplied} }

func ignored(reason string) Outcome { return Outcome{Status: OutcomeIgnored, Reason: reason} }
