package procurement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	urgentWindow     = 72 * time.Hour
	dashboardPending = 3
	dashboardUrgent  = 2
	dashboardOpenPOs = 3
	analyticsTop     = 3
)

// PendingApproval summarizes a requisition waiting on its current level.
type PendingApproval struct {
	PRID         string          `json:"prId"`
	Number       string          `json:"number"`
	RequestorID  string          `json:"requestorId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	LevelIndex   int             `json:"levelIndex"`
	PendingRoles []string        `json:"pendingRoles"`
	NeededBy     time.Time       `json:"neededBy"`
}

// Dashboard aggregates budget totals and the items needing attention.
type Dashboard struct {
	TotalAllocation  decimal.Decimal   `json:"totalAllocation"`
	TotalCommitted   decimal.Decimal   `json:"totalCommitted"`
	TotalSpent       decimal.Decimal   `json:"totalSpent"`
	AverageRating    *float64          `json:"averageVendorRating"`
	PendingApprovals []PendingApproval `json:"pendingApprovals"`
	UrgentRequests   []PendingApproval `json:"urgentRequests"`
	OpenOrders       []PurchaseOrder   `json:"openPurchaseOrders"`
}

// BudgetUsage is a budget ranked by realized spend.
type BudgetUsage struct {
	BudgetID   string          `json:"budgetId"`
	Name       string          `json:"name"`
	Spent      decimal.Decimal `json:"spent"`
	Allocation decimal.Decimal `json:"allocation"`
	Percent    decimal.Decimal `json:"percentOfAllocation"`
}

// VendorCoverage counts vendors serving a category.
type VendorCoverage struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Vendors    int    `json:"vendors"`
}

// Analytics reports spend ranking, approval lead time and vendor coverage.
type Analytics struct {
	TopBudgets           []BudgetUsage    `json:"topBudgets"`
	AverageApprovalHours *float64         `json:"averageApprovalHours"`
	VendorCoverage       []VendorCoverage `json:"vendorCoverage"`
}

// Dashboard builds the overview as of now.
func (s *Service) Dashboard(now time.Time) Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return buildDashboard(s.store, now)
}

// Analytics builds the spend and approval report.
func (s *Service) Analytics() Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return buildAnalytics(s.store)
}

// ApprovalQueue lists every requisition awaiting approval in submission order.
func (s *Service) ApprovalQueue() []PendingApproval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pendingApprovals(s.store)
}

// RoleDirectory maps each role to the names of the employees holding it.
func (s *Service) RoleDirectory() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir := make(map[string][]string)
	for _, e := range s.store.Employees {
		for _, role := range e.Roles {
			dir[role] = append(dir[role], e.FullName)
		}
	}
	return dir
}

// CanIssuePO reports whether a purchase order may be issued for the requisition.
func (s *Service) CanIssuePO(prID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pr := s.store.Requisition(prID)
	return pr != nil && pr.Status == PRStatusApproved && s.store.PurchaseOrderForPR(pr.ID) == nil
}

// UrgentRequisitions lists requisitions awaiting approval that are needed
// before now plus the urgent window, in submission order.
func UrgentRequisitions(s *Store, now time.Time) []PendingApproval {
	deadline := now.Add(urgentWindow)
	out := []PendingApproval{}
	for _, p := range pendingApprovals(s) {
		if !p.NeededBy.IsZero() && p.NeededBy.Before(deadline) {
			out = append(out, p)
		}
	}
	return out
}

func pendingApprovals(s *Store) []PendingApproval {
	out := []PendingApproval{}
	for _, pr := range s.Requisitions {
		if pr.Status != PRStatusPendingApproval {
			continue
		}
		item := PendingApproval{
			PRID:        pr.ID,
			Number:      pr.Number,
			RequestorID: pr.RequestorID,
			TotalAmount: pr.TotalAmount,
			LevelIndex:  -1,
			NeededBy:    pr.NeededBy,
		}
		if level := CurrentLevel(pr); level != nil {
			item.LevelIndex = level.Index
			item.PendingRoles = PendingRoles(*level)
		}
		out = append(out, item)
	}
	return out
}

func buildDashboard(s *Store, now time.Time) Dashboard {
	d := Dashboard{
		TotalAllocation: decimal.Zero,
		TotalCommitted:  decimal.Zero,
		TotalSpent:      decimal.Zero,
		OpenOrders:      []PurchaseOrder{},
	}
	for _, b := range s.Budgets {
		d.TotalAllocation = d.TotalAllocation.Add(b.Allocation)
		d.TotalCommitted = d.TotalCommitted.Add(b.Committed)
		d.TotalSpent = d.TotalSpent.Add(b.Spent)
	}
	if len(s.Vendors) > 0 {
		var sum float64
		for _, v := range s.Vendors {
			rating := v.Rating
			if rating == 0 {
				rating = DefaultVendorRating
			}
			sum += rating
		}
		avg := sum / float64(len(s.Vendors))
		d.AverageRating = &avg
	}

	pending := pendingApprovals(s)
	d.PendingApprovals = pending[:min(len(pending), dashboardPending)]
	urgent := UrgentRequisitions(s, now)
	d.UrgentRequests = urgent[:min(len(urgent), dashboardUrgent)]
	for _, po := range s.PurchaseOrders {
		if len(d.OpenOrders) == dashboardOpenPOs {
			break
		}
		if po.Status != POStatusClosed {
			d.OpenOrders = append(d.OpenOrders, po.clone())
		}
	}
	return d
}

func buildAnalytics(s *Store) Analytics {
	a := Analytics{TopBudgets: []BudgetUsage{}, VendorCoverage: []VendorCoverage{}}

	budgets := cloneSlice(s.Budgets)
	sort.SliceStable(budgets, func(i, j int) bool { return budgets[i].Spent.GreaterThan(budgets[j].Spent) })
	for i := 0; i < len(budgets) && i < analyticsTop; i++ {
		b := budgets[i]
		percent := decimal.Zero
		if b.Allocation.IsPositive() {
			percent = b.Spent.Div(b.Allocation).Mul(decimal.NewFromInt(100)).Round(1)
		}
		a.TopBudgets = append(a.TopBudgets, BudgetUsage{
			BudgetID:   b.ID,
			Name:       b.Name,
			Spent:      b.Spent,
			Allocation: b.Allocation,
			Percent:    percent,
		})
	}

	var total float64
	var count int
	for _, pr := range s.Requisitions {
		submitted, ok := firstEntry(pr.History, ActionSubmitted)
		if !ok {
			continue
		}
		approved, ok := firstEntry(pr.History, ActionFullyApproved)
		if !ok {
			continue
		}
		total += approved.Timestamp.Sub(submitted.Timestamp).Hours()
		count++
	}
	if count > 0 {
		avg := total / float64(count)
		a.AverageApprovalHours = &avg
	}

	for _, c := range s.Categories {
		n := 0
		for _, v := range s.Vendors {
			for _, id := range v.Categories {
				if id == c.ID {
					n++
					break
				}
			}
		}
		a.VendorCoverage = append(a.VendorCoverage, VendorCoverage{CategoryID: c.ID, Name: c.Name, Vendors: n})
	}
	return a
}

func firstEntry(history []AuditEntry, action string) (AuditEntry, bool) {
	for _, h := range history {
		if h.Action == action {
			return h, true
		}
	}
	return AuditEntry{}, false
}
