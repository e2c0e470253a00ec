package procurement

import "time"

// Sequence prefixes for human readable identifiers.
const (
	SeqPR  = "PR"
	SeqPO  = "PO"
	SeqGR  = "GR"
	SeqINV = "INV"
)

// Store holds every procurement collection plus the id counters.
// Relations between entities are ids; lookups return pointers into the
// store's own slices so only the owning component mutates them.
type Store struct {
	Departments    []Department    `json:"departments"`
	Categories     []Category      `json:"categories"`
	Employees      []Employee      `json:"employees"`
	Vendors        []Vendor        `json:"vendors"`
	Budgets        []Budget        `json:"budgets"`
	ApprovalMatrix []ApprovalRule  `json:"approvalMatrix"`
	Requisitions   []Requisition   `json:"requisitions"`
	PurchaseOrders []PurchaseOrder `json:"purchaseOrders"`
	Counters       map[string]int  `json:"counters"`
}

// Normalize fills missing collections and counter defaults.
func (s *Store) Normalize() {
	if s.Departments == nil {
		s.Departments = []Department{}
	}
	if s.Categories == nil {
		s.Categories = []Category{}
	}
	if s.Employees == nil {
		s.Employees = []Employee{}
	}
	if s.Vendors == nil {
		s.Vendors = []Vendor{}
	}
	if s.Budgets == nil {
		s.Budgets = []Budget{}
	}
	if s.ApprovalMatrix == nil {
		s.ApprovalMatrix = []ApprovalRule{}
	}
	if s.Requisitions == nil {
		s.Requisitions = []Requisition{}
	}
	if s.PurchaseOrders == nil {
		s.PurchaseOrders = []PurchaseOrder{}
	}
	if s.Counters == nil {
		s.Counters = make(map[string]int)
	}
	for _, prefix := range []string{SeqPR, SeqPO, SeqGR, SeqINV} {
		if s.Counters[prefix] < 1 {
			s.Counters[prefix] = 1
		}
	}
}

// Budget returns the budget with id.
func (s *Store) Budget(id string) *Budget {
	for i := range s.Budgets {
		if s.Budgets[i].ID == id {
			return &s.Budgets[i]
		}
	}
	return nil
}

// Employee returns the employee with id.
func (s *Store) Employee(id string) *Employee {
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			return &s.Employees[i]
		}
	}
	return nil
}

// FirstWithRole returns the first employee holding role in declaration order.
func (s *Store) FirstWithRole(role string) *Employee {
	for i := range s.Employees {
		if s.Employees[i].HasRole(role) {
			return &s.Employees[i]
		}
	}
	return nil
}

// Vendor returns the vendor with id.
func (s *Store) Vendor(id string) *Vendor {
	for i := range s.Vendors {
		if s.Vendors[i].ID == id {
			return &s.Vendors[i]
		}
	}
	return nil
}

// Department returns the department with id.
func (s *Store) Department(id string) *Department {
	for i := range s.Departments {
		if s.Departments[i].ID == id {
			return &s.Departments[i]
		}
	}
	return nil
}

// Category returns the category with id.
func (s *Store) Category(id string) *Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

// Rule returns the approval rule with id.
func (s *Store) Rule(id string) *ApprovalRule {
	for i := range s.ApprovalMatrix {
		if s.ApprovalMatrix[i].ID == id {
			return &s.ApprovalMatrix[i]
		}
	}
	return nil
}

// Requisition returns the requisition with id.
func (s *Store) Requisition(id string) *Requisition {
	for i := range s.Requisitions {
		if s.Requisitions[i].ID == id {
			return &s.Requisitions[i]
		}
	}
	return nil
}

// PurchaseOrder returns the purchase order with id.
func (s *Store) PurchaseOrder(id string) *PurchaseOrder {
	for i := range s.PurchaseOrders {
		if s.PurchaseOrders[i].ID == id {
			return &s.PurchaseOrders[i]
		}
	}
	return nil
}

// PurchaseOrderForPR returns the purchase order issued from prID.
func (s *Store) PurchaseOrderForPR(prID string) *PurchaseOrder {
	for i := range s.PurchaseOrders {
		if s.PurchaseOrders[i].PRID == prID {
			return &s.PurchaseOrders[i]
		}
	}
	return nil
}

// Clone returns a deep copy sharing no slices, maps or pointers with s.
func (s *Store) Clone() *Store {
	out := &Store{
		Departments:    append([]Department(nil), s.Departments...),
		Categories:     append([]Category(nil), s.Categories...),
		Employees:      make([]Employee, len(s.Employees)),
		Vendors:        make([]Vendor, len(s.Vendors)),
		Budgets:        append([]Budget(nil), s.Budgets...),
		ApprovalMatrix: make([]ApprovalRule, len(s.ApprovalMatrix)),
		Requisitions:   make([]Requisition, len(s.Requisitions)),
		PurchaseOrders: make([]PurchaseOrder, len(s.PurchaseOrders)),
		Counters:       make(map[string]int, len(s.Counters)),
	}
	for i, e := range s.Employees {
		e.Roles = cloneStrings(e.Roles)
		out.Employees[i] = e
	}
	for i, v := range s.Vendors {
		v.Categories = cloneStrings(v.Categories)
		out.Vendors[i] = v
	}
	for i, r := range s.ApprovalMatrix {
		out.ApprovalMatrix[i] = r.clone()
	}
	for i, pr := range s.Requisitions {
		out.Requisitions[i] = pr.clone()
	}
	for i, po := range s.PurchaseOrders {
		out.PurchaseOrders[i] = po.clone()
	}
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	out.Normalize()
	return out
}

func (r ApprovalRule) clone() ApprovalRule {
	r.Departments = cloneStrings(r.Departments)
	r.Categories = cloneStrings(r.Categories)
	if r.MaxAmount != nil {
		bound := *r.MaxAmount
		r.MaxAmount = &bound
	}
	levels := make([]Level, len(r.Levels))
	for i, l := range r.Levels {
		l.Roles = cloneStrings(l.Roles)
		levels[i] = l
	}
	r.Levels = levels
	return r
}

func (pr Requisition) clone() Requisition {
	pr.Items = cloneSlice(pr.Items)
	pr.History = cloneSlice(pr.History)
	progress := make([]LevelProgress, len(pr.ApprovalProgress))
	for i, level := range pr.ApprovalProgress {
		slots := make([]RoleSlot, len(level.Roles))
		for j, slot := range level.Roles {
			slot.Candidates = cloneSlice(slot.Candidates)
			slot.DecidedAt = cloneTime(slot.DecidedAt)
			slots[j] = slot
		}
		level.Roles = slots
		progress[i] = level
	}
	pr.ApprovalProgress = progress
	return pr
}

func (po PurchaseOrder) clone() PurchaseOrder {
	po.Items = cloneSlice(po.Items)
	po.Receipts = cloneSlice(po.Receipts)
	po.Invoices = cloneSlice(po.Invoices)
	po.History = cloneSlice(po.History)
	return po
}

func cloneStrings(in []string) []string { return cloneSlice(in) }

// cloneSlice preserves the nil versus empty distinction so JSON output is stable.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
