package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role names used only by the default dataset.
const (
	RoleHeadOfMarketing  = "Head of Marketing"
	RoleHeadOfIT         = "Head of IT"
	RoleDivisionDirector = "Division Director"
	RoleCFO              = "CFO"
)

// DefaultDataset returns a fresh store seeded with a small organisation,
// vendors, budgets for the current year and an approval matrix.
func DefaultDataset() *Store {
	year := time.Now().UTC().Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	highValue := decimal.NewFromInt(50_000_000)
	lowValue := decimal.NewFromInt(10_000_000)

	s := &Store{
		Departments: []Department{
			{ID: "dept-ops", Code: "OPS", Name: "Operations"},
			{ID: "dept-mkt", Code: "MKT", Name: "Marketing", ParentID: "dept-ops"},
			{ID: "dept-it", Code: "IT", Name: "Information Technology", ParentID: "dept-ops"},
			{ID: "dept-fin", Code: "FIN", Name: "Finance"},
		},
		Categories: []Category{
			{ID: "cat-it", Name: "IT Equipment", Type: "Capex"},
			{ID: "cat-mkt", Name: "Marketing Services", Type: "Opex"},
			{ID: "cat-office", Name: "Office Supplies", Type: "Opex"},
		},
		Employees: []Employee{
			{ID: "emp-dir", FullName: "Ratna Wijaya", Roles: []string{RoleDivisionDirector}, DepartmentID: "dept-ops"},
			{ID: "emp-cfo", FullName: "Hendra Gunawan", Roles: []string{RoleCFO}, DepartmentID: "dept-fin"},
			{ID: "emp-mkt-head", FullName: "Dewi Lestari", Roles: []string{RoleDepartmentHead, RoleHeadOfMarketing}, DepartmentID: "dept-mkt", ManagerID: "emp-dir"},
			{ID: "emp-it-head", FullName: "Agus Santoso", Roles: []string{RoleDepartmentHead, RoleHeadOfIT}, DepartmentID: "dept-it", ManagerID: "emp-dir"},
			{ID: "emp-mkt-mgr", FullName: "Siti Rahma", Roles: []string{RoleLineManager}, DepartmentID: "dept-mkt", ManagerID: "emp-mkt-head"},
			{ID: "emp-mkt-staff", FullName: "Budi Pratama", Roles: []string{RoleRequester}, DepartmentID: "dept-mkt", ManagerID: "emp-mkt-mgr"},
			{ID: "emp-it-staff", FullName: "Andi Kurniawan", Roles: []string{RoleRequester}, DepartmentID: "dept-it", ManagerID: "emp-it-head"},
			{ID: "emp-proc", FullName: "Maya Putri", Roles: []string{RoleProcurementLead}, DepartmentID: "dept-ops", ManagerID: "emp-dir"},
			{ID: "emp-wh", FullName: "Joko Susilo", Roles: []string{RoleWarehouseLead}, DepartmentID: "dept-ops", ManagerID: "emp-dir"},
			{ID: "emp-ap", FullName: "Lina Marlina", Roles: []string{RoleFinanceAP}, DepartmentID: "dept-fin", ManagerID: "emp-cfo"},
		},
		Vendors: []Vendor{
			{ID: "vendor-nusantara", Name: "PT Nusantara Teknologi", Email: "sales@nusantara-tek.co.id", ContactPerson: "Rudi", Rating: 4.5, Categories: []string{"cat-it"}},
			{ID: "vendor-kreasi", Name: "CV Kreasi Media", Email: "halo@kreasimedia.id", ContactPerson: "Tari", Rating: 4.2, Categories: []string{"cat-mkt"}},
			{ID: "vendor-sentosa", Name: "PT Sentosa Office", Email: "order@sentosa-office.co.id", ContactPerson: "Yusuf", Rating: 3.9, Categories: []string{"cat-office", "cat-it"}},
		},
		Budgets: []Budget{
			{ID: "budget-it-capex", Name: "IT Hardware Refresh", DepartmentID: "dept-it", CategoryID: "cat-it", Allocation: decimal.NewFromInt(250_000_000), StartDate: start, EndDate: end},
			{ID: "budget-mkt-campaign", Name: "Marketing Campaigns", DepartmentID: "dept-mkt", CategoryID: "cat-mkt", Allocation: decimal.NewFromInt(150_000_000), StartDate: start, EndDate: end},
			{ID: "budget-office", Name: "Office Supplies", DepartmentID: "dept-ops", CategoryID: "cat-office", Allocation: decimal.NewFromInt(40_000_000), StartDate: start, EndDate: end},
		},
		ApprovalMatrix: []ApprovalRule{
			{
				ID:          "rule-low",
				Name:        "Low value purchases",
				Departments: []string{MatchAll},
				Categories:  []string{MatchAll},
				MinAmount:   decimal.Zero,
				MaxAmount:   &lowValue,
				Levels: []Level{
					{Type: LevelSequential, Roles: []string{RoleLineManager}},
				},
			},
			{
				ID:          "rule-marketing",
				Name:        "Marketing services",
				Departments: []string{"dept-mkt"},
				Categories:  []string{"cat-mkt"},
				MinAmount:   decimal.Zero,
				MaxAmount:   &highValue,
				Levels: []Level{
					{Type: LevelSequential, Roles: []string{RoleLineManager}},
					{Type: LevelSequential, Roles: []string{RoleHeadOfMarketing}},
				},
			},
			{
				ID:          "rule-it",
				Name:        "IT equipment",
				Departments: []string{"dept-it"},
				Categories:  []string{"cat-it"},
				MinAmount:   decimal.Zero,
				MaxAmount:   &highValue,
				Levels: []Level{
					{Type: LevelSequential, Roles: []string{RoleLineManager}},
					{Type: LevelSequential, Roles: []string{RoleHeadOfIT}},
				},
			},
			{
				ID:          "rule-high",
				Name:        "High value purchases",
				Departments: []string{MatchAll},
				Categories:  []string{MatchAll},
				MinAmount:   decimal.Zero,
				Levels: []Level{
					{Type: LevelParallel, Roles: []string{RoleDepartmentHead, RoleDivisionDirector}},
					{Type: LevelSequential, Roles: []string{RoleCFO}},
				},
			},
		},
		Requisitions:   []Requisition{},
		PurchaseOrders: []PurchaseOrder{},
	}
	for i := range s.Budgets {
		s.Budgets[i].Committed = decimal.Zero
		s.Budgets[i].Spent = decimal.Zero
	}
	s.Normalize()
	return s
}
