package procurement

import "github.com/shopspring/decimal"

// RuleDraft carries the requisition attributes used for routing.
type RuleDraft struct {
	RequestorID  string
	DepartmentID string
	CategoryID   string
	TotalAmount  decimal.Decimal
}

// ResolveRule returns the first rule of the matrix matching draft.
func ResolveRule(matrix []ApprovalRule, draft RuleDraft) (ApprovalRule, error) {
	for _, rule := range matrix {
		if rule.Matches(draft) {
			return rule, nil
		}
	}
	return ApprovalRule{}, ErrNoApprovalRule
}

// Matches applies the department, category and amount predicates.
func (r ApprovalRule) Matches(draft RuleDraft) bool {
	if !matchesSet(r.Departments, draft.DepartmentID) || !matchesSet(r.Categories, draft.CategoryID) {
		return false
	}
	if draft.TotalAmount.LessThan(r.MinAmount) {
		return false
	}
	return r.MaxAmount == nil || draft.TotalAmount.LessThanOrEqual(*r.MaxAmount)
}

func matchesSet(set []string, id string) bool {
	for _, v := range set {
		if v == MatchAll || v == id {
			return true
		}
	}
	return false
}
