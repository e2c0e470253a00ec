package procurement

// CandidateResolver returns the eligible approvers for a role.
type CandidateResolver func(draft RuleDraft, employees []Employee) []Employee

// PlanBuilder expands a rule into a per-requisition approval plan. Roles
// without a registered resolver fall back to every holder of the role.
type PlanBuilder struct {
	resolvers map[string]CandidateResolver
}

// NewPlanBuilder returns a builder with the line manager and department head strategies.
func NewPlanBuilder() *PlanBuilder {
	b := &PlanBuilder{resolvers: make(map[string]CandidateResolver)}
	b.Register(RoleLineManager, lineManager)
	b.Register(RoleDepartmentHead, departmentRole(RoleDepartmentHead))
	return b
}

// Register binds role to resolver, replacing any previous strategy.
func (b *PlanBuilder) Register(role string, resolver CandidateResolver) {
	if resolver == nil {
		delete(b.resolvers, role)
		return
	}
	b.resolvers[role] = resolver
}

// Build creates pending level progress for every level of rule. A level
// without roles has nothing to decide and starts completed.
func (b *PlanBuilder) Build(rule ApprovalRule, draft RuleDraft, employees []Employee) []LevelProgress {
	plan := make([]LevelProgress, 0, len(rule.Levels))
	for i, level := range rule.Levels {
		slots := make([]RoleSlot, 0, len(level.Roles))
		for _, role := range level.Roles {
			slots = append(slots, RoleSlot{
				Role:       role,
				Candidates: snapshotCandidates(b.candidates(role, draft, employees)),
				Status:     SlotPending,
			})
		}
		plan = append(plan, LevelProgress{Index: i, Type: level.Type, Roles: slots, Completed: len(slots) == 0})
	}
	return plan
}

func (b *PlanBuilder) candidates(role string, draft RuleDraft, employees []Employee) []Employee {
	if resolver, ok := b.resolvers[role]; ok {
		return resolver(draft, employees)
	}
	return holders(role, employees)
}

func lineManager(draft RuleDraft, employees []Employee) []Employee {
	var managerID string
	for _, e := range employees {
		if e.ID == draft.RequestorID {
			managerID = e.ManagerID
			break
		}
	}
	if managerID == "" {
		return nil
	}
	for _, e := range employees {
		if e.ID == managerID {
			return []Employee{e}
		}
	}
	return nil
}

func departmentRole(role string) CandidateResolver {
	return func(draft RuleDraft, employees []Employee) []Employee {
		var out []Employee
		for _, e := range employees {
			if e.HasRole(role) && e.DepartmentID == draft.DepartmentID {
				out = append(out, e)
			}
		}
		return out
	}
}

func holders(role string, employees []Employee) []Employee {
	var out []Employee
	for _, e := range employees {
		if e.HasRole(role) {
			out = append(out, e)
		}
	}
	return out
}

func snapshotCandidates(employees []Employee) []Candidate {
	out := make([]Candidate, 0, len(employees))
	for _, e := range employees {
		out = append(out, Candidate{ID: e.ID, FullName: e.FullName})
	}
	return out
}
