package procurement

import (
	"fmt"
	"time"
)

// Decision is the outcome of a single role slot vote.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Audit actions written by the approval engine.
const (
	ActionFullyApproved = "Fully Approved"
	actionApprovedFmt   = "Approved - %s"
	actionRejectedFmt   = "Rejected - %s"
)

// Transition describes what Decide changed on the requisition.
type Transition struct {
	Outcome        Outcome
	LevelCompleted bool
	Approved       bool
	Rejected       bool
}

// Decide applies a vote to a role slot. Level completion requires every slot
// approved regardless of level type; the first rejection ends the requisition.
func Decide(pr *Requisition, levelIndex, roleIndex int, actorID string, decision Decision, at time.Time) (Transition, error) {
	if levelIndex < 0 || levelIndex >= len(pr.ApprovalProgress) {
		return Transition{}, invalid("level", fmt.Sprintf("index %d out of range", levelIndex))
	}
	level := &pr.ApprovalProgress[levelIndex]
	if roleIndex < 0 || roleIndex >= len(level.Roles) {
		return Transition{}, invalid("role", fmt.Sprintf("index %d out of range", roleIndex))
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return Transition{}, invalid("decision", fmt.Sprintf("unknown decision %q", decision))
	}
	slot := &level.Roles[roleIndex]
	if slot.Status != SlotPending {
		return Transition{Outcome: ignored(fmt.Sprintf("slot %s already %s", slot.Role, slot.Status))}, nil
	}
	if pr.Status != PRStatusPendingApproval {
		return Transition{Outcome: ignored(fmt.Sprintf("requisition is %s", pr.Status))}, nil
	}

	decidedAt := at
	slot.ActorID = actorID
	slot.DecidedAt = &decidedAt

	if decision == DecisionReject {
		slot.Status = SlotRejected
		level.Completed = true
		pr.Status = PRStatusRejected
		pr.History = appendHistory(pr.History, fmt.Sprintf(actionRejectedFmt, slot.Role), actorID, "", at)
		return Transition{Outcome: applied(), Rejected: true}, nil
	}

	slot.Status = SlotApproved
	pr.History = appendHistory(pr.History, fmt.Sprintf(actionApprovedFmt, slot.Role), actorID, "", at)
	t := Transition{Outcome: applied()}
	if levelApproved(*level) {
		level.Completed = true
		t.LevelCompleted = true
	}
	if allLevelsCompleted(pr.ApprovalProgress) {
		pr.Status = PRStatusApproved
		pr.History = appendHistory(pr.History, ActionFullyApproved, actorID, "All approval levels completed.", at)
		t.Approved = true
		return t, nil
	}
	pr.Status = PRStatusPendingApproval
	return t, nil
}

// CurrentLevel returns the first incomplete level, or nil when none remains.
func CurrentLevel(pr Requisition) *LevelProgress {
	for i := range pr.ApprovalProgress {
		if !pr.ApprovalProgress[i].Completed {
			return &pr.ApprovalProgress[i]
		}
	}
	return nil
}

// PendingRoles lists role names still awaiting a decision in level.
func PendingRoles(level LevelProgress) []string {
	var roles []string
	for _, slot := range level.Roles {
		if slot.Status == SlotPending {
			roles = append(roles, slot.Role)
		}
	}
	return roles
}

func levelApproved(level LevelProgress) bool {
	for _, slot := range level.Roles {
		if slot.Status != SlotApproved {
			return false
		}
	}
	return true
}

func allLevelsCompleted(levels []LevelProgress) bool {
	for _, level := range levels {
		if !level.Completed {
			return false
		}
	}
	return true
}
