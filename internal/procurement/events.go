package procurement

import (
	"context"
	"time"
)

// ApprovalRequestedEvent announces that a level is waiting for decisions.
type ApprovalRequestedEvent struct {
	PRID         string   `json:"prId"`
	Number       string   `json:"number"`
	LevelIndex   int      `json:"levelIndex"`
	Roles        []string `json:"roles"`
	CandidateIDs []string `json:"candidateIds"`
	TotalAmount  string   `json:"totalAmount"`

	// RoleCandidates counts the candidates of each pending role.
	RoleCandidates map[string]int `json:"roleCandidates"`
	RequestDate    time.Time      `json:"requestDate"`
}

// Notifier receives approval routing events, typically to queue reminders.
type Notifier interface {
	NotifyApprovalRequested(ctx context.Context, evt ApprovalRequestedEvent) error
}

// Recorder observes lifecycle transitions.
type Recorder interface {
	RecordTransition(intent string, outcome OutcomeStatus)
}

func approvalRequested(pr Requisition, level LevelProgress) ApprovalRequestedEvent {
	evt := ApprovalRequestedEvent{
		PRID:           pr.ID,
		Number:         pr.Number,
		LevelIndex:     level.Index,
		Roles:          PendingRoles(level),
		TotalAmount:    pr.TotalAmount.String(),
		RequestDate:    pr.RequestDate,
		RoleCandidates: make(map[string]int),
	}
	seen := make(map[string]bool)
	for _, slot := range level.Roles {
		if slot.Status != SlotPending {
			continue
		}
		evt.RoleCandidates[slot.Role] += len(slot.Candidates)
		for _, c := range slot.Candidates {
			if !seen[c.ID] {
				seen[c.ID] = true
				evt.CandidateIDs = append(evt.CandidateIDs, c.ID)
			}
		}
	}
	return evt
}
