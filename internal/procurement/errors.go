package procurement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrBudgetNotFound occurs when a requisition references an unknown budget.
	ErrBudgetNotFound = fmt.Errorf("%w: budget not found", ErrValidation)
	// ErrBudgetExceeded occurs when a requisition total exceeds the available balance.
	ErrBudgetExceeded = errors.New("procurement: budget exceeded")
	// ErrNoApprovalRule means the approval matrix has no rule for the requisition.
	ErrNoApprovalRule = errors.New("procurement: no approval rule matches")
	// ErrMissingActor occurs when a decision arrives without an actor.
	ErrMissingActor = errors.New("procurement: actor required")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("procurement: invalid input: %s", e.Message)
	}
	return fmt.Sprintf("procurement: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// BudgetExceededError carries the shortfall details.
type BudgetExceededError struct {
	BudgetID  string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("procurement: budget %s exceeded: available %s, requested %s",
		e.BudgetID, e.Available.String(), e.Requested.String())
}

func (e *BudgetExceededError) Unwrap() error { return ErrBudgetExceeded }
