package procurement

import "github.com/shopspring/decimal"

// Ledger applies commitment and spend deltas to budgets. Committed and spent
// never drop below zero.
type Ledger struct{}

// Available returns allocation minus committed minus spent.
func (Ledger) Available(b Budget) decimal.Decimal {
	return b.Allocation.Sub(b.Committed).Sub(b.Spent)
}

// Commit reserves amount on the budget.
func (l Ledger) Commit(b *Budget, amount decimal.Decimal) {
	l.apply(b, amount, decimal.Zero)
}

// Release returns a reservation to the available balance.
func (l Ledger) Release(b *Budget, amount decimal.Decimal) {
	l.apply(b, amount.Neg(), decimal.Zero)
}

// Realize moves amount from committed to spent.
func (l Ledger) Realize(b *Budget, amount decimal.Decimal) {
	l.apply(b, amount.Neg(), amount)
}

func (Ledger) apply(b *Budget, deltaCommitted, deltaSpent decimal.Decimal) {
	if b == nil {
		return
	}
	b.Committed = floorZero(b.Committed.Add(deltaCommitted))
	b.Spent = floorZero(b.Spent.Add(deltaSpent))
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
