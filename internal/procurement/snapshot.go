package procurement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// SnapshotStore persists the serialized store. Load returns a nil payload
// and nil error when nothing has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// EncodeSnapshot serializes the store.
func EncodeSnapshot(s *Store) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("procurement: encode snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot restores a store from payload.
func DecodeSnapshot(payload []byte) (*Store, error) {
	var s Store
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("procurement: decode snapshot: %w", err)
	}
	s.Normalize()
	return &s, nil
}

// LoadStore reads the persisted store, falling back to a copy of fallback
// when the snapshot is missing or cannot be decoded. Collections absent from
// the payload are taken from fallback.
func LoadStore(ctx context.Context, snapshots SnapshotStore, fallback *Store, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if snapshots == nil {
		return fallback.Clone(), nil
	}
	payload, err := snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("procurement: load snapshot: %w", err)
	}
	if len(payload) == 0 {
		logger.Info("no snapshot found, using default dataset")
		return fallback.Clone(), nil
	}
	s, err := decodeOver(payload, fallback)
	if err != nil {
		logger.Warn("corrupt snapshot, using default dataset", slog.Any("error", err))
		return fallback.Clone(), nil
	}
	return s, nil
}

func decodeOver(payload []byte, fallback *Store) (*Store, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(payload, &present); err != nil {
		return nil, fmt.Errorf("procurement: decode snapshot: %w", err)
	}
	s, err := DecodeSnapshot(payload)
	if err != nil {
		return nil, err
	}
	base := fallback.Clone()
	missing := func(key string) bool {
		_, ok := present[key]
		return !ok
	}
	if missing("departments") {
		s.Departments = base.Departments
	}
	if missing("categories") {
		s.Categories = base.Categories
	}
	if missing("employees") {
		s.Employees = base.Employees
	}
	if missing("vendors") {
		s.Vendors = base.Vendors
	}
	if missing("budgets") {
		s.Budgets = base.Budgets
	}
	if missing("approvalMatrix") {
		s.ApprovalMatrix = base.ApprovalMatrix
	}
	if missing("requisitions") {
		s.Requisitions = base.Requisitions
	}
	if missing("purchaseOrders") {
		s.PurchaseOrders = base.PurchaseOrders
	}
	if missing("counters") {
		s.Counters = base.Counters
	}
	s.Normalize()
	return s, nil
}
