package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultVendorRating applies to vendors created without a rating.
const DefaultVendorRating = 4.0

// BudgetInput describes a new budget allocation.
type BudgetInput struct {
	Name         string          `json:"name" validate:"required"`
	DepartmentID string          `json:"departmentId" validate:"required"`
	CategoryID   string          `json:"categoryId" validate:"required"`
	Allocation   decimal.Decimal `json:"allocation"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	ParentID     string          `json:"parentId"`
	Description  string          `json:"description"`
}

// VendorInput describes a new vendor.
type VendorInput struct {
	Name          string   `json:"name" validate:"required"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Phone         string   `json:"phone"`
	ContactPerson string   `json:"contactPerson"`
	Address       string   `json:"address"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Categories    []string `json:"categories"`
}

// CreateBudget registers a budget with zero commitment and spend.
func (s *Service) CreateBudget(ctx context.Context, input BudgetInput) (Budget, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.check(input); err != nil {
		return Budget{}, err
	}
	if !input.Allocation.IsPositive() {
		return Budget{}, invalid("allocation", "must be greater than zero")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return Budget{}, invalid("startDate", "start and end dates are required")
	}
	if input.StartDate.After(input.EndDate) {
		return Budget{}, invalid("endDate", "must not be before startDate")
	}
	var created Budget
	_, err := s.withTx(ctx, IntentCreateBudget, func(tx *Store) (Outcome, error) {
		if tx.Department(input.DepartmentID) == nil {
			return Outcome{}, invalid("departmentId", "unknown department")
		}
		if tx.Category(input.CategoryID) == nil {
			return Outcome{}, invalid("categoryId", "unknown category")
		}
		if input.ParentID != "" && tx.Budget(input.ParentID) == nil {
			return Outcome{}, invalid("parentId", "unknown budget")
		}
		created = Budget{
			ID:           "budget-" + uuid.NewString(),
			Name:         input.Name,
			DepartmentID: input.DepartmentID,
			CategoryID:   input.CategoryID,
			Allocation:   input.Allocation,
			Committed:    decimal.Zero,
			Spent:        decimal.Zero,
			StartDate:    input.StartDate,
			EndDate:      input.EndDate,
			ParentID:     input.ParentID,
			Description:  input.Description,
		}
		tx.Budgets = append(tx.Budgets, created)
		return applied(), nil
	})
	if err != nil {
		return Budget{}, err
	}
	s.logger.Info("budget created", slog.String("budget", created.ID), slog.String("allocation", created.Allocation.String()))
	return created, nil
}

// CreateVendor registers a vendor.
func (s *Service) CreateVendor(ctx context.Context, input VendorInput) (Vendor, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.check(input); err != nil {
		return Vendor{}, err
	}
	rating := DefaultVendorRating
	if input.Rating != nil {
		rating = *input.Rating
	}
	var created Vendor
	_, err := s.withTx(ctx, IntentCreateVendor, func(tx *Store) (Outcome, error) {
		for _, id := range input.Categories {
			if tx.Category(id) == nil {
				return Outcome{}, invalid("categories", fmt.Sprintf("unknown category %s", id))
			}
		}
		created = Vendor{
			ID:            "vendor-" + uuid.NewString(),
			Name:          input.Name,
			Email:         input.Email,
			Phone:         input.Phone,
			ContactPerson: input.ContactPerson,
			Address:       input.Address,
			Rating:        rating,
			Categories:    append([]string{}, input.Categories...),
		}
		tx.Vendors = append(tx.Vendors, created)
		return applied(), nil
	})
	if err != nil {
		return Vendor{}, err
	}
	s.logger.Info("vendor created", slog.String("vendor", created.ID), slog.String("name", created.Name))
	return created, nil
}

// Reset replaces every collection with the default dataset and persists it.
func (s *Service) Reset(ctx context.Context) error {
	_, err := s.withTx(ctx, IntentReset, func(tx *Store) (Outcome, error) {
		*tx = *s.fallback.Clone()
		return applied(), nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("store reset to default dataset")
	return nil
}

// Snapshot returns a deep copy of the live store.
func (s *Service) Snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Clone()
}

// Departments lists departments.
func (s *Service) Departments() []Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.store.Departments)
}

// Categories lists categories.
func (s *Service) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.store.Categories)
}

// Employees lists employees.
func (s *Service) Employees() []Employee {
	return s.Snapshot().Employees
}

// Vendors lists vendors.
func (s *Service) Vendors() []Vendor {
	return s.Snapshot().Vendors
}

// Budgets lists budgets.
func (s *Service) Budgets() []Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.store.Budgets)
}

// ApprovalRules lists the approval matrix in declaration order.
func (s *Service) ApprovalRules() []ApprovalRule {
	return s.Snapshot().ApprovalMatrix
}

// Requisitions lists requisitions in submission order.
func (s *Service) Requisitions() []Requisition {
	return s.Snapshot().Requisitions
}

// Requisition returns one requisition.
func (s *Service) Requisition(id string) (Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pr := s.store.Requisition(id)
	if pr == nil {
		return Requisition{}, fmt.Errorf("requisition %s: %w", id, ErrNotFound)
	}
	return pr.clone(), nil
}

// PurchaseOrders lists purchase orders in issue order.
func (s *Service) PurchaseOrders() []PurchaseOrder {
	return s.Snapshot().PurchaseOrders
}

// PurchaseOrder returns one purchase order.
func (s *Service) PurchaseOrder(id string) (PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po := s.store.PurchaseOrder(id)
	if po == nil {
		return PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", id, ErrNotFound)
	}
	return po.clone(), nil
}
