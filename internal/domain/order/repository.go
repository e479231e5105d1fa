package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds a purchase order by its human-readable number
	FindByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	// ExistsByNumber checks whether an order number is already taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// FindChildren returns the child orders of a parent, ordered by number
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]PurchaseOrder, error)

	// FindConsumersOf returns orders whose input materials reference the
	// given order as a source
	FindConsumersOf(ctx context.Context, sourcePOID uuid.UUID) ([]PurchaseOrder, error)

	// FindForTransparencyRefresh returns a company's orders in a
	// transparency-relevant status (CONFIRMED, IN_TRANSIT, DELIVERED)
	// whose scores are missing or older than the cutoff. A nil cutoff
	// selects all of them.
	FindForTransparencyRefresh(ctx context.Context, companyID uuid.UUID, calculatedBefore *time.Time) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order
	Save(ctx context.Context, po *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking; a version mismatch
	// surfaces as a ConcurrencyError
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error

	// Delete removes a purchase order
	Delete(ctx context.Context, id uuid.UUID) error
}

// AllocationRepository defines the interface for allocation persistence
type AllocationRepository interface {
	// FindByPO returns all allocations fulfilling an order
	FindByPO(ctx context.Context, poID uuid.UUID) ([]Allocation, error)

	// SaveAll persists a set of allocations
	SaveAll(ctx context.Context, allocations []Allocation) error

	// DeleteByPO removes all allocations of an order
	DeleteByPO(ctx context.Context, poID uuid.UUID) error
}
