package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// AllocationType describes the kind of source satisfying a PO's quantity
type AllocationType string

const (
	AllocationTypeChain      AllocationType = "CHAIN"      // a child purchase order
	AllocationTypeInventory  AllocationType = "INVENTORY"  // an existing stock batch
	AllocationTypeCommitment AllocationType = "COMMITMENT" // a forward commitment, reconciled later
)

// IsValid checks whether the allocation type is a known value
func (t AllocationType) IsValid() bool {
	switch t {
	case AllocationTypeChain, AllocationTypeInventory, AllocationTypeCommitment:
		return true
	}
	return false
}

// Allocation links a purchase order to exactly one source that satisfies
// part of its quantity: either a child PO or an inventory batch.
type Allocation struct {
	shared.BaseEntity
	POID              uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	ChildPOID         *uuid.UUID      `gorm:"column:child_po_id;type:uuid;index"`
	BatchID           *uuid.UUID      `gorm:"type:uuid;index"`
	QuantityAllocated decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Type              AllocationType  `gorm:"type:varchar(20);not null"`
	ComplianceNotes   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "po_allocations"
}

// NewChainAllocation links a PO to a child PO that fulfills it
func NewChainAllocation(poID, childPOID uuid.UUID, quantity decimal.Decimal) (*Allocation, error) {
	if err := validateAllocationQuantity(poID, quantity); err != nil {
		return nil, err
	}
	if childPOID == uuid.Nil {
		return nil, shared.NewValidationError("child PO ID cannot be empty")
	}
	return &Allocation{
		BaseEntity:        shared.NewBaseEntity(),
		POID:              poID,
		ChildPOID:         &childPOID,
		QuantityAllocated: quantity,
		Type:              AllocationTypeChain,
	}, nil
}

// NewInventoryAllocation links a PO to a stock batch that fulfills it
func NewInventoryAllocation(poID, batchID uuid.UUID, quantity decimal.Decimal, complianceNotes string) (*Allocation, error) {
	if err := validateAllocationQuantity(poID, quantity); err != nil {
		return nil, err
	}
	if batchID == uuid.Nil {
		return nil, shared.NewValidationError("batch ID cannot be empty")
	}
	return &Allocation{
		BaseEntity:        shared.NewBaseEntity(),
		POID:              poID,
		BatchID:           &batchID,
		QuantityAllocated: quantity,
		Type:              AllocationTypeInventory,
		ComplianceNotes:   complianceNotes,
	}, nil
}

func validateAllocationQuantity(poID uuid.UUID, quantity decimal.Decimal) error {
	if poID == uuid.Nil {
		return shared.NewValidationError("PO ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("allocated quantity must be positive")
	}
	return nil
}

// Validate checks the exactly-one-source invariant
func (a *Allocation) Validate() error {
	if (a.ChildPOID == nil) == (a.BatchID == nil) {
		return shared.NewValidationError("allocation must reference exactly one of child PO or batch")
	}
	if !a.Type.IsValid() {
		return shared.NewValidationError("invalid allocation type")
	}
	return nil
}

// ValidateConservation checks that allocations sum to the PO quantity
// within the fixed tolerance
func ValidateConservation(poQuantity decimal.Decimal, allocations []Allocation) error {
	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(a.QuantityAllocated)
	}
	if !QuantitiesMatch(sum, poQuantity) {
		return shared.NewBusinessRuleError("total does not match PO quantity").
			WithDetail("expected", poQuantity.String()).
			WithDetail("actual", sum.String())
	}
	return nil
}
