package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// Batch represents a physical lot of product held by a company.
// RemainingQuantity decreases as the batch is allocated to purchase orders.
type Batch struct {
	shared.BaseEntity
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchNumber       string          `gorm:"type:varchar(50);not null"`
	InitialQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	ProductionDate    *time.Time
	ExpiryDate        *time.Time
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "inventory_batches"
}

// NewBatch creates a new inventory batch
func NewBatch(companyID, productID uuid.UUID, batchNumber string, quantity decimal.Decimal, unit string) (*Batch, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("company ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewValidationError("batch number cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("batch quantity must be positive")
	}
	if unit == "" {
		return nil, shared.NewValidationError("unit cannot be empty")
	}
	return &Batch{
		BaseEntity:        shared.NewBaseEntity(),
		CompanyID:         companyID,
		ProductID:         productID,
		BatchNumber:       batchNumber,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		Unit:              unit,
	}, nil
}

// IsOwnedBy returns true if the batch belongs to the given company
func (b *Batch) IsOwnedBy(companyID uuid.UUID) bool {
	return b.CompanyID == companyID
}

// IsExpired returns true if the batch has expired
func (b *Batch) IsExpired() bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now())
}

// HasStock returns true if the batch has quantity remaining
func (b *Batch) HasStock() bool {
	return b.RemainingQuantity.GreaterThan(decimal.Zero)
}

// Consume deducts quantity from the batch. The full requested quantity
// must be available; a batch is never driven negative.
func (b *Batch) Consume(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("consume quantity must be positive")
	}
	if quantity.GreaterThan(b.RemainingQuantity) {
		return shared.NewBusinessRuleError("insufficient quantity").
			WithDetail("batch_id", b.ID.String()).
			WithDetail("requested", quantity.String()).
			WithDetail("remaining", b.RemainingQuantity.String())
	}
	b.RemainingQuantity = b.RemainingQuantity.Sub(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// Restore returns previously consumed quantity to the batch,
// bounded by the initial quantity
func (b *Batch) Restore(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("restore quantity must be positive")
	}
	restored := b.RemainingQuantity.Add(quantity)
	if restored.GreaterThan(b.InitialQuantity) {
		return shared.NewBusinessRuleError(
			fmt.Sprintf("cannot restore %s to batch %s beyond initial quantity", quantity.String(), b.BatchNumber))
	}
	b.RemainingQuantity = restored
	b.UpdatedAt = time.Now()
	return nil
}

// ConsumedQuantity returns how much of the batch has been used
func (b *Batch) ConsumedQuantity() decimal.Decimal {
	return b.InitialQuantity.Sub(b.RemainingQuantity)
}
