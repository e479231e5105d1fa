package company

import (
	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// Relationship is a directed trading link: the buyer sources the given
// product from the supplier. Child orders created during fulfillment
// fan out along these links.
type Relationship struct {
	shared.BaseEntity
	BuyerCompanyID    uuid.UUID `gorm:"type:uuid;not null;index:idx_rel_buyer_product"`
	SupplierCompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index:idx_rel_buyer_product"`
	Active            bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Relationship) TableName() string {
	return "company_relationships"
}

// NewRelationship creates a new trading relationship
func NewRelationship(buyerID, supplierID, productID uuid.UUID) (*Relationship, error) {
	if buyerID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewValidationError("buyer and supplier company IDs are required")
	}
	if buyerID == supplierID {
		return nil, shared.NewValidationError("a company cannot supply itself")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID is required")
	}
	return &Relationship{
		BaseEntity:        shared.NewBaseEntity(),
		BuyerCompanyID:    buyerID,
		SupplierCompanyID: supplierID,
		ProductID:         productID,
		Active:            true,
	}, nil
}
