package catalog

import (
	"github.com/supplytrace/backend/internal/domain/shared"
)

// ProductType classifies a product by its stage in the supply chain
type ProductType string

const (
	ProductTypeRawMaterial  ProductType = "raw_material"
	ProductTypeProcessed    ProductType = "processed"
	ProductTypeFinishedGood ProductType = "finished_good"
)

// IsValid checks whether the product type is a known value
func (t ProductType) IsValid() bool {
	switch t {
	case ProductTypeRawMaterial, ProductTypeProcessed, ProductTypeFinishedGood:
		return true
	}
	return false
}

// String returns the string representation of the product type
func (t ProductType) String() string {
	return string(t)
}

// Product represents a tradeable commodity
type Product struct {
	shared.BaseEntity
	Name        string      `gorm:"type:varchar(200);not null"`
	Code        string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type        ProductType `gorm:"type:varchar(20);not null;index"`
	DefaultUnit string      `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, code string, productType ProductType, defaultUnit string) (*Product, error) {
	if name == "" || code == "" {
		return nil, shared.NewValidationError("product name and code are required")
	}
	if !productType.IsValid() {
		return nil, shared.NewValidationError("invalid product type").WithDetail("type", string(productType))
	}
	if defaultUnit == "" {
		return nil, shared.NewValidationError("default unit cannot be empty")
	}
	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Code:        code,
		Type:        productType,
		DefaultUnit: defaultUnit,
	}, nil
}
