package company

import (
	"github.com/supplytrace/backend/internal/domain/shared"
)

// Tier represents a company's position in the supply chain. The tier
// drives which confirmation behavior applies and how transparency
// scoring weights a company's nodes.
type Tier string

const (
	TierOriginator Tier = "originator" // plantation / grower
	TierProcessor  Tier = "processor"  // mill, refinery
	TierTrader     Tier = "trader"
	TierBrand      Tier = "brand"
)

// IsValid checks whether the tier is a known value
func (t Tier) IsValid() bool {
	switch t {
	case TierOriginator, TierProcessor, TierTrader, TierBrand:
		return true
	}
	return false
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// IsOrigin returns true for companies at the start of the chain
func (t Tier) IsOrigin() bool {
	return t == TierOriginator
}

// Company represents a party that buys or sells purchase orders
type Company struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(200);not null"`
	Tier    Tier   `gorm:"type:varchar(20);not null;index"`
	Country string `gorm:"type:varchar(100)"`

	// FacilityCode identifies the physical mill or refinery for
	// processor-tier companies
	FacilityCode   string   `gorm:"type:varchar(50)"`
	Certifications []string `gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new company
func NewCompany(name string, tier Tier) (*Company, error) {
	if name == "" {
		return nil, shared.NewValidationError("company name cannot be empty")
	}
	if !tier.IsValid() {
		return nil, shared.NewValidationError("invalid company tier").WithDetail("tier", string(tier))
	}
	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Tier:       tier,
	}, nil
}
