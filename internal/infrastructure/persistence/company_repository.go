package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var c company.Company
	if err := session(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("company").WithDetail("id", id.String())
		}
		return nil, err
	}
	return &c, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return session(ctx, r.db).Save(c).Error
}

// GormRelationshipRepository implements company.RelationshipRepository using GORM
type GormRelationshipRepository struct {
	db *gorm.DB
}

// NewGormRelationshipRepository creates a new GormRelationshipRepository
func NewGormRelationshipRepository(db *gorm.DB) *GormRelationshipRepository {
	return &GormRelationshipRepository{db: db}
}

// FindSuppliers returns the active supplier companies a buyer sources
// the product from. Ordering by company name keeps child numbering
// deterministic across retries.
func (r *GormRelationshipRepository) FindSuppliers(ctx context.Context, buyerID, productID uuid.UUID) ([]company.Company, error) {
	var suppliers []company.Company
	err := session(ctx, r.db).
		Joins("JOIN company_relationships rel ON rel.supplier_company_id = companies.id").
		Where("rel.buyer_company_id = ? AND rel.product_id = ? AND rel.active", buyerID, productID).
		Order("companies.name ASC, companies.id ASC").
		Find(&suppliers).Error
	return suppliers, err
}

// SaveRelationship creates or updates a trading relationship
func (r *GormRelationshipRepository) SaveRelationship(ctx context.Context, rel *company.Relationship) error {
	return session(ctx, r.db).Save(rel).Error
}
