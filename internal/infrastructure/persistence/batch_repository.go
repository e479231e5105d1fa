package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplytrace/backend/internal/domain/inventory"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := session(ctx, r.db).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("inventory batch").WithDetail("id", id.String())
		}
		return nil, err
	}
	return &batch, nil
}

// FindAvailable returns batches of a product owned by a company with
// stock remaining, oldest first
func (r *GormBatchRepository) FindAvailable(ctx context.Context, companyID, productID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	err := session(ctx, r.db).
		Where("company_id = ? AND product_id = ? AND remaining_quantity > 0", companyID, productID).
		Order("created_at ASC").
		Find(&batches).Error
	return batches, err
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	return session(ctx, r.db).Save(batch).Error
}
