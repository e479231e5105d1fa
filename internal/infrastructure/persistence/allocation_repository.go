package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplytrace/backend/internal/domain/order"
)

// GormAllocationRepository implements order.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByPO returns all allocations fulfilling an order
func (r *GormAllocationRepository) FindByPO(ctx context.Context, poID uuid.UUID) ([]order.Allocation, error) {
	var allocations []order.Allocation
	err := session(ctx, r.db).
		Where("po_id = ?", poID).
		Order("created_at ASC").
		Find(&allocations).Error
	return allocations, err
}

// SaveAll persists a set of allocations
func (r *GormAllocationRepository) SaveAll(ctx context.Context, allocations []order.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}
	return session(ctx, r.db).Save(&allocations).Error
}

// DeleteByPO removes all allocations of an order
func (r *GormAllocationRepository) DeleteByPO(ctx context.Context, poID uuid.UUID) error {
	return session(ctx, r.db).Delete(&order.Allocation{}, "po_id = ?", poID).Error
}
