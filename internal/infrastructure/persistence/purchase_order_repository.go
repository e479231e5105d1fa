package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
)

var transparencyRelevantStatuses = []order.Status{
	order.StatusConfirmed,
	order.StatusInTransit,
	order.StatusDelivered,
}

// GormPurchaseOrderRepository implements order.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := session(ctx, r.db).First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase order").WithDetail("id", id.String())
		}
		return nil, err
	}
	return &po, nil
}

// FindByNumber finds a purchase order by its human-readable number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := session(ctx, r.db).First(&po, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase order").WithDetail("number", number)
		}
		return nil, err
	}
	return &po, nil
}

// ExistsByNumber checks whether an order number is already taken
func (r *GormPurchaseOrderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := session(ctx, r.db).Model(&order.PurchaseOrder{}).
		Where("number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// FindChildren returns the child orders of a parent, ordered by number
func (r *GormPurchaseOrderRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]order.PurchaseOrder, error) {
	var children []order.PurchaseOrder
	err := session(ctx, r.db).
		Where("parent_po_id = ?", parentID).
		Order("number ASC").
		Find(&children).Error
	return children, err
}

// FindConsumersOf returns orders whose input materials reference the
// given order as a source. Input materials are stored as a JSONB array,
// so the lookup uses containment.
func (r *GormPurchaseOrderRepository) FindConsumersOf(ctx context.Context, sourcePOID uuid.UUID) ([]order.PurchaseOrder, error) {
	var consumers []order.PurchaseOrder
	err := session(ctx, r.db).
		Where(`input_materials @> ?`, `[{"source_po_id":"`+sourcePOID.String()+`"}]`).
		Order("number ASC").
		Find(&consumers).Error
	return consumers, err
}

// FindForTransparencyRefresh returns a company's orders in a
// transparency-relevant status whose scores are missing or older than
// the cutoff
func (r *GormPurchaseOrderRepository) FindForTransparencyRefresh(ctx context.Context, companyID uuid.UUID, calculatedBefore *time.Time) ([]order.PurchaseOrder, error) {
	q := session(ctx, r.db).
		Where("(buyer_company_id = ? OR seller_company_id = ?)", companyID, companyID).
		Where("status IN ?", transparencyRelevantStatuses)
	if calculatedBefore != nil {
		q = q.Where("transparency_calculated_at IS NULL OR transparency_calculated_at < ?", *calculatedBefore)
	}

	var orders []order.PurchaseOrder
	err := q.Order("number ASC").Find(&orders).Error
	return orders, err
}

// Save creates or updates a purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *order.PurchaseOrder) error {
	return session(ctx, r.db).Save(po).Error
}

// SaveWithLock saves with optimistic locking. The row must still carry
// the version the aggregate was loaded with; the write bumps it.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *order.PurchaseOrder) error {
	expected := po.Version
	po.Version = expected + 1

	result := session(ctx, r.db).Model(po).
		Where("id = ? AND version = ?", po.ID, expected).
		Select("*").Omit("id", "created_at").
		Updates(po)
	if result.Error != nil {
		po.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		po.Version = expected
		return shared.NewConcurrencyError("purchase order was modified concurrently").
			WithDetail("po_id", po.ID.String())
	}
	return nil
}

// Delete removes a purchase order
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := session(ctx, r.db).Delete(&order.PurchaseOrder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("purchase order").WithDetail("id", id.String())
	}
	return nil
}
