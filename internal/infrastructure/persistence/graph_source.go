package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
	"github.com/supplytrace/backend/internal/domain/trace"
)

// GormGraphSource feeds the traceability builder from the relational
// store, joining each order with its seller company and product
type GormGraphSource struct {
	db     *gorm.DB
	orders order.PurchaseOrderRepository
}

// NewGormGraphSource creates a graph source over the given database
func NewGormGraphSource(db *gorm.DB, orders order.PurchaseOrderRepository) *GormGraphSource {
	return &GormGraphSource{db: db, orders: orders}
}

// Facts loads the joined node facts for one purchase order
func (s *GormGraphSource) Facts(ctx context.Context, poID uuid.UUID) (*trace.NodeFacts, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	var seller company.Company
	if err := session(ctx, s.db).First(&seller, "id = ?", po.SellerCompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("company").WithDetail("id", po.SellerCompanyID.String())
		}
		return nil, err
	}

	var product catalog.Product
	if err := session(ctx, s.db).First(&product, "id = ?", po.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("product").WithDetail("id", po.ProductID.String())
		}
		return nil, err
	}

	facts := &trace.NodeFacts{
		POID:               po.ID,
		PONumber:           po.Number,
		CompanyID:          seller.ID,
		CompanyName:        seller.Name,
		CompanyTier:        seller.Tier,
		ProductID:          product.ID,
		ProductName:        product.Name,
		ProductType:        product.Type,
		Quantity:           po.Quantity,
		Unit:               po.Unit,
		FacilityID:         seller.FacilityCode,
		HasProcessingDates: po.HasProcessingDates(),
		CertificationCount: len(seller.Certifications),
	}
	if od := po.OriginData; od != nil {
		facts.HasOriginData = true
		facts.HasCoordinates = od.Coordinates != nil
		facts.HasHarvestDate = od.HarvestDate != nil
		facts.HasFarmID = od.FarmID != ""
		if len(od.Certifications) > 0 {
			facts.CertificationCount = len(od.Certifications)
		}
	}
	return facts, nil
}

// UpstreamIDs returns the source orders named in the PO's input materials
func (s *GormGraphSource) UpstreamIDs(ctx context.Context, poID uuid.UUID) ([]uuid.UUID, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(po.InputMaterials))
	for _, m := range po.InputMaterials {
		ids = append(ids, m.SourcePOID)
	}
	return ids, nil
}

// DownstreamIDs returns the orders fulfilled by this one: its children
// plus any order listing it as an input material source
func (s *GormGraphSource) DownstreamIDs(ctx context.Context, poID uuid.UUID) ([]uuid.UUID, error) {
	children, err := s.orders.FindChildren(ctx, poID)
	if err != nil {
		return nil, err
	}
	consumers, err := s.orders.FindConsumersOf(ctx, poID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(children)+len(consumers))
	ids := make([]uuid.UUID, 0, len(children)+len(consumers))
	for _, c := range children {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	for _, c := range consumers {
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}
