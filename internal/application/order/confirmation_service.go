package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/inventory"
	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// Audit event types emitted by the confirmation workflow
const (
	AuditEventConfirmed          = "po_confirmed"
	AuditEventDiscrepancyFlagged = "po_discrepancy_flagged"
	AuditEventApproved           = "po_discrepancy_approved"
	AuditEventRejected           = "po_discrepancy_rejected"
	AuditEventChildPOsCreated    = "po_children_created"
)

var fullPercentage = decimal.NewFromInt(100)

// ConfirmationService orchestrates seller confirmation, discrepancy
// handling, buyer approval and fulfillment resolution. Every mutation
// of a PO and the allocations it causes commit or roll back together.
type ConfirmationService struct {
	orders        order.PurchaseOrderRepository
	allocations   order.AllocationRepository
	batches       inventory.BatchRepository
	companies     company.Repository
	products      catalog.Repository
	relationships company.RelationshipRepository
	tx            shared.TransactionManager
	audit         AuditRecorder
	notifier      Notifier
	logger        *zap.Logger
}

// NewConfirmationService creates a new ConfirmationService
func NewConfirmationService(
	orders order.PurchaseOrderRepository,
	allocations order.AllocationRepository,
	batches inventory.BatchRepository,
	companies company.Repository,
	products catalog.Repository,
	relationships company.RelationshipRepository,
	tx shared.TransactionManager,
	audit AuditRecorder,
	notifier Notifier,
	logger *zap.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		orders:        orders,
		allocations:   allocations,
		batches:       batches,
		companies:     companies,
		products:      products,
		relationships: relationships,
		tx:            tx,
		audit:         audit,
		notifier:      notifier,
		logger:        logger,
	}
}

// Confirm processes a seller confirmation of a pending order. If the
// confirmed terms differ materially from the originals, the order is
// parked for buyer approval; otherwise it is confirmed and fulfillment
// is resolved in the same transaction.
func (s *ConfirmationService) Confirm(ctx context.Context, poID, actorCompanyID uuid.UUID, req ConfirmationRequest) (*ConfirmationResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsSeller(actorCompanyID) {
		return nil, shared.NewPermissionError("only the seller company can confirm this order").
			WithDetail("seller_company_id", po.SellerCompanyID.String())
	}
	if po.Status != order.StatusPending && po.Status != order.StatusAmendmentPending {
		return nil, shared.NewStatusError(string(po.Status),
			[]string{string(order.StatusPending), string(order.StatusAmendmentPending)})
	}

	confirmation := req.toSellerConfirmation(time.Now())
	if err := confirmation.Fulfillment.Validate(); err != nil {
		return nil, err
	}

	seller, err := s.companies.FindByID(ctx, actorCompanyID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, po.ProductID)
	if err != nil {
		return nil, err
	}
	strategy := order.StrategyFor(product.Type, seller.Tier)
	if err := strategy.ValidatePayload(confirmation); err != nil {
		return nil, err
	}

	priorStatus := po.Status

	var resp *ConfirmationResponse
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		po.CaptureOriginalTerms()

		details := order.DetectDiscrepancies(po, confirmation)
		if len(details) > 0 {
			if err := po.RecordDiscrepancies(details, confirmation); err != nil {
				return err
			}
			po.AddDomainEvent(order.NewDiscrepancyFlaggedEvent(po, details))
			if err := s.orders.SaveWithLock(ctx, po); err != nil {
				return err
			}
			if err := s.audit.Record(ctx, AuditEntry{
				EventType:      AuditEventDiscrepancyFlagged,
				POID:           po.ID,
				ActorCompanyID: actorCompanyID,
				OldState:       string(priorStatus),
				NewState:       string(po.Status),
				ChangedFields:  discrepancyFields(details),
				BusinessContext: map[string]any{
					"discrepancy_count": len(details),
				},
			}); err != nil {
				return err
			}
			if err := recordDomainEvents(ctx, s.audit, actorCompanyID, po); err != nil {
				return err
			}
			resp = &ConfirmationResponse{
				Status:                string(po.Status),
				FulfillmentStatus:     string(po.FulfillmentStatus),
				FulfillmentPercentage: decimal.Zero,
				Discrepancies:         details,
			}
			return nil
		}

		result, err := s.resolveFulfillment(ctx, po, seller, confirmation, actorCompanyID)
		if err != nil {
			return err
		}
		resp = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Type:            "po_confirmation",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: po.BuyerCompanyID,
		Payload:         map[string]any{"status": resp.Status},
	})
	return resp, nil
}

// Approve processes buyer approval of a flagged confirmation. The
// stored seller payload is re-materialized and fulfillment resolution
// proceeds exactly as it would have without discrepancies.
func (s *ConfirmationService) Approve(ctx context.Context, poID, actorCompanyID uuid.UUID) (*ConfirmationResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(actorCompanyID) {
		return nil, shared.NewPermissionError("only the buyer company can approve this order").
			WithDetail("buyer_company_id", po.BuyerCompanyID.String())
	}
	if po.Status != order.StatusAwaitingBuyerApproval {
		return nil, shared.NewStatusError(string(po.Status), []string{string(order.StatusAwaitingBuyerApproval)})
	}
	if po.SellerConfirmation == nil {
		return nil, shared.NewBusinessRuleError("no seller confirmation stored for approval")
	}
	confirmation := *po.SellerConfirmation

	seller, err := s.companies.FindByID(ctx, po.SellerCompanyID)
	if err != nil {
		return nil, err
	}

	var resp *ConfirmationResponse
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err := s.resolveFulfillment(ctx, po, seller, confirmation, actorCompanyID)
		if err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventApproved,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(order.StatusAwaitingBuyerApproval),
			NewState:       string(po.Status),
		}); err != nil {
			return err
		}
		resp = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Type:            "po_discrepancy_approved",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: po.SellerCompanyID,
	})
	return resp, nil
}

// Reject processes buyer rejection of a flagged confirmation. The
// order returns to PENDING and the discrepancy and seller-confirmed
// payloads are cleared.
func (s *ConfirmationService) Reject(ctx context.Context, poID, actorCompanyID uuid.UUID) (*ConfirmationResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(actorCompanyID) {
		return nil, shared.NewPermissionError("only the buyer company can reject this order").
			WithDetail("buyer_company_id", po.BuyerCompanyID.String())
	}
	if po.Status != order.StatusAwaitingBuyerApproval {
		return nil, shared.NewStatusError(string(po.Status), []string{string(order.StatusAwaitingBuyerApproval)})
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := po.TransitionTo(order.StatusPending); err != nil {
			return err
		}
		po.ClearConfirmationPayloads()
		if err := s.orders.SaveWithLock(ctx, po); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventRejected,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(order.StatusAwaitingBuyerApproval),
			NewState:       string(po.Status),
		}); err != nil {
			return err
		}
		return recordDomainEvents(ctx, s.audit, actorCompanyID, po)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Type:            "po_discrepancy_rejected",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: po.SellerCompanyID,
	})

	return &ConfirmationResponse{
		Status:                string(po.Status),
		FulfillmentStatus:     string(po.FulfillmentStatus),
		FulfillmentPercentage: decimal.Zero,
	}, nil
}

// resolveFulfillment applies the confirmed terms, moves the order to
// CONFIRMED and executes the chosen fulfillment branch. Runs inside the
// caller's transaction.
func (s *ConfirmationService) resolveFulfillment(ctx context.Context, po *order.PurchaseOrder, seller *company.Company, confirmation order.SellerConfirmation, actorCompanyID uuid.UUID) (*ConfirmationResponse, error) {
	instruction := confirmation.Fulfillment
	if err := instruction.Validate(); err != nil {
		return nil, err
	}
	if err := po.ApplyConfirmedTerms(confirmation); err != nil {
		return nil, err
	}
	if err := po.TransitionTo(order.StatusConfirmed); err != nil {
		return nil, err
	}

	var (
		children []*order.PurchaseOrder
		status   order.FulfillmentStatus
	)

	switch instruction.Method {
	case order.FulfillmentMethodCreateChildPOs:
		fanned, allocations, err := s.createChildOrders(ctx, po, seller, instruction.SupplierCount, po.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.allocations.SaveAll(ctx, allocations); err != nil {
			return nil, err
		}
		children = fanned
		status = order.FulfillmentStatusChildPOsCreated
		po.AddDomainEvent(order.NewChildOrdersCreatedEvent(po, children))

	case order.FulfillmentMethodFulfillFromStock:
		allocations, err := s.allocateFromStock(ctx, po, seller, instruction.StockBatches, po.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.allocations.SaveAll(ctx, allocations); err != nil {
			return nil, err
		}
		status = order.FulfillmentStatusFulfilledFromStock

	case order.FulfillmentMethodPartialStockPartialPO:
		stockQty := *instruction.StockQuantity
		poQty := *instruction.POQuantity
		if !order.QuantitiesMatch(stockQty.Add(poQty), po.Quantity) {
			return nil, shared.NewBusinessRuleError("stock and PO quantities do not sum to the order quantity").
				WithDetail("stock_quantity", stockQty.String()).
				WithDetail("po_quantity", poQty.String()).
				WithDetail("order_quantity", po.Quantity.String())
		}

		stockAllocs, err := s.allocateFromStock(ctx, po, seller, instruction.StockBatches, stockQty)
		if err != nil {
			return nil, err
		}
		fanned, chainAllocs, err := s.createChildOrders(ctx, po, seller, 1, poQty)
		if err != nil {
			return nil, err
		}
		if err := s.allocations.SaveAll(ctx, append(stockAllocs, chainAllocs...)); err != nil {
			return nil, err
		}
		children = fanned
		status = order.FulfillmentStatusStockAndChildPOs
		po.AddDomainEvent(order.NewChildOrdersCreatedEvent(po, children))
	}

	po.SetFulfillment(instruction.Method, status, fullPercentage, instruction.Notes)
	if err := s.orders.SaveWithLock(ctx, po); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, AuditEntry{
		EventType:      AuditEventConfirmed,
		POID:           po.ID,
		ActorCompanyID: actorCompanyID,
		NewState:       string(po.Status),
		ChangedFields:  []string{"status", "quantity", "unit_price", "fulfillment_status"},
		BusinessContext: map[string]any{
			"fulfillment_method": string(instruction.Method),
			"child_pos_created":  len(children),
		},
	}); err != nil {
		return nil, err
	}

	if err := recordDomainEvents(ctx, s.audit, actorCompanyID, po); err != nil {
		return nil, err
	}
	for _, child := range children {
		if err := recordDomainEvents(ctx, s.audit, actorCompanyID, child); err != nil {
			return nil, err
		}
	}

	return &ConfirmationResponse{
		Status:                string(po.Status),
		ChildPOsCreated:       len(children),
		FulfillmentStatus:     string(status),
		FulfillmentPercentage: fullPercentage,
	}, nil
}

// createChildOrders fans quantity out to supplier companies resolved
// through the business-relationship collaborator. supplierCount 0 means
// one child per eligible supplier.
func (s *ConfirmationService) createChildOrders(ctx context.Context, po *order.PurchaseOrder, seller *company.Company, supplierCount int, quantity decimal.Decimal) ([]*order.PurchaseOrder, []order.Allocation, error) {
	suppliers, err := s.relationships.FindSuppliers(ctx, seller.ID, po.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if len(suppliers) == 0 {
		return nil, nil, shared.NewBusinessRuleError("no supplier relationships available for fan-out").
			WithDetail("company_id", seller.ID.String()).
			WithDetail("product_id", po.ProductID.String())
	}

	n := len(suppliers)
	if supplierCount > 0 && supplierCount < n {
		n = supplierCount
	}

	shares, err := order.SplitQuantity(quantity, n)
	if err != nil {
		return nil, nil, err
	}

	children := make([]*order.PurchaseOrder, 0, n)
	allocations := make([]order.Allocation, 0, n)
	for k := 0; k < n; k++ {
		child, err := order.NewChildOrder(po, k+1, suppliers[k].ID, shares[k])
		if err != nil {
			return nil, nil, err
		}
		if err := s.orders.Save(ctx, child); err != nil {
			return nil, nil, err
		}
		alloc, err := order.NewChainAllocation(po.ID, child.ID, shares[k])
		if err != nil {
			return nil, nil, err
		}
		children = append(children, child)
		allocations = append(allocations, *alloc)
	}
	return children, allocations, nil
}

// allocateFromStock validates and executes a fulfillment from existing
// inventory batches. Validation happens before any batch is mutated.
func (s *ConfirmationService) allocateFromStock(ctx context.Context, po *order.PurchaseOrder, seller *company.Company, uses []order.StockBatchUse, required decimal.Decimal) ([]order.Allocation, error) {
	if len(uses) == 0 {
		return nil, shared.NewValidationError("stock_batches cannot be empty")
	}

	loaded := make([]*inventory.Batch, len(uses))
	total := decimal.Zero
	for i, use := range uses {
		batch, err := s.batches.FindByID(ctx, use.BatchID)
		if err != nil {
			return nil, err
		}
		if !batch.IsOwnedBy(seller.ID) {
			return nil, shared.NewBusinessRuleError("batch does not belong to company").
				WithDetail("batch_id", use.BatchID.String()).
				WithDetail("company_id", seller.ID.String())
		}
		if use.QuantityUsed.GreaterThan(batch.RemainingQuantity) {
			return nil, shared.NewBusinessRuleError("insufficient quantity").
				WithDetail("batch_id", use.BatchID.String()).
				WithDetail("requested", use.QuantityUsed.String()).
				WithDetail("remaining", batch.RemainingQuantity.String())
		}
		loaded[i] = batch
		total = total.Add(use.QuantityUsed)
	}
	if !order.QuantitiesMatch(total, required) {
		return nil, shared.NewBusinessRuleError("total does not match PO quantity").
			WithDetail("expected", required.String()).
			WithDetail("actual", total.String())
	}

	allocations := make([]order.Allocation, 0, len(uses))
	for i, use := range uses {
		if err := loaded[i].Consume(use.QuantityUsed); err != nil {
			return nil, err
		}
		if err := s.batches.Save(ctx, loaded[i]); err != nil {
			return nil, err
		}
		alloc, err := order.NewInventoryAllocation(po.ID, use.BatchID, use.QuantityUsed, use.ComplianceNotes)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, *alloc)
	}
	return allocations, nil
}

// notify dispatches a notification; failures are logged and swallowed
func (s *ConfirmationService) notify(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification dispatch failed",
			zap.String("type", n.Type),
			zap.String("po_number", n.PONumber),
			zap.Error(err))
	}
}

func discrepancyFields(details []order.DiscrepancyDetail) []string {
	fields := make([]string, len(details))
	for i, d := range details {
		fields[i] = d.Field
	}
	return fields
}
