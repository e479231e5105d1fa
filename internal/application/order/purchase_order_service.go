package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
)

const (
	AuditEventCreated       = "po_created"
	AuditEventIssued        = "po_issued"
	AuditEventAmended       = "po_amendment_requested"
	AuditEventStatusChanged = "po_status_changed"
	AuditEventCancelled     = "po_cancelled"
	AuditEventDeleted       = "po_deleted"
)

// shipment progression steps the seller drives vs the buyer drives
var sellerShipmentSteps = map[order.Status]bool{
	order.StatusInTransit: true,
	order.StatusShipped:   true,
}

var buyerShipmentSteps = map[order.Status]bool{
	order.StatusDelivered: true,
	order.StatusReceived:  true,
}

// PurchaseOrderService covers the order lifecycle outside the
// confirmation workflow: creation, issue, amendment, shipment
// progression, cancellation and deletion.
type PurchaseOrderService struct {
	orders    order.PurchaseOrderRepository
	companies company.Repository
	products  catalog.Repository
	tx        shared.TransactionManager
	audit     AuditRecorder
	notifier  Notifier
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orders order.PurchaseOrderRepository,
	companies company.Repository,
	products catalog.Repository,
	tx shared.TransactionManager,
	audit AuditRecorder,
	notifier Notifier,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:    orders,
		companies: companies,
		products:  products,
		tx:        tx,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create creates a draft order from the acting buyer towards a seller,
// optionally issuing it immediately.
func (s *PurchaseOrderService) Create(ctx context.Context, actorCompanyID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if req.BuyerCompanyID != actorCompanyID {
		return nil, shared.NewPermissionError("orders can only be created on behalf of the acting company")
	}
	if _, err := s.companies.FindByID(ctx, req.SellerCompanyID); err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	number, err := order.GenerateUniqueNumber(ctx, s.orders, time.Now())
	if err != nil {
		return nil, err
	}

	po, err := order.NewPurchaseOrder(number, req.BuyerCompanyID, req.SellerCompanyID, req.ProductID,
		req.Quantity, req.Unit, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	po.DeliveryDate = req.DeliveryDate
	po.DeliveryLocation = req.DeliveryLocation

	if req.Issue {
		if err := po.Issue(); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Save(ctx, po); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventCreated,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			NewState:       string(po.Status),
		}); err != nil {
			return err
		}
		return recordDomainEvents(ctx, s.audit, actorCompanyID, po)
	})
	if err != nil {
		return nil, err
	}

	if req.Issue {
		s.notify(ctx, Notification{
			Type:            "po_issued",
			POID:            po.ID,
			PONumber:        po.Number,
			TargetCompanyID: po.SellerCompanyID,
		})
	}

	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Get returns an order visible to one of its two parties
func (s *PurchaseOrderService) Get(ctx context.Context, poID, actorCompanyID uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.findForParticipant(ctx, poID, actorCompanyID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// GetChildren returns the direct child orders of a chained order
func (s *PurchaseOrderService) GetChildren(ctx context.Context, poID, actorCompanyID uuid.UUID) ([]PurchaseOrderResponse, error) {
	if _, err := s.findForParticipant(ctx, poID, actorCompanyID); err != nil {
		return nil, err
	}
	children, err := s.orders.FindChildren(ctx, poID)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseOrderResponse, len(children))
	for i := range children {
		out[i] = ToPurchaseOrderResponse(&children[i])
	}
	return out, nil
}

// Issue moves a draft order to PENDING and notifies the seller
func (s *PurchaseOrderService) Issue(ctx context.Context, poID, actorCompanyID uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(actorCompanyID) {
		return nil, shared.NewPermissionError("only the buyer company can issue this order")
	}

	prior := po.Status
	if err := po.Issue(); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.SaveWithLock(ctx, po); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventIssued,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(prior),
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
		Type:            "po_issued",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: po.SellerCompanyID,
	})

	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Amend opens an amendment cycle on a confirmed order with new terms.
// Stale confirmation payloads are cleared and the seller must confirm
// again before the order returns to CONFIRMED.
func (s *PurchaseOrderService) Amend(ctx context.Context, poID, actorCompanyID uuid.UUID, req AmendmentRequest) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(actorCompanyID) {
		return nil, shared.NewPermissionError("only the buyer company can amend this order")
	}

	prior := po.Status
	if err := po.StartAmendment(); err != nil {
		return nil, err
	}
	if err := po.AmendTerms(req.Quantity, req.UnitPrice, req.DeliveryDate); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.SaveWithLock(ctx, po); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventAmended,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(prior),
			NewState:       string(po.Status),
			ChangedFields:  []string{"quantity", "unit_price", "delivery_date"},
		}); err != nil {
			return err
		}
		return recordDomainEvents(ctx, s.audit, actorCompanyID, po)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, Notification{
		Type:            "po_amendment_requested",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: po.SellerCompanyID,
	})

	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Progress advances a confirmed order along the shipment leg. The
// seller drives IN_TRANSIT and SHIPPED, the buyer DELIVERED and
// RECEIVED.
func (s *PurchaseOrderService) Progress(ctx context.Context, poID, actorCompanyID uuid.UUID, target order.Status) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}

	switch {
	case sellerShipmentSteps[target]:
		if !po.IsSeller(actorCompanyID) {
			return nil, shared.NewPermissionError("only the seller company can record this shipment step")
		}
	case buyerShipmentSteps[target]:
		if !po.IsBuyer(actorCompanyID) {
			return nil, shared.NewPermissionError("only the buyer company can record this shipment step")
		}
	default:
		return nil, shared.NewValidationError("target status is not a shipment step").
			WithDetail("target", string(target))
	}

	prior := po.Status
	if err := po.TransitionTo(target); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.SaveWithLock(ctx, po); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventStatusChanged,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(prior),
			NewState:       string(po.Status),
		}); err != nil {
			return err
		}
		return recordDomainEvents(ctx, s.audit, actorCompanyID, po)
	})
	if err != nil {
		return nil, err
	}

	counterparty := po.SellerCompanyID
	if po.IsSeller(actorCompanyID) {
		counterparty = po.BuyerCompanyID
	}
	s.notify(ctx, Notification{
		Type:            "po_status_changed",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: counterparty,
		Payload:         map[string]any{"status": string(po.Status)},
	})

	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Cancel cancels an order; either party may cancel
func (s *PurchaseOrderService) Cancel(ctx context.Context, poID, actorCompanyID uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.findForParticipant(ctx, poID, actorCompanyID)
	if err != nil {
		return nil, err
	}

	prior := po.Status
	if err := po.Cancel(); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.SaveWithLock(ctx, po); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventCancelled,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(prior),
			NewState:       string(po.Status),
		}); err != nil {
			return err
		}
		return recordDomainEvents(ctx, s.audit, actorCompanyID, po)
	})
	if err != nil {
		return nil, err
	}

	counterparty := po.SellerCompanyID
	if po.IsSeller(actorCompanyID) {
		counterparty = po.BuyerCompanyID
	}
	s.notify(ctx, Notification{
		Type:            "po_cancelled",
		POID:            po.ID,
		PONumber:        po.Number,
		TargetCompanyID: counterparty,
	})

	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Delete removes an order that has not entered the confirmation flow
func (s *PurchaseOrderService) Delete(ctx context.Context, poID, actorCompanyID uuid.UUID) error {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return err
	}
	if !po.IsBuyer(actorCompanyID) {
		return shared.NewPermissionError("only the buyer company can delete this order")
	}
	if !po.IsDeletable() {
		return shared.NewStatusError(string(po.Status),
			[]string{string(order.StatusDraft), string(order.StatusPending)})
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Delete(ctx, po.ID); err != nil {
			return err
		}
		return s.audit.Record(ctx, AuditEntry{
			EventType:      AuditEventDeleted,
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
			OldState:       string(po.Status),
		})
	})
}

func (s *PurchaseOrderService) findForParticipant(ctx context.Context, poID, companyID uuid.UUID) (*order.PurchaseOrder, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(companyID) && !po.IsSeller(companyID) {
		return nil, shared.NewPermissionError("company is not a party to this order")
	}
	return po, nil
}

func (s *PurchaseOrderService) notify(ctx context.Context, n Notification) {
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
