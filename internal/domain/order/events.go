package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypeCreated            = "PurchaseOrderCreated"
	EventTypeStatusChanged      = "PurchaseOrderStatusChanged"
	EventTypeConfirmed          = "PurchaseOrderConfirmed"
	EventTypeDiscrepancyFlagged = "PurchaseOrderDiscrepancyFlagged"
	EventTypeAmendmentRequested = "PurchaseOrderAmendmentRequested"
	EventTypeChildOrdersCreated = "PurchaseOrderChildOrdersCreated"
)

// CreatedEvent is raised when a new purchase order is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	Number          string          `json:"number"`
	BuyerCompanyID  uuid.UUID       `json:"buyer_company_id"`
	SellerCompanyID uuid.UUID       `json:"seller_company_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(po *PurchaseOrder) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, AggregateTypePurchaseOrder, po.ID),
		Number:          po.Number,
		BuyerCompanyID:  po.BuyerCompanyID,
		SellerCompanyID: po.SellerCompanyID,
		ProductID:       po.ProductID,
		Quantity:        po.Quantity,
		Unit:            po.Unit,
	}
}

// StatusChangedEvent is raised on every legal status transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	Number    string `json:"number"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(po *PurchaseOrder, from, to Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, AggregateTypePurchaseOrder, po.ID),
		Number:          po.Number,
		OldStatus:       from,
		NewStatus:       to,
	}
}

// DiscrepancyFlaggedEvent is raised when a seller confirmation differs
// materially from the original terms
type DiscrepancyFlaggedEvent struct {
	shared.BaseDomainEvent
	Number           string              `json:"number"`
	DiscrepancyCount int                 `json:"discrepancy_count"`
	Details          []DiscrepancyDetail `json:"details"`
}

// NewDiscrepancyFlaggedEvent creates a new DiscrepancyFlaggedEvent
func NewDiscrepancyFlaggedEvent(po *PurchaseOrder, details []DiscrepancyDetail) *DiscrepancyFlaggedEvent {
	return &DiscrepancyFlaggedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDiscrepancyFlagged, AggregateTypePurchaseOrder, po.ID),
		Number:           po.Number,
		DiscrepancyCount: len(details),
		Details:          details,
	}
}

// AmendmentRequestedEvent is raised when an order enters the amendment cycle
type AmendmentRequestedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewAmendmentRequestedEvent creates a new AmendmentRequestedEvent
func NewAmendmentRequestedEvent(po *PurchaseOrder) *AmendmentRequestedEvent {
	return &AmendmentRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAmendmentRequested, AggregateTypePurchaseOrder, po.ID),
		Number:          po.Number,
	}
}

// ChildOrdersCreatedEvent is raised when fulfillment fans an order out
// into child orders
type ChildOrdersCreatedEvent struct {
	shared.BaseDomainEvent
	Number       string      `json:"number"`
	ChildNumbers []string    `json:"child_numbers"`
	ChildIDs     []uuid.UUID `json:"child_ids"`
}

// NewChildOrdersCreatedEvent creates a new ChildOrdersCreatedEvent
func NewChildOrdersCreatedEvent(po *PurchaseOrder, children []*PurchaseOrder) *ChildOrdersCreatedEvent {
	numbers := make([]string, len(children))
	ids := make([]uuid.UUID, len(children))
	for i, c := range children {
		numbers[i] = c.Number
		ids[i] = c.ID
	}
	return &ChildOrdersCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChildOrdersCreated, AggregateTypePurchaseOrder, po.ID),
		Number:          po.Number,
		ChildNumbers:    numbers,
		ChildIDs:        ids,
	}
}
