package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// Status represents the status of a purchase order
type Status string

const (
	StatusDraft                 Status = "DRAFT"
	StatusPending               Status = "PENDING"
	StatusAmendmentPending      Status = "AMENDMENT_PENDING"
	StatusAwaitingBuyerApproval Status = "AWAITING_BUYER_APPROVAL"
	StatusConfirmed             Status = "CONFIRMED"
	StatusInTransit             Status = "IN_TRANSIT"
	StatusShipped               Status = "SHIPPED"
	StatusDelivered             Status = "DELIVERED"
	StatusReceived              Status = "RECEIVED"
	StatusCancelled             Status = "CANCELLED"
	StatusRejected              Status = "REJECTED"
)

// allowedTransitions is the legal transition table. A transition to
// AWAITING_BUYER_APPROVAL happens only through the confirmation workflow
// when discrepancies are found.
var allowedTransitions = map[Status][]Status{
	StatusDraft:                 {StatusPending, StatusAmendmentPending, StatusCancelled},
	StatusPending:               {StatusConfirmed, StatusAmendmentPending, StatusCancelled, StatusDraft, StatusAwaitingBuyerApproval},
	StatusAmendmentPending:      {StatusDraft, StatusPending, StatusConfirmed, StatusCancelled, StatusAwaitingBuyerApproval},
	StatusAwaitingBuyerApproval: {StatusConfirmed, StatusPending},
	StatusConfirmed:             {StatusInTransit, StatusShipped, StatusAmendmentPending, StatusCancelled},
	StatusInTransit:             {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:               {StatusDelivered, StatusReceived, StatusCancelled},
	StatusDelivered:             {StatusReceived, StatusCancelled},
	StatusReceived:              {},
	StatusCancelled:             {},
	StatusRejected:              {},
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	targets, ok := allowedTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from this one
func (s Status) AllowedTargets() []Status {
	targets := allowedTransitions[s]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// GeoPoint is a geographic coordinate pair
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OriginData captures plantation-level facts attached by an originator
// at confirmation time
type OriginData struct {
	Coordinates    *GeoPoint  `json:"coordinates,omitempty"`
	HarvestDate    *time.Time `json:"harvest_date,omitempty"`
	FarmID         string     `json:"farm_id,omitempty"`
	Certifications []string   `json:"certifications,omitempty"`
}

// InputMaterial links a PO to an upstream source PO it was produced from
type InputMaterial struct {
	SourcePOID             uuid.UUID       `json:"source_po_id"`
	QuantityUsed           decimal.Decimal `json:"quantity_used"`
	PercentageContribution decimal.Decimal `json:"percentage_contribution"`
}

// percentageTolerance bounds rounding drift when input material
// contributions are required to sum to 100%.
var percentageTolerance = decimal.NewFromFloat(0.01)

// ValidateInputMaterials checks that every entry names a source PO and
// that the contributions sum to 100% within tolerance
func ValidateInputMaterials(materials []InputMaterial) error {
	if len(materials) == 0 {
		return nil
	}
	sum := decimal.Zero
	for i, m := range materials {
		if m.SourcePOID == uuid.Nil {
			return shared.NewValidationError("input material source PO ID cannot be empty").
				WithDetail("index", i)
		}
		if m.PercentageContribution.LessThanOrEqual(decimal.Zero) {
			return shared.NewValidationError("input material percentage contribution must be positive").
				WithDetail("index", i)
		}
		sum = sum.Add(m.PercentageContribution)
	}
	if sum.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(percentageTolerance) {
		return shared.NewValidationError("input material contributions must sum to 100%").
			WithDetail("sum", sum.String())
	}
	return nil
}

// SellerConfirmation is the seller-confirmed payload stored on the PO
// while buyer approval is pending. It carries both the confirmed terms
// and the fulfillment instruction so an approval can resume exactly
// where the confirmation left off.
type SellerConfirmation struct {
	Quantity         decimal.Decimal        `json:"quantity"`
	UnitPrice        decimal.Decimal        `json:"unit_price"`
	DeliveryDate     *time.Time             `json:"delivery_date,omitempty"`
	DeliveryLocation *string                `json:"delivery_location,omitempty"`
	SellerNotes      string                 `json:"seller_notes,omitempty"`
	ProcessingStart  *time.Time             `json:"processing_start,omitempty"`
	ProcessingEnd    *time.Time             `json:"processing_end,omitempty"`
	OriginData       *OriginData            `json:"origin_data,omitempty"`
	InputMaterials   []InputMaterial        `json:"input_materials,omitempty"`
	Fulfillment      FulfillmentInstruction `json:"fulfillment"`
	ConfirmedAt      time.Time              `json:"confirmed_at"`
}

// PurchaseOrder is the core transactable unit between a buyer and a
// seller company. Orders chain into a forest via ParentPOID and into a
// wider sourcing graph via InputMaterials.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Number          string     `gorm:"type:varchar(60);not null;uniqueIndex"`
	BuyerCompanyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	SellerCompanyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentPOID      *uuid.UUID `gorm:"column:parent_po_id;type:uuid;index"`

	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Status Status `gorm:"type:varchar(30);not null;default:'DRAFT';index"`

	DeliveryDate     *time.Time
	DeliveryLocation string `gorm:"type:varchar(300)"`

	// Processing window reported by processor-tier sellers at
	// confirmation time
	ProcessingStartDate *time.Time
	ProcessingEndDate   *time.Time

	// Original terms, captured once on the first seller confirmation
	OriginalQuantity         *decimal.Decimal `gorm:"type:decimal(18,4)"`
	OriginalUnitPrice        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	OriginalDeliveryDate     *time.Time
	OriginalDeliveryLocation *string `gorm:"type:varchar(300)"`
	OriginalsCapturedAt      *time.Time

	ConfirmedQuantity         *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ConfirmedUnitPrice        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ConfirmedDeliveryDate     *time.Time
	ConfirmedDeliveryLocation *string `gorm:"type:varchar(300)"`

	SellerConfirmation *SellerConfirmation `gorm:"serializer:json"`
	DiscrepancyDetails []DiscrepancyDetail `gorm:"serializer:json"`
	InputMaterials     []InputMaterial     `gorm:"serializer:json"`
	OriginData         *OriginData         `gorm:"serializer:json"`

	FulfillmentMethod     FulfillmentMethod `gorm:"type:varchar(30)"`
	FulfillmentStatus     FulfillmentStatus `gorm:"type:varchar(30)"`
	FulfillmentPercentage decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0"`
	FulfillmentNotes      string            `gorm:"type:text"`

	// Transparency score cache
	TransparencyToMill       *float64 `gorm:"type:decimal(5,4)"`
	TransparencyToPlantation *float64 `gorm:"type:decimal(5,4)"`
	TransparencyCalculatedAt *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in DRAFT status
func NewPurchaseOrder(number string, buyerID, sellerID, productID uuid.UUID, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal) (*PurchaseOrder, error) {
	if number == "" {
		return nil, shared.NewValidationError("order number cannot be empty")
	}
	if len(number) > 60 {
		return nil, shared.NewValidationError("order number cannot exceed 60 characters")
	}
	if buyerID == uuid.Nil || sellerID == uuid.Nil {
		return nil, shared.NewValidationError("buyer and seller company IDs are required")
	}
	if buyerID == sellerID {
		return nil, shared.NewValidationError("buyer and seller cannot be the same company")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("quantity must be positive")
	}
	if unit == "" {
		return nil, shared.NewValidationError("unit cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit price cannot be negative")
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		BuyerCompanyID:    buyerID,
		SellerCompanyID:   sellerID,
		ProductID:         productID,
		Quantity:          quantity,
		Unit:              unit,
		UnitPrice:         unitPrice,
		Status:            StatusDraft,
		FulfillmentStatus: FulfillmentStatusPending,
	}
	po.recalculateTotal()

	po.AddDomainEvent(NewCreatedEvent(po))

	return po, nil
}

// recalculateTotal keeps the Total = Quantity * UnitPrice invariant
func (po *PurchaseOrder) recalculateTotal() {
	po.Total = po.Quantity.Mul(po.UnitPrice)
}

// TransitionTo moves the PO to the target status, enforcing the
// transition table. Illegal transitions return a StatusError naming the
// current status and the allowed set.
func (po *PurchaseOrder) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown status %q", string(target)))
	}
	if !po.Status.CanTransitionTo(target) {
		return shared.NewStatusError(string(po.Status), statusStrings(po.Status.AllowedTargets()))
	}

	from := po.Status
	po.Status = target
	po.UpdatedAt = time.Now()

	po.AddDomainEvent(NewStatusChangedEvent(po, from, target))

	return nil
}

// Issue moves a draft order to PENDING, making it visible to the seller
func (po *PurchaseOrder) Issue() error {
	if po.Status != StatusDraft {
		return shared.NewStatusError(string(po.Status), []string{string(StatusDraft)})
	}
	return po.TransitionTo(StatusPending)
}

// Cancel cancels the order
func (po *PurchaseOrder) Cancel() error {
	return po.TransitionTo(StatusCancelled)
}

// IsDeletable returns true while the order may still be deleted
func (po *PurchaseOrder) IsDeletable() bool {
	return po.Status == StatusDraft || po.Status == StatusPending
}

// CaptureOriginalTerms snapshots the current terms as the originals.
// Idempotent: once captured, the snapshot is never overwritten.
func (po *PurchaseOrder) CaptureOriginalTerms() {
	if po.OriginalsCapturedAt != nil {
		return
	}
	now := time.Now()
	qty := po.Quantity
	price := po.UnitPrice
	po.OriginalQuantity = &qty
	po.OriginalUnitPrice = &price
	if po.DeliveryDate != nil {
		d := *po.DeliveryDate
		po.OriginalDeliveryDate = &d
	}
	if po.DeliveryLocation != "" {
		loc := po.DeliveryLocation
		po.OriginalDeliveryLocation = &loc
	}
	po.OriginalsCapturedAt = &now
}

// RecordDiscrepancies stores the seller-confirmed payload and the
// discrepancy list, and parks the order for buyer approval
func (po *PurchaseOrder) RecordDiscrepancies(details []DiscrepancyDetail, confirmation SellerConfirmation) error {
	if len(details) == 0 {
		return shared.NewValidationError("discrepancy list cannot be empty")
	}
	if err := po.TransitionTo(StatusAwaitingBuyerApproval); err != nil {
		return err
	}
	po.DiscrepancyDetails = details
	po.SellerConfirmation = &confirmation
	po.UpdatedAt = time.Now()
	return nil
}

// ClearConfirmationPayloads drops the discrepancy and seller-confirmed
// payloads, used when the buyer rejects or an amendment cycle restarts
func (po *PurchaseOrder) ClearConfirmationPayloads() {
	po.DiscrepancyDetails = nil
	po.SellerConfirmation = nil
	po.UpdatedAt = time.Now()
}

// ApplyConfirmedTerms writes the seller's confirmed values onto the
// canonical fields and records them in the Confirmed* columns. The
// Total invariant is maintained.
func (po *PurchaseOrder) ApplyConfirmedTerms(confirmation SellerConfirmation) error {
	if confirmation.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("confirmed quantity must be positive")
	}
	if confirmation.UnitPrice.IsNegative() {
		return shared.NewValidationError("confirmed unit price cannot be negative")
	}
	if err := ValidateInputMaterials(confirmation.InputMaterials); err != nil {
		return err
	}

	qty := confirmation.Quantity
	price := confirmation.UnitPrice
	po.Quantity = qty
	po.UnitPrice = price
	po.ConfirmedQuantity = &qty
	po.ConfirmedUnitPrice = &price
	if confirmation.DeliveryDate != nil {
		d := *confirmation.DeliveryDate
		po.DeliveryDate = &d
		po.ConfirmedDeliveryDate = &d
	}
	if confirmation.DeliveryLocation != nil {
		po.DeliveryLocation = *confirmation.DeliveryLocation
		po.ConfirmedDeliveryLocation = confirmation.DeliveryLocation
	}
	if confirmation.ProcessingStart != nil {
		po.ProcessingStartDate = confirmation.ProcessingStart
	}
	if confirmation.ProcessingEnd != nil {
		po.ProcessingEndDate = confirmation.ProcessingEnd
	}
	if confirmation.OriginData != nil {
		po.OriginData = confirmation.OriginData
	}
	if len(confirmation.InputMaterials) > 0 {
		po.InputMaterials = confirmation.InputMaterials
	}
	po.recalculateTotal()
	po.UpdatedAt = time.Now()
	return nil
}

// SetFulfillment records how the order's quantity was resolved
func (po *PurchaseOrder) SetFulfillment(method FulfillmentMethod, status FulfillmentStatus, percentage decimal.Decimal, notes string) {
	po.FulfillmentMethod = method
	po.FulfillmentStatus = status
	po.FulfillmentPercentage = percentage
	po.FulfillmentNotes = notes
	po.UpdatedAt = time.Now()
}

// StartAmendment moves the order into the amendment cycle and clears
// any stale confirmation payloads
func (po *PurchaseOrder) StartAmendment() error {
	if err := po.TransitionTo(StatusAmendmentPending); err != nil {
		return err
	}
	po.ClearConfirmationPayloads()
	po.AddDomainEvent(NewAmendmentRequestedEvent(po))
	return nil
}

// AmendTerms updates the order terms during an amendment cycle
func (po *PurchaseOrder) AmendTerms(quantity, unitPrice decimal.Decimal, deliveryDate *time.Time) error {
	if po.Status != StatusAmendmentPending && po.Status != StatusDraft {
		return shared.NewStatusError(string(po.Status), []string{string(StatusAmendmentPending), string(StatusDraft)})
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("unit price cannot be negative")
	}
	po.Quantity = quantity
	po.UnitPrice = unitPrice
	if deliveryDate != nil {
		d := *deliveryDate
		po.DeliveryDate = &d
	}
	po.recalculateTotal()
	po.UpdatedAt = time.Now()
	return nil
}

// UpdateTransparencyScores overwrites the cached transparency scores
func (po *PurchaseOrder) UpdateTransparencyScores(ttm, ttp float64, at time.Time) {
	po.TransparencyToMill = &ttm
	po.TransparencyToPlantation = &ttp
	po.TransparencyCalculatedAt = &at
	po.UpdatedAt = time.Now()
}

// HasFreshTransparencyScores reports whether the cached scores are
// still usable for the given TTL
func (po *PurchaseOrder) HasFreshTransparencyScores(ttl time.Duration, now time.Time) bool {
	if po.TransparencyToMill == nil || po.TransparencyToPlantation == nil || po.TransparencyCalculatedAt == nil {
		return false
	}
	return now.Sub(*po.TransparencyCalculatedAt) < ttl
}

// IsSeller returns true if the given company is the seller of this order
func (po *PurchaseOrder) IsSeller(companyID uuid.UUID) bool {
	return po.SellerCompanyID == companyID
}

// IsBuyer returns true if the given company is the buyer of this order
func (po *PurchaseOrder) IsBuyer(companyID uuid.UUID) bool {
	return po.BuyerCompanyID == companyID
}

// HasOriginData returns true when plantation-level facts are attached
func (po *PurchaseOrder) HasOriginData() bool {
	return po.OriginData != nil
}

// HasProcessingDates returns true when the processing window is recorded
func (po *PurchaseOrder) HasProcessingDates() bool {
	return po.ProcessingStartDate != nil && po.ProcessingEndDate != nil
}

// RootNumber returns the topmost order number in a chained number,
// e.g. "PO-001" for "PO-001-S1-S2"
func (po *PurchaseOrder) RootNumber() string {
	if idx := strings.Index(po.Number, "-S"); idx > 0 {
		return po.Number[:idx]
	}
	return po.Number
}
