package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// FulfillmentMethod selects how a confirmed PO's quantity is satisfied
type FulfillmentMethod string

const (
	FulfillmentMethodCreateChildPOs        FulfillmentMethod = "create_child_pos"
	FulfillmentMethodFulfillFromStock      FulfillmentMethod = "fulfill_from_stock"
	FulfillmentMethodPartialStockPartialPO FulfillmentMethod = "partial_stock_partial_po"
)

// IsValid checks whether the fulfillment method is a known value
func (m FulfillmentMethod) IsValid() bool {
	switch m {
	case FulfillmentMethodCreateChildPOs, FulfillmentMethodFulfillFromStock, FulfillmentMethodPartialStockPartialPO:
		return true
	}
	return false
}

// String returns the string representation of the method
func (m FulfillmentMethod) String() string {
	return string(m)
}

// FulfillmentStatus records the outcome of fulfillment resolution
type FulfillmentStatus string

const (
	FulfillmentStatusPending            FulfillmentStatus = "pending"
	FulfillmentStatusChildPOsCreated    FulfillmentStatus = "child_pos_created"
	FulfillmentStatusFulfilledFromStock FulfillmentStatus = "fulfilled_from_stock"
	FulfillmentStatusStockAndChildPOs   FulfillmentStatus = "stock_and_child_pos"
)

// StockBatchUse names a batch and how much of it fulfills the order
type StockBatchUse struct {
	BatchID          uuid.UUID       `json:"batch_id"`
	QuantityUsed     decimal.Decimal `json:"quantity_used"`
	AllocationReason string          `json:"allocation_reason,omitempty"`
	ComplianceNotes  string          `json:"compliance_notes,omitempty"`
}

// FulfillmentInstruction is the caller's choice of how to resolve a
// confirmed order. It travels inside the seller-confirmed payload so a
// deferred buyer approval can execute it unchanged.
type FulfillmentInstruction struct {
	Method        FulfillmentMethod `json:"method"`
	SupplierCount int               `json:"supplier_count,omitempty"` // 0 = one child per eligible supplier
	StockBatches  []StockBatchUse   `json:"stock_batches,omitempty"`
	StockQuantity *decimal.Decimal  `json:"stock_quantity,omitempty"`
	POQuantity    *decimal.Decimal  `json:"po_quantity,omitempty"`
	Notes         string            `json:"notes,omitempty"`
}

// Validate checks the instruction shape before any mutation occurs
func (fi FulfillmentInstruction) Validate() error {
	switch fi.Method {
	case FulfillmentMethodCreateChildPOs:
		if fi.SupplierCount < 0 {
			return shared.NewValidationError("supplier count cannot be negative")
		}
	case FulfillmentMethodFulfillFromStock:
		if len(fi.StockBatches) == 0 {
			return shared.NewValidationError("stock_batches is required for fulfill_from_stock")
		}
	case FulfillmentMethodPartialStockPartialPO:
		if fi.StockQuantity == nil {
			return shared.NewValidationError("stock_quantity is required for partial_stock_partial_po")
		}
		if fi.POQuantity == nil {
			return shared.NewValidationError("po_quantity is required for partial_stock_partial_po")
		}
		if len(fi.StockBatches) == 0 {
			return shared.NewValidationError("stock_batches is required for partial_stock_partial_po")
		}
	default:
		return shared.NewValidationError("Invalid fulfillment method").
			WithDetail("method", string(fi.Method))
	}
	return nil
}

// quantityTolerance is the absolute tolerance for allocation sums
var quantityTolerance = decimal.NewFromFloat(0.01)

// QuantitiesMatch reports whether two quantities are equal within the
// fixed 0.01-unit tolerance
func QuantitiesMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(quantityTolerance)
}

// ChildNumber derives the number of the k-th (1-based) child order.
// Numbering composes left-to-right across nesting levels:
// "PO-001" -> "PO-001-S1" -> "PO-001-S1-S1".
func ChildNumber(parentNumber string, k int) string {
	return fmt.Sprintf("%s-S%d", parentNumber, k)
}

// SplitQuantity divides a total across n recipients by equal division
// with 2-decimal rounding. Any rounding remainder lands on the last
// share so the split always sums exactly to the total.
func SplitQuantity(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, shared.NewValidationError("split count must be positive")
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("split total must be positive")
	}
	if n == 1 {
		return []decimal.Decimal{total}, nil
	}

	share := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	shares := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = share
		running = running.Add(share)
	}
	shares[n-1] = total.Sub(running)

	if shares[n-1].LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("split produces a non-positive share").
			WithDetail("total", total.String()).
			WithDetail("count", n)
	}
	return shares, nil
}

// NewChildOrder creates a child PO fanning out part of a parent's
// quantity to a supplier. The confirming seller of the parent becomes
// the buyer of the child. Children start PENDING, awaiting supplier
// confirmation.
func NewChildOrder(parent *PurchaseOrder, k int, supplierID uuid.UUID, quantity decimal.Decimal) (*PurchaseOrder, error) {
	child, err := NewPurchaseOrder(
		ChildNumber(parent.Number, k),
		parent.SellerCompanyID,
		supplierID,
		parent.ProductID,
		quantity,
		parent.Unit,
		parent.UnitPrice,
	)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	child.ParentPOID = &parentID
	if parent.DeliveryDate != nil {
		d := *parent.DeliveryDate
		child.DeliveryDate = &d
	}
	if err := child.Issue(); err != nil {
		return nil, err
	}
	return child, nil
}
