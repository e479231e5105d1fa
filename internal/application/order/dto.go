package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/order"
)

// CreatePurchaseOrderRequest creates a new draft order
type CreatePurchaseOrderRequest struct {
	BuyerCompanyID   uuid.UUID       `json:"buyer_company_id" binding:"required"`
	SellerCompanyID  uuid.UUID       `json:"seller_company_id" binding:"required"`
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	Unit             string          `json:"unit" binding:"required"`
	UnitPrice        decimal.Decimal `json:"unit_price" binding:"required"`
	DeliveryDate     *time.Time      `json:"delivery_date,omitempty"`
	DeliveryLocation string          `json:"delivery_location,omitempty"`
	Issue            bool            `json:"issue,omitempty"` // issue to seller immediately
}

// StockBatchRequest names one batch used for stock fulfillment
type StockBatchRequest struct {
	BatchID          uuid.UUID       `json:"batch_id" binding:"required"`
	QuantityUsed     decimal.Decimal `json:"quantity_used" binding:"required"`
	AllocationReason string          `json:"allocation_reason,omitempty"`
	ComplianceNotes  string          `json:"compliance_notes,omitempty"`
}

// OriginDataRequest is the origin payload attached by originators
type OriginDataRequest struct {
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	HarvestDate    *time.Time `json:"harvest_date,omitempty"`
	FarmID         string     `json:"farm_id,omitempty"`
	Certifications []string   `json:"certifications,omitempty"`
}

// InputMaterialRequest declares one upstream source of the delivered product
type InputMaterialRequest struct {
	SourcePOID             uuid.UUID       `json:"source_po_id" binding:"required"`
	QuantityUsed           decimal.Decimal `json:"quantity_used"`
	PercentageContribution decimal.Decimal `json:"percentage_contribution" binding:"required"`
}

// ConfirmationRequest is the seller confirmation contract
type ConfirmationRequest struct {
	ConfirmedQuantity         decimal.Decimal        `json:"confirmed_quantity" binding:"required"`
	ConfirmedUnitPrice        decimal.Decimal        `json:"confirmed_unit_price" binding:"required"`
	ConfirmedDeliveryDate     *time.Time             `json:"confirmed_delivery_date,omitempty"`
	ConfirmedDeliveryLocation *string                `json:"confirmed_delivery_location,omitempty"`
	SellerNotes               string                 `json:"seller_notes,omitempty"`
	ProcessingStartDate       *time.Time             `json:"processing_start_date,omitempty"`
	ProcessingEndDate         *time.Time             `json:"processing_end_date,omitempty"`
	FulfillmentMethod         string                 `json:"fulfillment_method" binding:"required"`
	FulfillmentNotes          string                 `json:"fulfillment_notes,omitempty"`
	SupplierCount             int                    `json:"supplier_count,omitempty"`
	StockBatches              []StockBatchRequest    `json:"stock_batches,omitempty"`
	StockQuantity             *decimal.Decimal       `json:"stock_quantity,omitempty"`
	POQuantity                *decimal.Decimal       `json:"po_quantity,omitempty"`
	OriginData                *OriginDataRequest     `json:"origin_data,omitempty"`
	InputMaterials            []InputMaterialRequest `json:"input_materials,omitempty"`
}

// ConfirmationResponse reports the outcome of a confirmation attempt
type ConfirmationResponse struct {
	Status                string                    `json:"status"`
	ChildPOsCreated       int                       `json:"child_pos_created"`
	FulfillmentStatus     string                    `json:"fulfillment_status"`
	FulfillmentPercentage decimal.Decimal           `json:"fulfillment_percentage"`
	Discrepancies         []order.DiscrepancyDetail `json:"discrepancies,omitempty"`
}

// AmendmentRequest proposes changed terms on an existing order
type AmendmentRequest struct {
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
}

// PurchaseOrderResponse is the external representation of an order
type PurchaseOrderResponse struct {
	ID                       uuid.UUID                 `json:"id"`
	Number                   string                    `json:"number"`
	BuyerCompanyID           uuid.UUID                 `json:"buyer_company_id"`
	SellerCompanyID          uuid.UUID                 `json:"seller_company_id"`
	ProductID                uuid.UUID                 `json:"product_id"`
	ParentPOID               *uuid.UUID                `json:"parent_po_id,omitempty"`
	Quantity                 decimal.Decimal           `json:"quantity"`
	Unit                     string                    `json:"unit"`
	UnitPrice                decimal.Decimal           `json:"unit_price"`
	Total                    decimal.Decimal           `json:"total"`
	Status                   string                    `json:"status"`
	DeliveryDate             *time.Time                `json:"delivery_date,omitempty"`
	DeliveryLocation         string                    `json:"delivery_location,omitempty"`
	FulfillmentMethod        string                    `json:"fulfillment_method,omitempty"`
	FulfillmentStatus        string                    `json:"fulfillment_status"`
	FulfillmentPercentage    decimal.Decimal           `json:"fulfillment_percentage"`
	FulfillmentNotes         string                    `json:"fulfillment_notes,omitempty"`
	Discrepancies            []order.DiscrepancyDetail `json:"discrepancies,omitempty"`
	TransparencyToMill       *float64                  `json:"transparency_to_mill,omitempty"`
	TransparencyToPlantation *float64                  `json:"transparency_to_plantation,omitempty"`
	CreatedAt                time.Time                 `json:"created_at"`
	UpdatedAt                time.Time                 `json:"updated_at"`
}

// ToPurchaseOrderResponse maps a domain order to its response form
func ToPurchaseOrderResponse(po *order.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:                       po.ID,
		Number:                   po.Number,
		BuyerCompanyID:           po.BuyerCompanyID,
		SellerCompanyID:          po.SellerCompanyID,
		ProductID:                po.ProductID,
		ParentPOID:               po.ParentPOID,
		Quantity:                 po.Quantity,
		Unit:                     po.Unit,
		UnitPrice:                po.UnitPrice,
		Total:                    po.Total,
		Status:                   string(po.Status),
		DeliveryDate:             po.DeliveryDate,
		DeliveryLocation:         po.DeliveryLocation,
		FulfillmentMethod:        string(po.FulfillmentMethod),
		FulfillmentStatus:        string(po.FulfillmentStatus),
		FulfillmentPercentage:    po.FulfillmentPercentage,
		FulfillmentNotes:         po.FulfillmentNotes,
		Discrepancies:            po.DiscrepancyDetails,
		TransparencyToMill:       po.TransparencyToMill,
		TransparencyToPlantation: po.TransparencyToPlantation,
		CreatedAt:                po.CreatedAt,
		UpdatedAt:                po.UpdatedAt,
	}
}

// toSellerConfirmation converts the request into the domain payload
func (r ConfirmationRequest) toSellerConfirmation(now time.Time) order.SellerConfirmation {
	sc := order.SellerConfirmation{
		Quantity:         r.ConfirmedQuantity,
		UnitPrice:        r.ConfirmedUnitPrice,
		DeliveryDate:     r.ConfirmedDeliveryDate,
		DeliveryLocation: r.ConfirmedDeliveryLocation,
		SellerNotes:      r.SellerNotes,
		ProcessingStart:  r.ProcessingStartDate,
		ProcessingEnd:    r.ProcessingEndDate,
		ConfirmedAt:      now,
		Fulfillment: order.FulfillmentInstruction{
			Method:        order.FulfillmentMethod(r.FulfillmentMethod),
			SupplierCount: r.SupplierCount,
			StockQuantity: r.StockQuantity,
			POQuantity:    r.POQuantity,
			Notes:         r.FulfillmentNotes,
		},
	}
	for _, b := range r.StockBatches {
		sc.Fulfillment.StockBatches = append(sc.Fulfillment.StockBatches, order.StockBatchUse{
			BatchID:          b.BatchID,
			QuantityUsed:     b.QuantityUsed,
			AllocationReason: b.AllocationReason,
			ComplianceNotes:  b.ComplianceNotes,
		})
	}
	if r.OriginData != nil {
		od := &order.OriginData{
			HarvestDate:    r.OriginData.HarvestDate,
			FarmID:         r.OriginData.FarmID,
			Certifications: r.OriginData.Certifications,
		}
		if r.OriginData.Latitude != nil && r.OriginData.Longitude != nil {
			od.Coordinates = &order.GeoPoint{
				Latitude:  *r.OriginData.Latitude,
				Longitude: *r.OriginData.Longitude,
			}
		}
		sc.OriginData = od
	}
	for _, m := range r.InputMaterials {
		sc.InputMaterials = append(sc.InputMaterials, order.InputMaterial{
			SourcePOID:             m.SourcePOID,
			QuantityUsed:           m.QuantityUsed,
			PercentageContribution: m.PercentageContribution,
		})
	}
	return sc
}
