package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/supplytrace/backend/internal/application/order"
	"github.com/supplytrace/backend/internal/domain/order"
)

// orderService is the purchase order lifecycle surface consumed by the
// HTTP layer
type orderService interface {
	Create(ctx context.Context, actorCompanyID uuid.UUID, req apporder.CreatePurchaseOrderRequest) (*apporder.PurchaseOrderResponse, error)
	Get(ctx context.Context, poID, actorCompanyID uuid.UUID) (*apporder.PurchaseOrderResponse, error)
	GetChildren(ctx context.Context, poID, actorCompanyID uuid.UUID) ([]apporder.PurchaseOrderResponse, error)
	Issue(ctx context.Context, poID, actorCompanyID uuid.UUID) (*apporder.PurchaseOrderResponse, error)
	Amend(ctx context.Context, poID, actorCompanyID uuid.UUID, req apporder.AmendmentRequest) (*apporder.PurchaseOrderResponse, error)
	Progress(ctx context.Context, poID, actorCompanyID uuid.UUID, target order.Status) (*apporder.PurchaseOrderResponse, error)
	Cancel(ctx context.Context, poID, actorCompanyID uuid.UUID) (*apporder.PurchaseOrderResponse, error)
	Delete(ctx context.Context, poID, actorCompanyID uuid.UUID) error
}

// confirmationService is the seller confirmation surface consumed by the
// HTTP layer
type confirmationService interface {
	Confirm(ctx context.Context, poID, actorCompanyID uuid.UUID, req apporder.ConfirmationRequest) (*apporder.ConfirmationResponse, error)
	Approve(ctx context.Context, poID, actorCompanyID uuid.UUID) (*apporder.ConfirmationResponse, error)
	Reject(ctx context.Context, poID, actorCompanyID uuid.UUID) (*apporder.ConfirmationResponse, error)
}

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders        orderService
	confirmations confirmationService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders orderService, confirmations confirmationService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orders:        orders,
		confirmations: confirmations,
	}
}

// RegisterRoutes registers purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pos := rg.Group("/purchase-orders")
	{
		pos.POST("", h.Create)
		pos.GET("/:id", h.Get)
		pos.GET("/:id/children", h.GetChildren)
		pos.POST("/:id/issue", h.Issue)
		pos.PUT("/:id/amend", h.Amend)
		pos.POST("/:id/confirm", h.Confirm)
		pos.POST("/:id/approve", h.Approve)
		pos.POST("/:id/reject", h.Reject)
		pos.POST("/:id/status", h.Progress)
		pos.POST("/:id/cancel", h.Cancel)
		pos.DELETE("/:id", h.Delete)
	}
}

// Create creates a new purchase order for the acting buyer
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, err := actorCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid company ID")
		return
	}

	var req apporder.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one purchase order visible to the acting company
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.orders.Get(c.Request.Context(), poID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetChildren returns the child orders created to fulfill an order
func (h *PurchaseOrderHandler) GetChildren(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.orders.GetChildren(c.Request.Context(), poID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Issue sends a draft order to the seller
func (h *PurchaseOrderHandler) Issue(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.orders.Issue(c.Request.Context(), poID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Amend proposes changed terms on an issued order
func (h *PurchaseOrderHandler) Amend(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req apporder.AmendmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Amend(c.Request.Context(), poID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm records the seller confirmation and resolves fulfillment
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req apporder.ConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.confirmations.Confirm(c.Request.Context(), poID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve accepts a discrepant confirmation on behalf of the buyer
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.confirmations.Approve(c.Request.Context(), poID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject sends a discrepant confirmation back to the seller
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.confirmations.Reject(c.Request.Context(), poID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// progressRequest names the shipment step to advance to
type progressRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
}

// Progress advances a confirmed order through the shipment steps
func (h *PurchaseOrderHandler) Progress(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Progress(c.Request.Context(), poID, actor, order.Status(req.TargetStatus))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels an order on behalf of either party
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.orders.Cancel(c.Request.Context(), poID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an order that was never confirmed
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), poID, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PurchaseOrderHandler) actorAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actor, err := actorCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid company ID")
		return uuid.Nil, uuid.Nil, false
	}
	poID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return actor, poID, true
}
