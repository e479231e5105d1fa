package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apptrace "github.com/supplytrace/backend/internal/application/trace"
	"github.com/supplytrace/backend/internal/domain/shared"
)

var errCompanyMismatch = shared.NewPermissionError("company can only refresh its own orders")

// traceabilityService builds traceability trees for the HTTP layer
type traceabilityService interface {
	Trace(ctx context.Context, poID, actorCompanyID uuid.UUID, req apptrace.TraceRequest) (*apptrace.TraceResponse, error)
}

// transparencyService serves and refreshes transparency scores
type transparencyService interface {
	Get(ctx context.Context, poID, actorCompanyID uuid.UUID, force bool) (*apptrace.TransparencyResponse, error)
	BulkRefresh(ctx context.Context, companyID uuid.UUID, req apptrace.BulkRefreshRequest) (*apptrace.BulkRefreshResponse, error)
}

// TraceHandler handles traceability and transparency API endpoints
type TraceHandler struct {
	BaseHandler
	traces       traceabilityService
	transparency transparencyService
}

// NewTraceHandler creates a new TraceHandler
func NewTraceHandler(traces traceabilityService, transparency transparencyService) *TraceHandler {
	return &TraceHandler{
		traces:       traces,
		transparency: transparency,
	}
}

// RegisterRoutes registers traceability routes
func (h *TraceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pos := rg.Group("/purchase-orders")
	{
		pos.GET("/:id/trace", h.Trace)
		pos.GET("/:id/transparency", h.Transparency)
	}
	companies := rg.Group("/companies")
	{
		companies.POST("/:id/transparency/refresh", h.BulkRefresh)
	}
}

// Trace returns the traceability tree rooted at an order
func (h *TraceHandler) Trace(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req apptrace.TraceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.traces.Trace(c.Request.Context(), poID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transparency returns an order's transparency scores, recomputing on
// force=true
func (h *TraceHandler) Transparency(c *gin.Context) {
	actor, poID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	force := c.Query("force") == "true"
	resp, err := h.transparency.Get(c.Request.Context(), poID, actor, force)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BulkRefresh recomputes stale scores across a company's orders
func (h *TraceHandler) BulkRefresh(c *gin.Context) {
	actor, err := actorCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing or invalid company ID")
		return
	}

	companyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}
	if companyID != actor {
		h.HandleError(c, errCompanyMismatch)
		return
	}

	var req apptrace.BulkRefreshRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	resp, err := h.transparency.BulkRefresh(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *TraceHandler) actorAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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
