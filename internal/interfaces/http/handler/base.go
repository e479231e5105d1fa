package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/shared"
	"github.com/supplytrace/backend/internal/interfaces/http/dto"
	"github.com/supplytrace/backend/internal/interfaces/http/middleware"
)

// ActorCompanyHeader names the authenticated company on each request.
// An API gateway terminates authentication upstream and injects it.
const ActorCompanyHeader = "X-Company-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// actorCompanyID extracts the acting company from the request
func actorCompanyID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(ActorCompanyHeader)
	if raw == "" {
		return uuid.Nil, errors.New("company ID not found in request")
	}
	return uuid.Parse(raw)
}

// pathID parses a UUID path parameter
func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// Success sends a 200 success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, message, getRequestID(c), nil))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		"UNAUTHORIZED", message, getRequestID(c), nil))
}

// HandleError converts domain errors to HTTP responses. Unknown error
// types are masked as internal errors.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.HTTPStatusForKind(domainErr.Kind)
		c.JSON(status, dto.NewErrorResponseWithRequestID(
			string(domainErr.Kind), domainErr.Message, requestID, domainErr.Details))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "An unexpected error occurred", requestID, nil))
}
