package shared

import (
	"fmt"
	"strings"
)

// ErrorKind classifies domain errors into the categories callers branch on.
type ErrorKind string

const (
	ErrorKindValidation   ErrorKind = "VALIDATION_ERROR"
	ErrorKindNotFound     ErrorKind = "NOT_FOUND"
	ErrorKindPermission   ErrorKind = "PERMISSION_DENIED"
	ErrorKindStatus       ErrorKind = "STATUS_ERROR"
	ErrorKindBusinessRule ErrorKind = "BUSINESS_RULE_VIOLATION"
	ErrorKindConcurrency  ErrorKind = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error with structured detail.
// Details carries field-level context (field name, expected vs actual,
// current status and allowed statuses) for the caller to surface.
type DomainError struct {
	Kind    ErrorKind      `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is allows errors.Is comparisons against the kind sentinels below
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// WithDetail attaches a single detail entry and returns the error
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// NewValidationError reports malformed or incomplete input
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrorKindValidation, message)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(ErrorKindNotFound, fmt.Sprintf("%s not found", resource))
}

// NewPermissionError reports the wrong company acting on a resource
func NewPermissionError(message string) *DomainError {
	return NewDomainError(ErrorKindPermission, message)
}

// NewStatusError reports an illegal state transition, naming the current
// status and the set of statuses the operation is allowed from
func NewStatusError(current string, allowed []string) *DomainError {
	return NewDomainError(ErrorKindStatus,
		fmt.Sprintf("operation not allowed in status %s (allowed: %s)", current, strings.Join(allowed, ", "))).
		WithDetail("current_status", current).
		WithDetail("allowed_statuses", allowed)
}

// NewBusinessRuleError reports a business-rule violation
func NewBusinessRuleError(message string) *DomainError {
	return NewDomainError(ErrorKindBusinessRule, message)
}

// NewConcurrencyError reports a stale or conflicting update
func NewConcurrencyError(message string) *DomainError {
	return NewDomainError(ErrorKindConcurrency, message)
}

// Kind sentinels for errors.Is checks
var (
	ErrValidation  = &DomainError{Kind: ErrorKindValidation}
	ErrNotFound    = &DomainError{Kind: ErrorKindNotFound}
	ErrPermission  = &DomainError{Kind: ErrorKindPermission}
	ErrStatus      = &DomainError{Kind: ErrorKindStatus}
	ErrBusiness    = &DomainError{Kind: ErrorKindBusinessRule}
	ErrConcurrency = &DomainError{Kind: ErrorKindConcurrency}
)

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}
