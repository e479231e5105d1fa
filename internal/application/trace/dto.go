package trace

import (
	"time"

	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/trace"
)

// TraceRequest configures a traceability traversal
type TraceRequest struct {
	MaxDepth             int   `form:"max_depth"`
	AllowDiamondRevisits *bool `form:"allow_diamond_revisits"`
}

// TraceResponse is the materialized traceability tree of one order
type TraceResponse struct {
	RootPOID    uuid.UUID     `json:"root_po_id"`
	RootNumber  string        `json:"root_number"`
	Nodes       []trace.Node  `json:"nodes"`
	Root        int           `json:"root"`
	Summary     trace.Summary `json:"summary"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// BulkRefreshRequest configures a company-wide score refresh. MaxAgeMinutes
// overrides the service-wide freshness window; zero means use it.
type BulkRefreshRequest struct {
	Force         bool `form:"force"`
	MaxAgeMinutes int  `form:"max_age_minutes" binding:"omitempty,min=1"`
}

// TransparencyResponse reports an order's transparency scores
type TransparencyResponse struct {
	POID                     uuid.UUID `json:"po_id"`
	PONumber                 string    `json:"po_number"`
	TransparencyToMill       float64   `json:"transparency_to_mill"`
	TransparencyToPlantation float64   `json:"transparency_to_plantation"`
	MillGrade                string    `json:"mill_grade"`
	PlantationGrade          string    `json:"plantation_grade"`
	CalculatedAt             time.Time `json:"calculated_at"`
	FromCache                bool      `json:"from_cache"`
}

// RefreshFailure records one order that could not be refreshed
type RefreshFailure struct {
	POID  uuid.UUID `json:"po_id"`
	Error string    `json:"error"`
}

// BulkRefreshResponse summarizes a company-wide score refresh
type BulkRefreshResponse struct {
	CompanyID uuid.UUID        `json:"company_id"`
	Refreshed int              `json:"refreshed"`
	Skipped   int              `json:"skipped"`
	Failures  []RefreshFailure `json:"failures,omitempty"`
}
