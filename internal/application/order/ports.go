package order

import (
	"context"

	"github.com/google/uuid"
)

// AuditEntry is one append-only record of a business-relevant change
type AuditEntry struct {
	EventType       string         `json:"event_type"`
	POID            uuid.UUID      `json:"po_id"`
	ActorCompanyID  uuid.UUID      `json:"actor_company_id"`
	OldState        string         `json:"old_state,omitempty"`
	NewState        string         `json:"new_state,omitempty"`
	ChangedFields   []string       `json:"changed_fields,omitempty"`
	BusinessContext map[string]any `json:"business_context,omitempty"`
}

// AuditRecorder appends entries to the audit trail. A failed write is a
// compliance failure: callers treat it as fatal and roll back the
// surrounding transaction.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Notification is a fire-and-forget event for interested parties
type Notification struct {
	Type            string         `json:"type"`
	POID            uuid.UUID      `json:"po_id"`
	PONumber        string         `json:"po_number"`
	TargetCompanyID uuid.UUID      `json:"target_company_id"`
	Payload         map[string]any `json:"payload,omitempty"`
}

// Notifier dispatches notifications. Failures are logged by the caller
// and never propagated.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
