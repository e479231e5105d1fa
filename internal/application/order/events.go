package order

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/order"
)

// recordDomainEvents drains the events queued on an aggregate into the
// audit trail and clears them. It runs inside the caller's transaction
// so event rows commit or roll back together with the state change
// that raised them.
func recordDomainEvents(ctx context.Context, audit AuditRecorder, actorCompanyID uuid.UUID, po *order.PurchaseOrder) error {
	for _, ev := range po.GetDomainEvents() {
		entry := AuditEntry{
			EventType:      ev.EventType(),
			POID:           po.ID,
			ActorCompanyID: actorCompanyID,
		}
		if raw, err := json.Marshal(ev); err == nil {
			payload := map[string]any{}
			if err := json.Unmarshal(raw, &payload); err == nil {
				entry.BusinessContext = payload
			}
		}
		if err := audit.Record(ctx, entry); err != nil {
			return err
		}
	}
	po.ClearDomainEvents()
	return nil
}
