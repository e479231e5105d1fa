package trace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/trace"
)

// ScoreCache is a shared read-through cache for computed transparency
// scores, fronting the per-PO columns. A miss returns (nil, nil); cache
// failures are tolerated and logged by the caller, never propagated.
type ScoreCache interface {
	Get(ctx context.Context, poID uuid.UUID) (*trace.Scores, error)
	Set(ctx context.Context, poID uuid.UUID, scores trace.Scores, ttl time.Duration) error
	Invalidate(ctx context.Context, poID uuid.UUID) error
}
