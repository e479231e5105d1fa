package trace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
	"github.com/supplytrace/backend/internal/domain/trace"
)

// TraceabilityConfig tunes graph traversal when a request carries no
// explicit options
type TraceabilityConfig struct {
	// DefaultMaxDepth bounds expansion in each direction (default 3)
	DefaultMaxDepth int
	// AllowDiamondRevisits permits re-expansion across distinct parent chains
	AllowDiamondRevisits bool
}

func (c TraceabilityConfig) withDefaults() TraceabilityConfig {
	if c.DefaultMaxDepth == 0 {
		c.DefaultMaxDepth = trace.DefaultMaxDepth
	}
	return c
}

// TraceabilityService materializes the upstream/downstream sourcing
// tree of an order for one of its parties.
type TraceabilityService struct {
	orders  order.PurchaseOrderRepository
	builder *trace.Builder
	cfg     TraceabilityConfig
	logger  *zap.Logger
}

// NewTraceabilityService creates a new TraceabilityService
func NewTraceabilityService(orders order.PurchaseOrderRepository, source trace.GraphSource, cfg TraceabilityConfig, logger *zap.Logger) *TraceabilityService {
	return &TraceabilityService{
		orders:  orders,
		builder: trace.NewBuilder(source),
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// Trace builds the traceability tree rooted at the given order
func (s *TraceabilityService) Trace(ctx context.Context, poID, actorCompanyID uuid.UUID, req TraceRequest) (*TraceResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(actorCompanyID) && !po.IsSeller(actorCompanyID) {
		return nil, shared.NewPermissionError("company is not a party to this order")
	}

	opts := trace.BuildOptions{
		MaxDepth:             s.cfg.DefaultMaxDepth,
		AllowDiamondRevisits: s.cfg.AllowDiamondRevisits,
	}
	if req.MaxDepth != 0 {
		opts.MaxDepth = req.MaxDepth
	}
	if req.AllowDiamondRevisits != nil {
		opts.AllowDiamondRevisits = *req.AllowDiamondRevisits
	}

	graph, err := s.builder.Build(ctx, poID, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("traceability tree built",
		zap.String("po_number", po.Number),
		zap.Int("total_nodes", graph.Summary.TotalNodes),
		zap.Int("max_depth", graph.Summary.MaxDepth))

	return &TraceResponse{
		RootPOID:    po.ID,
		RootNumber:  po.Number,
		Nodes:       graph.Nodes,
		Root:        graph.Root,
		Summary:     graph.Summary,
		GeneratedAt: time.Now(),
	}, nil
}
