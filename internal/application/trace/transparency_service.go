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

// DefaultScoreTTL bounds how long computed scores are served before
// the graph is walked again
const DefaultScoreTTL = time.Hour

// TransparencyConfig tunes score computation and caching
type TransparencyConfig struct {
	// ScoreTTL is how long cached scores stay fresh (default 1h)
	ScoreTTL time.Duration
	// MaxDepth bounds the upstream walk during scoring (default 3)
	MaxDepth int
	// HopDecay degrades origin completeness per upstream hop
	HopDecay float64
}

func (c TransparencyConfig) withDefaults() TransparencyConfig {
	if c.ScoreTTL <= 0 {
		c.ScoreTTL = DefaultScoreTTL
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = trace.DefaultMaxDepth
	}
	return c
}

// TransparencyService computes and caches transparency-to-mill and
// transparency-to-plantation scores. Scores live on the order row with
// a freshness window, fronted by a shared cache.
type TransparencyService struct {
	orders  order.PurchaseOrderRepository
	builder *trace.Builder
	scorer  *trace.Scorer
	cache   ScoreCache
	tx      shared.TransactionManager
	cfg     TransparencyConfig
	logger  *zap.Logger
}

// NewTransparencyService creates a new TransparencyService
func NewTransparencyService(
	orders order.PurchaseOrderRepository,
	source trace.GraphSource,
	cache ScoreCache,
	tx shared.TransactionManager,
	cfg TransparencyConfig,
	logger *zap.Logger,
) *TransparencyService {
	cfg = cfg.withDefaults()
	scorer := trace.NewScorer()
	if cfg.HopDecay > 0 {
		scorer.HopDecay = cfg.HopDecay
	}
	return &TransparencyService{
		orders:  orders,
		builder: trace.NewBuilder(source),
		scorer:  scorer,
		cache:   cache,
		tx:      tx,
		cfg:     cfg,
		logger:  logger,
	}
}

// Get returns the order's transparency scores, recomputing them when
// stale or when force is set
func (s *TransparencyService) Get(ctx context.Context, poID, actorCompanyID uuid.UUID, force bool) (*TransparencyResponse, error) {
	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.IsBuyer(actorCompanyID) && !po.IsSeller(actorCompanyID) {
		return nil, shared.NewPermissionError("company is not a party to this order")
	}

	now := time.Now()
	if !force {
		if po.HasFreshTransparencyScores(s.cfg.ScoreTTL, now) {
			return s.respond(po, *po.TransparencyToMill, *po.TransparencyToPlantation, *po.TransparencyCalculatedAt, true), nil
		}
		if cached := s.cacheGet(ctx, poID); cached != nil {
			return s.respond(po, cached.TTM, cached.TTP, now, true), nil
		}
	}

	scores, err := s.compute(ctx, po)
	if err != nil {
		return nil, err
	}
	return s.respond(po, scores.TTM, scores.TTP, *po.TransparencyCalculatedAt, false), nil
}

// BulkRefresh recomputes scores for a company's active orders. The
// caller may narrow or widen the staleness window via MaxAgeMinutes;
// force refreshes everything. Failures on individual orders are
// recorded and do not stop the sweep.
func (s *TransparencyService) BulkRefresh(ctx context.Context, companyID uuid.UUID, req BulkRefreshRequest) (*BulkRefreshResponse, error) {
	maxAge := s.cfg.ScoreTTL
	if req.MaxAgeMinutes > 0 {
		maxAge = time.Duration(req.MaxAgeMinutes) * time.Minute
	}

	var cutoff *time.Time
	if !req.Force {
		c := time.Now().Add(-maxAge)
		cutoff = &c
	}

	orders, err := s.orders.FindForTransparencyRefresh(ctx, companyID, cutoff)
	if err != nil {
		return nil, err
	}

	resp := &BulkRefreshResponse{CompanyID: companyID}
	for i := range orders {
		po := &orders[i]
		if !req.Force && po.HasFreshTransparencyScores(maxAge, time.Now()) {
			resp.Skipped++
			continue
		}
		if _, err := s.compute(ctx, po); err != nil {
			s.logger.Warn("transparency refresh failed",
				zap.String("po_number", po.Number),
				zap.Error(err))
			resp.Failures = append(resp.Failures, RefreshFailure{POID: po.ID, Error: err.Error()})
			continue
		}
		resp.Refreshed++
	}

	s.logger.Info("transparency bulk refresh finished",
		zap.String("company_id", companyID.String()),
		zap.Int("refreshed", resp.Refreshed),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", len(resp.Failures)))
	return resp, nil
}

// compute walks the upstream graph, scores it, and persists the result
// on the order row and in the shared cache
func (s *TransparencyService) compute(ctx context.Context, po *order.PurchaseOrder) (trace.Scores, error) {
	graph, err := s.builder.Build(ctx, po.ID, trace.BuildOptions{
		MaxDepth:             s.cfg.MaxDepth,
		AllowDiamondRevisits: true,
	})
	if err != nil {
		return trace.Scores{}, err
	}

	scores := s.scorer.Score(graph)
	now := time.Now()
	po.UpdateTransparencyScores(scores.TTM, scores.TTP, now)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.orders.SaveWithLock(ctx, po)
	})
	if err != nil {
		return trace.Scores{}, err
	}

	s.cacheSet(ctx, po.ID, scores)
	return scores, nil
}

func (s *TransparencyService) respond(po *order.PurchaseOrder, ttm, ttp float64, at time.Time, fromCache bool) *TransparencyResponse {
	return &TransparencyResponse{
		POID:                     po.ID,
		PONumber:                 po.Number,
		TransparencyToMill:       ttm,
		TransparencyToPlantation: ttp,
		MillGrade:                trace.Grade(ttm),
		PlantationGrade:          trace.Grade(ttp),
		CalculatedAt:             at,
		FromCache:                fromCache,
	}
}

func (s *TransparencyService) cacheGet(ctx context.Context, poID uuid.UUID) *trace.Scores {
	if s.cache == nil {
		return nil
	}
	scores, err := s.cache.Get(ctx, poID)
	if err != nil {
		s.logger.Warn("score cache read failed", zap.Error(err))
		return nil
	}
	return scores
}

func (s *TransparencyService) cacheSet(ctx context.Context, poID uuid.UUID, scores trace.Scores) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, poID, scores, s.cfg.ScoreTTL); err != nil {
		s.logger.Warn("score cache write failed", zap.Error(err))
	}
}
