package trace

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// Depth bounds for traversal
const (
	DefaultMaxDepth = 3
	MinMaxDepth     = 1
	MaxMaxDepth     = 10
)

// NodeFacts is everything the builder needs to know about one PO,
// joined with its seller company and product
type NodeFacts struct {
	POID               uuid.UUID           `json:"po_id"`
	PONumber           string              `json:"po_number"`
	CompanyID          uuid.UUID           `json:"company_id"`
	CompanyName        string              `json:"company_name"`
	CompanyTier        company.Tier        `json:"company_tier"`
	ProductID          uuid.UUID           `json:"product_id"`
	ProductName        string              `json:"product_name"`
	ProductType        catalog.ProductType `json:"product_type"`
	Quantity           decimal.Decimal     `json:"quantity"`
	Unit               string              `json:"unit"`
	HasOriginData      bool                `json:"has_origin_data"`
	HasCoordinates     bool                `json:"has_coordinates"`
	HasHarvestDate     bool                `json:"has_harvest_date"`
	HasFarmID          bool                `json:"has_farm_id"`
	FacilityID         string              `json:"facility_id,omitempty"`
	HasProcessingDates bool                `json:"has_processing_dates"`
	CertificationCount int                 `json:"certification_count"`
}

// GraphSource supplies PO facts and edges to the builder. Reads are
// lock-free; a graph concurrently being mutated elsewhere may be
// observed in a slightly stale state.
type GraphSource interface {
	// Facts loads the joined facts for one PO
	Facts(ctx context.Context, poID uuid.UUID) (*NodeFacts, error)

	// UpstreamIDs returns source PO IDs from the PO's input materials
	UpstreamIDs(ctx context.Context, poID uuid.UUID) ([]uuid.UUID, error)

	// DownstreamIDs returns POs fulfilled by this one: its children and
	// the POs listing it as an input material source
	DownstreamIDs(ctx context.Context, poID uuid.UUID) ([]uuid.UUID, error)
}

// Node is one entry in the traversal arena. Depth is signed: upstream
// nodes are negative, the root is 0, downstream nodes are positive.
type Node struct {
	NodeFacts
	Depth     int   `json:"depth"`
	Children  []int `json:"children"` // arena indices
	CycleLeaf bool  `json:"cycle_leaf,omitempty"`
}

// Summary carries traversal statistics. MaxDepth is the maximum
// absolute depth actually reached, independent of the configured bound.
type Summary struct {
	TotalNodes      int `json:"total_nodes"`
	UpstreamNodes   int `json:"upstream_nodes"`
	DownstreamNodes int `json:"downstream_nodes"`
	MaxDepth        int `json:"max_depth"`
}

// Graph is the merged upstream/downstream tree rooted at one PO,
// stored as a node table with adjacency lists
type Graph struct {
	Nodes   []Node  `json:"nodes"`
	Root    int     `json:"root"`
	Summary Summary `json:"summary"`
}

// BuildOptions configures a traversal
type BuildOptions struct {
	// MaxDepth bounds expansion in each direction (1..10, default 3)
	MaxDepth int
	// AllowDiamondRevisits permits re-expansion of a node reached along
	// distinct parent chains (legitimate multi-path sourcing). A node on
	// the active path is never re-expanded regardless of this flag.
	AllowDiamondRevisits bool
}

// DefaultBuildOptions returns the default traversal configuration
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{MaxDepth: DefaultMaxDepth, AllowDiamondRevisits: true}
}

func (o BuildOptions) normalized() (BuildOptions, error) {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDepth < MinMaxDepth || o.MaxDepth > MaxMaxDepth {
		return o, shared.NewValidationError("max depth must be between 1 and 10").
			WithDetail("max_depth", o.MaxDepth)
	}
	return o, nil
}

// Builder traverses the PO graph and materializes traceability trees
type Builder struct {
	source GraphSource
}

// NewBuilder creates a graph builder over the given source
func NewBuilder(source GraphSource) *Builder {
	return &Builder{source: source}
}

// Build constructs the merged traceability tree rooted at the given PO
func (b *Builder) Build(ctx context.Context, rootID uuid.UUID, opts BuildOptions) (*Graph, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	rootFacts, err := b.source.Facts(ctx, rootID)
	if err != nil {
		return nil, err
	}

	g := &Graph{Nodes: make([]Node, 0, 16)}
	g.Nodes = append(g.Nodes, Node{NodeFacts: *rootFacts, Depth: 0})
	g.Root = 0

	walk := &walker{
		source:  b.source,
		opts:    opts,
		graph:   g,
		path:    map[uuid.UUID]bool{rootID: true},
		visited: map[uuid.UUID]bool{rootID: true},
	}

	if err := walk.expand(ctx, 0, directionUpstream); err != nil {
		return nil, err
	}
	if err := walk.expand(ctx, 0, directionDownstream); err != nil {
		return nil, err
	}

	g.Summary = summarize(g)
	return g, nil
}

type direction int

const (
	directionUpstream   direction = -1
	directionDownstream direction = 1
)

// walker holds the mutable traversal state. The visited set is shared
// across branches; the path set tracks only the active chain so cycles
// are cut without suppressing legitimate diamond revisits.
type walker struct {
	source  GraphSource
	opts    BuildOptions
	graph   *Graph
	path    map[uuid.UUID]bool
	visited map[uuid.UUID]bool
}

func (w *walker) expand(ctx context.Context, nodeIdx int, dir direction) error {
	node := &w.graph.Nodes[nodeIdx]
	hops := node.Depth
	if hops < 0 {
		hops = -hops
	}
	if hops >= w.opts.MaxDepth {
		return nil
	}

	var neighborIDs []uuid.UUID
	var err error
	if dir == directionUpstream {
		neighborIDs, err = w.source.UpstreamIDs(ctx, node.POID)
	} else {
		neighborIDs, err = w.source.DownstreamIDs(ctx, node.POID)
	}
	if err != nil {
		return err
	}

	for _, id := range neighborIDs {
		onPath := w.path[id]
		seen := w.visited[id]
		blocked := onPath || (seen && !w.opts.AllowDiamondRevisits)

		facts, err := w.source.Facts(ctx, id)
		if err != nil {
			return err
		}

		childIdx := len(w.graph.Nodes)
		w.graph.Nodes = append(w.graph.Nodes, Node{
			NodeFacts: *facts,
			Depth:     w.graph.Nodes[nodeIdx].Depth + int(dir),
			CycleLeaf: blocked,
		})
		w.graph.Nodes[nodeIdx].Children = append(w.graph.Nodes[nodeIdx].Children, childIdx)
		w.visited[id] = true

		if blocked {
			continue
		}

		w.path[id] = true
		if err := w.expand(ctx, childIdx, dir); err != nil {
			return err
		}
		delete(w.path, id)
	}
	return nil
}

func summarize(g *Graph) Summary {
	s := Summary{TotalNodes: len(g.Nodes)}
	for _, n := range g.Nodes {
		switch {
		case n.Depth < 0:
			s.UpstreamNodes++
			if -n.Depth > s.MaxDepth {
				s.MaxDepth = -n.Depth
			}
		case n.Depth > 0:
			s.DownstreamNodes++
			if n.Depth > s.MaxDepth {
				s.MaxDepth = n.Depth
			}
		}
	}
	return s
}
