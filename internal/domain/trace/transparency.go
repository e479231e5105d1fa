package trace

import (
	"math"

	"github.com/supplytrace/backend/internal/domain/company"
)

// TTM weights: completeness of intermediate (mill/processor) nodes
const (
	ttmWeightFacility        = 0.4
	ttmWeightProcessingDates = 0.3
	ttmWeightCertifications  = 0.3
)

// TTP weights: completeness of origin-level facts
const (
	ttpWeightCoordinates    = 0.35
	ttpWeightHarvestDate    = 0.20
	ttpWeightFarmID         = 0.25
	ttpWeightCertifications = 0.20
)

// defaultHopDecay is the multiplicative degradation applied to an
// origin node's score per hop of distance beyond the first
const defaultHopDecay = 0.95

// certSaturation is the certification count treated as full marks
const certSaturation = 3

// Scores holds the two transparency metrics, both in [0, 1]
type Scores struct {
	TTM float64 `json:"transparency_to_mill"`
	TTP float64 `json:"transparency_to_plantation"`
}

// Scorer computes transparency scores over a traceability graph.
// Scoring is deterministic: the same graph always yields bit-identical
// scores.
type Scorer struct {
	// HopDecay degrades origin completeness multiplicatively per
	// additional upstream hop (defaults to 0.95)
	HopDecay float64
}

// NewScorer creates a scorer with default weighting
func NewScorer() *Scorer {
	return &Scorer{HopDecay: defaultHopDecay}
}

// Score computes TTM and TTP for the graph's root
func (s *Scorer) Score(g *Graph) Scores {
	decay := s.HopDecay
	if decay <= 0 || decay > 1 {
		decay = defaultHopDecay
	}

	var (
		millSum, originSum     float64
		millCount, originCount int
	)

	// Arena order is the traversal order, so iteration is stable.
	for _, n := range g.Nodes {
		if n.Depth > 0 {
			continue // downstream nodes never contribute to upstream transparency
		}

		if n.CompanyTier == company.TierProcessor {
			millSum += millCompleteness(&n)
			millCount++
		}

		if n.CompanyTier == company.TierOriginator || n.HasOriginData {
			hops := -n.Depth
			weight := 1.0
			if hops > 1 {
				weight = math.Pow(decay, float64(hops-1))
			}
			originSum += originCompleteness(&n) * weight
			originCount++
		}
	}

	scores := Scores{}
	if millCount > 0 {
		scores.TTM = round4(millSum / float64(millCount))
	}
	if originCount > 0 {
		scores.TTP = round4(originSum / float64(originCount))
	}
	return scores
}

func millCompleteness(n *Node) float64 {
	c := 0.0
	if n.FacilityID != "" {
		c += ttmWeightFacility
	}
	if n.HasProcessingDates {
		c += ttmWeightProcessingDates
	}
	if n.CertificationCount > 0 {
		c += ttmWeightCertifications
	}
	return c
}

func originCompleteness(n *Node) float64 {
	c := 0.0
	if n.HasCoordinates {
		c += ttpWeightCoordinates
	}
	if n.HasHarvestDate {
		c += ttpWeightHarvestDate
	}
	if n.HasFarmID {
		c += ttpWeightFarmID
	}
	certs := n.CertificationCount
	if certs > certSaturation {
		certs = certSaturation
	}
	c += ttpWeightCertifications * float64(certs) / float64(certSaturation)
	return c
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Grade maps a transparency score to a letter grade
func Grade(score float64) string {
	switch {
	case score >= 0.90:
		return "A"
	case score >= 0.80:
		return "B"
	case score >= 0.70:
		return "C"
	case score >= 0.60:
		return "D"
	default:
		return "F"
	}
}
