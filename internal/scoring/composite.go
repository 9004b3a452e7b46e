package scoring

import (
	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

// CompositeScorer runs all eight pillar scorers for a ticker and aggregates
// them into a total score and an elimination verdict.
// SSOT: the global elimination rule is applied here only.
type CompositeScorer struct {
	pillars *PillarScorer
	logger  *logger.Logger
}

// NewCompositeScorer creates a composite scorer.
func NewCompositeScorer(pillars *PillarScorer, log *logger.Logger) *CompositeScorer {
	return &CompositeScorer{
		pillars: pillars,
		logger:  log,
	}
}

// Evaluate scores every pillar for one record and applies the global rule:
// any pillar at 0 eliminates the stock entirely, and an eliminated stock's
// total is 0 rather than the partial sum, so it can never outrank a
// qualifying name in any sort.
//
// Evaluate is a pure function of the record and is safe to call
// concurrently across tickers.
func (s *CompositeScorer) Evaluate(rec *contracts.FundamentalsRecord) contracts.CompositeScore {
	score := contracts.CompositeScore{
		Ticker:  rec.Ticker,
		Pillars: make([]contracts.PillarScore, 0, contracts.NumPillars),
	}

	sum := 0
	for _, p := range contracts.AllPillars() {
		ps := s.pillars.Score(p, rec)
		score.Pillars = append(score.Pillars, ps)
		sum += ps.Points

		if ps.Eliminated {
			score.Eliminated = true
			score.EliminationReasons = append(score.EliminationReasons, string(p))
		}
	}

	if !score.Eliminated {
		score.Total = sum
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker":     rec.Ticker,
		"total":      score.Total,
		"eliminated": score.Eliminated,
		"reasons":    score.EliminationReasons,
	}).Debug("Ticker evaluated")

	return score
}
