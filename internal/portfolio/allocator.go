package portfolio

import (
	"fmt"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

// Allocator converts the eight selected candidates into weighted positions.
// SSOT: the score-proportional weight formula lives here only.
//
// Each position's weight is its points above the base divided by the sum of
// points above the base across the portfolio, so weights always sum to 1 and
// a higher-scored name never gets a smaller weight.
type Allocator struct {
	logger *logger.Logger
}

// NewAllocator creates an allocator.
func NewAllocator(log *logger.Logger) *Allocator {
	return &Allocator{logger: log}
}

// Allocate builds ranked, weighted positions from candidates already in
// selection order. It requires exactly the full position count; the
// minimum qualifying total guarantees every name scores above the weight
// base, so the denominator is always positive.
func (a *Allocator) Allocate(selected []contracts.Candidate) ([]contracts.PortfolioPosition, error) {
	if len(selected) != contracts.PositionCount {
		return nil, fmt.Errorf("allocate: need exactly %d candidates, got %d",
			contracts.PositionCount, len(selected))
	}

	totalPoints := 0
	for _, c := range selected {
		points := c.Total - contracts.WeightBase
		if points <= 0 {
			return nil, fmt.Errorf("allocate: %s total %d is at or below the weight base %d",
				c.Ticker, c.Total, contracts.WeightBase)
		}
		totalPoints += points
	}

	positions := make([]contracts.PortfolioPosition, 0, len(selected))
	for i, c := range selected {
		points := c.Total - contracts.WeightBase

		pillarPoints := make(map[contracts.Pillar]int, contracts.NumPillars)
		for _, ps := range c.Pillars {
			pillarPoints[ps.Pillar] = ps.Points
		}

		positions = append(positions, contracts.PortfolioPosition{
			Ticker:          c.Ticker,
			Rank:            i + 1,
			TotalScore:      c.Total,
			Weight:          float64(points) / float64(totalPoints),
			PointsAboveBase: points,
			PillarPoints:    pillarPoints,
		})
	}

	a.logger.WithFields(map[string]interface{}{
		"positions":    len(positions),
		"total_points": totalPoints,
		"top_weight":   positions[0].Weight,
	}).Info("Weights allocated")

	return positions, nil
}
