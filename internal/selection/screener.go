package selection

import (
	"context"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

// Screener filters a scored universe down to qualifying candidates.
// SSOT: the qualification rules are applied here only.
type Screener struct {
	config ScreenerConfig
	logger *logger.Logger
}

// ScreenerConfig defines the qualification cut.
type ScreenerConfig struct {
	// MinTotal is the minimum qualifying composite total. Anything below is
	// dropped before ranking.
	MinTotal int
}

// DefaultScreenerConfig returns the standard qualification cut.
func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		MinTotal: contracts.MinQualifyingScore,
	}
}

// NewScreener creates a new screener.
func NewScreener(config ScreenerConfig, log *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: log,
	}
}

// Screen drops eliminated scores and scores below the minimum qualifying
// total, and builds ranking candidates (with tie-break fields) from what
// remains. records supplies the tie-break inputs; a missing record leaves
// the candidate with worst-case tie-break values.
func (s *Screener) Screen(
	ctx context.Context,
	scores []contracts.CompositeScore,
	records map[string]*contracts.FundamentalsRecord,
) ([]contracts.Candidate, error) {
	candidates := make([]contracts.Candidate, 0, len(scores))
	filtered := make(map[string]int) // filter name -> count

	for _, score := range scores {
		if score.Eliminated {
			filtered["eliminated"]++
			continue
		}
		if score.Total < s.config.MinTotal {
			filtered["below_minimum"]++
			continue
		}

		candidates = append(candidates, contracts.NewCandidate(score, records[score.Ticker]))
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":  len(scores),
		"passed":       len(candidates),
		"filtered_out": len(scores) - len(candidates),
		"filters":      filtered,
	}).Info("Screening completed")

	return candidates, nil
}
