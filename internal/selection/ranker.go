package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

// Ranker orders qualifying candidates by the full tie-break key and cuts
// the portfolio. The ordering is total source of truth for selection:
// running it twice over the same inputs always yields the same list.
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker.
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// candidateLess reports whether a ranks ahead of b.
//
// Key order: total score, then lowest pillar (consistency), then median
// pillar, then price/FCF (cheaper first), then absolute FCF (bigger cash
// engine first), then ticker as the deterministic fallback.
func candidateLess(a, b *contracts.Candidate) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Lowest != b.Lowest {
		return a.Lowest > b.Lowest
	}
	if a.Median != b.Median {
		return a.Median > b.Median
	}
	if a.PriceToFCF != b.PriceToFCF {
		return a.PriceToFCF < b.PriceToFCF
	}
	if a.FCFAbsolute != b.FCFAbsolute {
		return a.FCFAbsolute > b.FCFAbsolute
	}
	return a.Ticker < b.Ticker
}

// fullyTied reports whether two candidates match on every ranking key
// before the ticker fallback.
func fullyTied(a, b *contracts.Candidate) bool {
	return a.Total == b.Total &&
		a.Lowest == b.Lowest &&
		a.Median == b.Median &&
		a.PriceToFCF == b.PriceToFCF &&
		a.FCFAbsolute == b.FCFAbsolute
}

// Rank returns the candidates in selection order, plus a notice for every
// adjacent pair that exhausted all five ranking keys and fell through to
// the ticker ordering. The input slice is not modified.
func (r *Ranker) Rank(ctx context.Context, candidates []contracts.Candidate) ([]contracts.Candidate, []string) {
	ranked := make([]contracts.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return candidateLess(&ranked[i], &ranked[j])
	})

	var notices []string
	for i := 1; i < len(ranked); i++ {
		if fullyTied(&ranked[i-1], &ranked[i]) {
			notices = append(notices, fmt.Sprintf(
				"tie between %s and %s unresolved by ranking keys; ordered by ticker",
				ranked[i-1].Ticker, ranked[i].Ticker))
		}
	}

	return ranked, notices
}

// Select ranks the candidates and returns exactly n of them. Fewer than n
// qualifying candidates is a hard failure: the caller must abort the run
// and leave the previously committed portfolio untouched.
func (r *Ranker) Select(ctx context.Context, candidates []contracts.Candidate, n int) ([]contracts.Candidate, []string, error) {
	if len(candidates) < n {
		return nil, nil, &contracts.InsufficientCandidatesError{
			Qualified: len(candidates),
			Required:  n,
		}
	}

	ranked, notices := r.Rank(ctx, candidates)
	selected := ranked[:n]

	r.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"selected":   n,
		"top":        selected[0].Ticker,
		"cutoff":     selected[n-1].Total,
		"ties":       len(notices),
	}).Info("Selection completed")

	return selected, notices, nil
}
