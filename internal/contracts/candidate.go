package contracts

import "math"

// Candidate is a CompositeScore enriched with the tie-break fields used by
// selection. The tie-break ordering rewards consistency (no weak pillar)
// ahead of cheapness and absolute cash generation.
type Candidate struct {
	CompositeScore

	Lowest      int     `json:"lowest_pillar_score"`
	Median      float64 `json:"median_pillar_score"`
	PriceToFCF  float64 `json:"price_to_fcf"` // +Inf when unknown: worst possible
	FCFAbsolute float64 `json:"fcf_absolute"`
}

// NewCandidate builds a candidate from a composite score and the record it
// was scored from. A missing price/FCF multiple ranks last among ties; a
// missing absolute FCF counts as zero.
func NewCandidate(score CompositeScore, rec *FundamentalsRecord) Candidate {
	cand := Candidate{
		CompositeScore: score,
		Lowest:         score.LowestPillar(),
		Median:         score.MedianPillar(),
		PriceToFCF:     math.Inf(1),
	}

	if rec != nil {
		if rec.PriceToFCF != nil && *rec.PriceToFCF > 0 {
			cand.PriceToFCF = *rec.PriceToFCF
		}
		if rec.FCFAbsolute != nil {
			cand.FCFAbsolute = *rec.FCFAbsolute
		}
	}

	return cand
}
