package selection

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/logger"
)

func cand(ticker string, total, lowest int, median, pfcf, fcfAbs float64) contracts.Candidate {
	return contracts.Candidate{
		CompositeScore: contracts.CompositeScore{Ticker: ticker, Total: total},
		Lowest:         lowest,
		Median:         median,
		PriceToFCF:     pfcf,
		FCFAbsolute:    fcfAbs,
	}
}

func tickersOf(cands []contracts.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Ticker
	}
	return out
}

func TestRankOrdering(t *testing.T) {
	r := NewRanker(logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		name  string
		input []contracts.Candidate
		want  []string
	}{
		{
			name: "total score dominates",
			input: []contracts.Candidate{
				cand("LOW", 45, 8, 8, 1, 1e12),
				cand("HIGH", 55, 4, 4, 99, 0),
			},
			want: []string{"HIGH", "LOW"},
		},
		{
			name: "lowest pillar breaks total tie",
			input: []contracts.Candidate{
				cand("WEAK", 50, 4, 7, 1, 1e12),
				cand("EVEN", 50, 5, 6, 99, 0),
			},
			want: []string{"EVEN", "WEAK"},
		},
		{
			name: "median breaks lowest tie",
			input: []contracts.Candidate{
				cand("B", 50, 5, 6.0, 1, 1e12),
				cand("A", 50, 5, 6.5, 99, 0),
			},
			want: []string{"A", "B"},
		},
		{
			name: "cheaper price to FCF wins",
			input: []contracts.Candidate{
				cand("DEAR", 50, 5, 6, 40, 1e12),
				cand("CHEAP", 50, 5, 6, 25, 0),
			},
			want: []string{"CHEAP", "DEAR"},
		},
		{
			name: "missing multiple ranks behind any real one",
			input: []contracts.Candidate{
				cand("NOPE", 50, 5, 6, math.Inf(1), 1e12),
				cand("PRICED", 50, 5, 6, 80, 0),
			},
			want: []string{"PRICED", "NOPE"},
		},
		{
			name: "bigger absolute FCF wins",
			input: []contracts.Candidate{
				cand("SMALL", 50, 5, 6, 30, 1e9),
				cand("BIG", 50, 5, 6, 30, 9e9),
			},
			want: []string{"BIG", "SMALL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, _ := r.Rank(ctx, tt.input)
			got := tickersOf(ranked)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRankFullTieFallsBackToTicker(t *testing.T) {
	r := NewRanker(logger.NewNop())

	ranked, notices := r.Rank(context.Background(), []contracts.Candidate{
		cand("ZETA", 50, 5, 6, 30, 2e9),
		cand("ALFA", 50, 5, 6, 30, 2e9),
	})

	if got := tickersOf(ranked); got[0] != "ALFA" || got[1] != "ZETA" {
		t.Errorf("order = %v, want [ALFA ZETA]", got)
	}
	if len(notices) != 1 {
		t.Fatalf("notices = %v, want exactly one tie notice", notices)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	r := NewRanker(logger.NewNop())
	ctx := context.Background()

	input := []contracts.Candidate{
		cand("C", 48, 4, 6, 30, 1e9),
		cand("A", 55, 5, 7, 20, 5e9),
		cand("B", 55, 5, 7, 25, 3e9),
		cand("D", 51, 6, 6.5, 28, 2e9),
	}

	first, _ := r.Rank(ctx, input)

	reversed := make([]contracts.Candidate, len(input))
	for i, c := range input {
		reversed[len(input)-1-i] = c
	}
	second, _ := r.Rank(ctx, reversed)

	for i := range first {
		if first[i].Ticker != second[i].Ticker {
			t.Fatalf("order depends on input order: %v vs %v", tickersOf(first), tickersOf(second))
		}
	}

	// The input slice must not be reordered.
	if input[0].Ticker != "C" {
		t.Error("Rank modified its input")
	}
}

func TestSelectExactCount(t *testing.T) {
	r := NewRanker(logger.NewNop())

	cands := make([]contracts.Candidate, 0, 10)
	for i := 0; i < 10; i++ {
		cands = append(cands, cand(string(rune('A'+i)), 40+i, 4, 5, 30, 1e9))
	}

	selected, _, err := r.Select(context.Background(), cands, contracts.PositionCount)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(selected) != contracts.PositionCount {
		t.Fatalf("selected %d, want %d", len(selected), contracts.PositionCount)
	}
	if selected[0].Total != 49 {
		t.Errorf("top total = %d, want 49", selected[0].Total)
	}
}

func TestSelectInsufficientCandidates(t *testing.T) {
	r := NewRanker(logger.NewNop())

	cands := []contracts.Candidate{
		cand("A", 50, 5, 6, 30, 1e9),
		cand("B", 48, 5, 6, 30, 1e9),
	}

	_, _, err := r.Select(context.Background(), cands, contracts.PositionCount)
	if !contracts.IsInsufficientCandidates(err) {
		t.Fatalf("err = %v, want InsufficientCandidatesError", err)
	}

	var insufficient *contracts.InsufficientCandidatesError
	if !errors.As(err, &insufficient) {
		t.Fatal("error does not unwrap")
	}
	if insufficient.Qualified != 2 || insufficient.Required != contracts.PositionCount {
		t.Errorf("got %d/%d, want 2/%d",
			insufficient.Qualified, insufficient.Required, contracts.PositionCount)
	}
}
