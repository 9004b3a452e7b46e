package selection

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/database"
)

// Repository archives per-ticker scoring results so past runs can be
// inspected ticker by ticker without unpacking the run artifact.
type Repository struct {
	db *database.DB
}

// NewRepository creates a scoring results repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Init creates the scoring_results table if it does not exist.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scoring_results (
			run_id             TEXT NOT NULL,
			ticker             TEXT NOT NULL,
			total              INT NOT NULL,
			eliminated         BOOLEAN NOT NULL,
			reasons            TEXT[] NOT NULL DEFAULT '{}',
			moat               INT NOT NULL,
			fortress           INT NOT NULL,
			engine             INT NOT NULL,
			efficiency         INT NOT NULL,
			pricing_power      INT NOT NULL,
			capital_allocation INT NOT NULL,
			cash_generation    INT NOT NULL,
			durability         INT NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (run_id, ticker)
		)`)
	if err != nil {
		return fmt.Errorf("create scoring_results table: %w", err)
	}
	return nil
}

// SaveScores stores every composite score of one run. Re-saving a run id
// replaces its rows.
func (r *Repository) SaveScores(ctx context.Context, runID string, scores []contracts.CompositeScore) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save scores: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM scoring_results WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("clear scoring results for %s: %w", runID, err)
	}

	for _, score := range scores {
		_, err := tx.Exec(ctx, `
			INSERT INTO scoring_results (
				run_id, ticker, total, eliminated, reasons,
				moat, fortress, engine, efficiency,
				pricing_power, capital_allocation, cash_generation, durability
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			runID, score.Ticker, score.Total, score.Eliminated, score.EliminationReasons,
			score.PillarPoints(contracts.PillarMoat),
			score.PillarPoints(contracts.PillarFortress),
			score.PillarPoints(contracts.PillarEngine),
			score.PillarPoints(contracts.PillarEfficiency),
			score.PillarPoints(contracts.PillarPricingPower),
			score.PillarPoints(contracts.PillarCapitalAllocation),
			score.PillarPoints(contracts.PillarCashGeneration),
			score.PillarPoints(contracts.PillarDurability),
		)
		if err != nil {
			return fmt.Errorf("insert scoring result %s/%s: %w", runID, score.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save scores: %w", err)
	}
	return nil
}

// GetScores loads the composite scores of one run in ticker order. Pillar
// details are not archived; only the points survive the round trip.
func (r *Repository) GetScores(ctx context.Context, runID string) ([]contracts.CompositeScore, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ticker, total, eliminated, reasons,
		       moat, fortress, engine, efficiency,
		       pricing_power, capital_allocation, cash_generation, durability
		FROM scoring_results
		WHERE run_id = $1
		ORDER BY ticker`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scoring results for %s: %w", runID, err)
	}
	defer rows.Close()

	var scores []contracts.CompositeScore
	for rows.Next() {
		var (
			score  contracts.CompositeScore
			points [contracts.NumPillars]int
		)
		err := rows.Scan(
			&score.Ticker, &score.Total, &score.Eliminated, &score.EliminationReasons,
			&points[0], &points[1], &points[2], &points[3],
			&points[4], &points[5], &points[6], &points[7],
		)
		if err != nil {
			return nil, fmt.Errorf("scan scoring result: %w", err)
		}

		for i, p := range contracts.AllPillars() {
			score.Pillars = append(score.Pillars, contracts.PillarScore{
				Pillar:     p,
				Points:     points[i],
				Eliminated: points[i] == 0,
			})
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scoring results: %w", err)
	}

	return scores, nil
}

// HasRun reports whether any scoring results exist for the run id.
func (r *Repository) HasRun(ctx context.Context, runID string) (bool, error) {
	var one int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT 1 FROM scoring_results WHERE run_id = $1 LIMIT 1`, runID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check scoring results for %s: %w", runID, err)
	}
	return true, nil
}
