package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/octantlabs/octant/internal/contracts"
	"github.com/octantlabs/octant/pkg/database"
	"github.com/octantlabs/octant/pkg/logger"
)

// Repository is the Postgres-backed run store. Runs are append-only rows;
// the latest committed row is the live portfolio.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

var _ contracts.PortfolioStore = (*Repository)(nil)

// NewRepository creates a run repository.
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// Init creates the rebalance_runs table if it does not exist.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rebalance_runs (
			run_id      TEXT PRIMARY KEY,
			run_at      TIMESTAMPTZ NOT NULL,
			universe    TEXT NOT NULL,
			run_trigger TEXT NOT NULL,
			supersedes  TEXT NOT NULL DEFAULT '',
			scores     JSONB NOT NULL,
			positions  JSONB NOT NULL,
			validation JSONB NOT NULL,
			diff       JSONB,
			skipped    TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create rebalance_runs table: %w", err)
	}
	return nil
}

// Latest returns the most recently committed run, or ErrNoCommittedRun.
func (r *Repository) Latest(ctx context.Context) (*contracts.RebalanceRun, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT run_id, run_at, universe, run_trigger, supersedes,
		       scores, positions, validation, diff, skipped
		FROM rebalance_runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1`)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNoCommittedRun
	}
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	return run, nil
}

// Get returns one run by id.
func (r *Repository) Get(ctx context.Context, runID string) (*contracts.RebalanceRun, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT run_id, run_at, universe, run_trigger, supersedes,
		       scores, positions, validation, diff, skipped
		FROM rebalance_runs
		WHERE run_id = $1`, runID)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNoCommittedRun
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return run, nil
}

// Commit appends the run if and only if run.Supersedes still names the
// latest committed run. The table lock serializes concurrent committers so
// the compare and the insert are one atomic step.
func (r *Repository) Commit(ctx context.Context, run *contracts.RebalanceRun) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE rebalance_runs IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock runs table: %w", err)
	}

	var latestID string
	err = tx.QueryRow(ctx, `
		SELECT run_id FROM rebalance_runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1`).Scan(&latestID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("read latest run id: %w", err)
	}

	if latestID != run.Supersedes {
		return fmt.Errorf("commit %s supersedes %q but latest is %q: %w",
			run.RunID, run.Supersedes, latestID, contracts.ErrStaleCommit)
	}

	scores, err := json.Marshal(run.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	positions, err := json.Marshal(run.Positions)
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	validation, err := json.Marshal(run.Validation)
	if err != nil {
		return fmt.Errorf("marshal validation: %w", err)
	}
	var diff []byte
	if run.Diff != nil {
		if diff, err = json.Marshal(run.Diff); err != nil {
			return fmt.Errorf("marshal diff: %w", err)
		}
	}

	skipped := run.Skipped
	if skipped == nil {
		skipped = []string{}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rebalance_runs (
			run_id, run_at, universe, run_trigger, supersedes,
			scores, positions, validation, diff, skipped
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.RunID, run.Timestamp, run.Universe, string(run.Trigger), run.Supersedes,
		scores, positions, validation, diff, skipped,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %s: %w", run.RunID, err)
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id":     run.RunID,
		"trigger":    run.Trigger,
		"supersedes": run.Supersedes,
	}).Info("Run committed")

	return nil
}

func scanRun(row pgx.Row) (*contracts.RebalanceRun, error) {
	var (
		run        contracts.RebalanceRun
		runAt      time.Time
		trigger    string
		scores     []byte
		positions  []byte
		validation []byte
		diff       []byte
	)

	err := row.Scan(&run.RunID, &runAt, &run.Universe, &trigger, &run.Supersedes,
		&scores, &positions, &validation, &diff, &run.Skipped)
	if err != nil {
		return nil, err
	}

	run.Timestamp = runAt
	run.Trigger = contracts.RunTrigger(trigger)

	if err := json.Unmarshal(scores, &run.Scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(positions, &run.Positions); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	if err := json.Unmarshal(validation, &run.Validation); err != nil {
		return nil, fmt.Errorf("unmarshal validation: %w", err)
	}
	if len(diff) > 0 {
		run.Diff = &contracts.RunDiff{}
		if err := json.Unmarshal(diff, run.Diff); err != nil {
			return nil, fmt.Errorf("unmarshal diff: %w", err)
		}
	}

	return &run, nil
}
