package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/octantlabs/octant/internal/contracts"
)

// rebalanceCmd groups the portfolio construction commands.
var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Score, select, and commit a portfolio",
	Long: `Run the scoring-selection-weighting pipeline and commit the result.

Subcommands:
  run        full quarterly rebalance over the universe
  emergency  monthly check of held names, acts only on eliminations

Examples:
  go run ./cmd/octant rebalance run --tickers NVDA,MSFT,ASML
  go run ./cmd/octant rebalance run
  go run ./cmd/octant rebalance emergency`,
}

var rebalanceRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full quarterly rebalance",
	Long: `Fetch and score every ticker in the universe, select the top eight,
allocate score-proportional weights, and commit the run.

Without --tickers the built-in dev universe is used when no provider
endpoint is configured.`,
	RunE: runRebalance,
}

var rebalanceEmergencyCmd = &cobra.Command{
	Use:   "emergency",
	Short: "Run a monthly emergency check",
	Long: `Re-score the currently held names. When every holding survives its
pillar floors nothing changes; when one is eliminated it is replaced from
the previous run's qualifying bench and all weights are recomputed.`,
	RunE: runEmergency,
}

var (
	// Rebalance flags
	rebalanceTickers  string
	rebalanceUniverse string
)

func init() {
	rootCmd.AddCommand(rebalanceCmd)
	rebalanceCmd.AddCommand(rebalanceRunCmd)
	rebalanceCmd.AddCommand(rebalanceEmergencyCmd)

	rebalanceRunCmd.Flags().StringVar(&rebalanceTickers, "tickers", "", "comma-separated universe tickers")
	rebalanceRunCmd.Flags().StringVar(&rebalanceUniverse, "universe", "", "universe identifier (default from config)")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	universeID := rebalanceUniverse
	if universeID == "" {
		universeID = a.cfg.Rebalance.Universe
	}

	tickers := splitTickers(rebalanceTickers)
	if len(tickers) == 0 {
		if a.static == nil {
			return fmt.Errorf("--tickers is required when a provider endpoint is configured")
		}
		tickers = a.static.Tickers()
		universeID = "dev"
	}

	run, err := a.coordinator.RunQuarterly(ctx, universeID, tickers)
	if err != nil {
		if contracts.IsInsufficientCandidates(err) {
			fmt.Printf("Rebalance aborted, previous portfolio unchanged: %v\n", err)
			return err
		}
		return err
	}

	printRun(run)
	return nil
}

func runEmergency(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	outcome, err := a.coordinator.RunEmergencyCheck(ctx)
	if err != nil {
		return err
	}

	if !outcome.ActionTaken {
		fmt.Println("Emergency check: no eliminations, portfolio unchanged")
		return nil
	}

	fmt.Printf("Emergency rebalance: removed %s\n", strings.Join(outcome.Eliminated, ", "))
	printRun(outcome.Run)
	return nil
}

func splitTickers(s string) []string {
	if s == "" {
		return nil
	}

	var tickers []string
	for _, t := range strings.Split(s, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

func printRun(run *contracts.RebalanceRun) {
	fmt.Printf("\n=== Run %s (%s) ===\n", run.RunID, run.Trigger)
	fmt.Printf("Universe: %s   Scored: %d   Skipped: %d\n\n",
		run.Universe, len(run.Scores), len(run.Skipped))

	fmt.Printf("%-4s %-6s %6s %8s\n", "Rank", "Ticker", "Score", "Weight")
	for _, pos := range run.Positions {
		fmt.Printf("%-4d %-6s %6d %7.1f%%\n", pos.Rank, pos.Ticker, pos.TotalScore, pos.Weight*100)
	}

	if run.Diff != nil && run.Diff.TotalChanges() > 0 {
		fmt.Println()
		for _, add := range run.Diff.Additions {
			fmt.Printf("  + %s (%.1f%%)\n", add.Ticker, add.Weight*100)
		}
		for _, rem := range run.Diff.Removals {
			fmt.Printf("  - %s\n", rem.Ticker)
		}
		for _, wc := range run.Diff.WeightChanges {
			fmt.Printf("  ~ %s %.1f%% -> %.1f%%\n", wc.Ticker, wc.OldWeight*100, wc.NewWeight*100)
		}
	}

	for _, n := range run.Validation.Notices {
		fmt.Printf("note: %s\n", n)
	}
}
