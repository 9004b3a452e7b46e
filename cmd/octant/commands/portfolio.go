package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/octantlabs/octant/internal/contracts"
)

// portfolioCmd groups read-only portfolio inspection commands.
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Inspect the committed portfolio",
	Long: `Display the latest committed rebalance run.

Examples:
  go run ./cmd/octant portfolio show
  go run ./cmd/octant portfolio show --scores`,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest committed run",
	RunE:  runPortfolioShow,
}

var (
	// Portfolio flags
	portfolioScores bool
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioShowCmd)

	portfolioShowCmd.Flags().BoolVar(&portfolioScores, "scores", false, "include per-pillar scores")
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.store.Latest(ctx)
	if errors.Is(err, contracts.ErrNoCommittedRun) {
		fmt.Println("No committed run yet. Run: octant rebalance run")
		return nil
	}
	if err != nil {
		return err
	}

	printRun(run)

	if portfolioScores {
		fmt.Println()
		for _, pos := range run.Positions {
			fmt.Printf("%-6s", pos.Ticker)
			for _, p := range contracts.AllPillars() {
				fmt.Printf("  %s=%d", p.DisplayName(), pos.PillarPoints[p])
			}
			fmt.Println()
		}
	}

	return nil
}
