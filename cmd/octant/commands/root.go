package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "octant",
	Short: "Octant - eight-pillar quality portfolio engine",
	Long: `Octant scores an equity universe against eight fundamental pillars,
selects the top eight names, and maintains a score-weighted portfolio
through quarterly rebalances and monthly emergency checks.

Usage:
  go run ./cmd/octant [command]

Examples:
  go run ./cmd/octant rebalance run
  go run ./cmd/octant rebalance emergency
  go run ./cmd/octant portfolio show`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
