package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd reports infrastructure health.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database and redis connectivity",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("env:      %s\n", a.cfg.Env)

	if a.db == nil {
		fmt.Println("database: not configured (in-memory store)")
	} else {
		health, err := a.db.HealthCheck(ctx)
		if err != nil {
			fmt.Printf("database: unhealthy (%v)\n", err)
		} else {
			fmt.Printf("database: ok (%v, %d/%d conns)\n",
				health.ResponseTime, health.TotalConns, health.MaxConns)
		}
	}

	if a.rdb.Enabled() {
		fmt.Println("redis:    enabled")
	} else {
		fmt.Println("redis:    disabled")
	}

	if a.static != nil {
		fmt.Printf("provider: dev universe (%d tickers)\n", len(a.static.Tickers()))
	} else {
		fmt.Printf("provider: %s\n", a.cfg.Provider.BaseURL)
	}

	return nil
}
