// Command heatmapctl inspects a reports backend from the terminal and can run
// an in-memory stand-in backend for local development.
//
// Usage:
//
//	heatmapctl summary --api http://localhost:5000 --sector Police
//	heatmapctl stub-api --addr :5000 --seed
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiBase  string
	timeout  time.Duration
	logLevel string
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(observability.NewMetrics()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(metrics *observability.Metrics) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "heatmapctl",
		Short:         "Inspect and simulate the corruption reports backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiBase, "api", sharedcfg.EnvOrDefault("API_BASE", "http://localhost:5000"), "Base URL of the reports backend")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Backend request timeout")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newSummaryCmd(opts, metrics))
	cmd.AddCommand(newStubAPICmd(opts))
	return cmd
}
