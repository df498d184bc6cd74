package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/corruption-heatmap/internal/adapter/api"
	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type summaryCmd struct {
	root    *rootOptions
	metrics *observability.Metrics
	sector  string
	top     int
}

func newSummaryCmd(root *rootOptions, metrics *observability.Metrics) *cobra.Command {
	sc := &summaryCmd{root: root, metrics: metrics}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print totals, sector counts, reports per day and the hottest points",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.sector, "sector", domain.SectorAll, "Limit days and points to one sector")
	cmd.Flags().IntVar(&sc.top, "top", 5, "Number of hottest points to list")
	return cmd
}

func (sc *summaryCmd) run(cmd *cobra.Command, _ []string) error {
	if sc.top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", sc.top)
	}
	logger := observability.NewLogger(sc.root.logLevel, "text")
	client := api.NewClient(sc.root.apiBase, sc.root.timeout, sc.metrics, logger)
	ctx := cmd.Context()

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("backend not healthy: %w", err)
	}

	var (
		reports []domain.Report
		stats   domain.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reports, err = client.GetReports(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = client.GetStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), stats, domain.FilterBySector(reports, sc.sector), sc.sector, sc.top)
	return nil
}

func printSummary(out io.Writer, stats domain.Stats, reports []domain.Report, sector string, top int) {
	avg := "n/a"
	if stats.AvgAmount.Valid {
		avg = stats.AvgAmount.Value.StringFixed(2)
	}
	fmt.Fprintf(out, "Total reports: %d\n", stats.TotalReports)
	fmt.Fprintf(out, "Average bribe: %s\n", avg)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "\nSectors:")
	for _, s := range domain.SectorShares(stats) {
		fmt.Fprintf(tw, "  %s\t%d\n", s.Sector, s.Count)
	}

	fmt.Fprintf(tw, "\nReports per day (%s):\n", sector)
	for _, b := range domain.BucketByDay(reports).Buckets() {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", b.Day, b.Count, strings.Repeat("#", b.Count))
	}

	fmt.Fprintf(tw, "\nHottest points (%s):\n", sector)
	for _, p := range hottest(domain.ToHeatPoints(reports), top) {
		fmt.Fprintf(tw, "  %.4f, %.4f\t%.2f\n", p.Lat, p.Lng, p.Intensity)
	}
	tw.Flush()
}

// hottest returns up to n points by descending intensity, ties kept in
// input order.
func hottest(points []domain.HeatPoint, n int) []domain.HeatPoint {
	sorted := make([]domain.HeatPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Intensity > sorted[j].Intensity })
	return sorted[:min(max(n, 0), len(sorted))]
}
