package portal_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/adapter/api"
	"github.com/couchcryptid/corruption-heatmap/internal/adapter/stubapi"
	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/draft"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	"github.com/couchcryptid/corruption-heatmap/internal/portal"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_SubmitThenRefresh(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := stubapi.NewHandler(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)), logger)
	srv := httptest.NewServer(backend)
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	client := api.NewClient(srv.URL, 5*time.Second, metrics, logger)
	center := domain.Location{Lat: 23.8103, Lng: 90.4125}
	p := portal.New(client, portal.MapSettings{Center: center, Zoom: 10}, metrics, logger)
	ctx := context.Background()

	page := p.Load(ctx, domain.SectorAll)
	require.Equal(t, portal.FailureNone, page.Failure)
	assert.Empty(t, page.Map.Heat)
	assert.Equal(t, []string{domain.SectorAll}, page.Sectors)

	d := page.Draft.
		SetField(draft.FieldSector, "Police").
		SetField(draft.FieldAmount, "150").
		WithLocation(domain.Location{Lat: 23.8, Lng: 90.4})

	page = p.SubmitAndReload(ctx, domain.SectorAll, d)
	require.Equal(t, portal.FailureNone, page.Failure, page.Banner)

	assert.Contains(t, page.Map.Heat, domain.HeatPoint{Lat: 23.8, Lng: 90.4, Intensity: 0.2})
	assert.Contains(t, page.Sectors, "Police")
	assert.Empty(t, page.Draft.Amount)
	assert.Equal(t, "Police", page.Draft.Sector)
	require.NotNil(t, page.Stats)
	assert.Equal(t, 1, page.Stats.TotalReports)
	assert.Equal(t, "150", page.Stats.AvgBribe)
	assert.Equal(t, 1, page.Dashboard.Bar.Count("2024-01-01"))

	// the gateway output feeds the aggregation functions directly
	reports, err := client.GetReports(ctx)
	require.NoError(t, err)
	assert.Contains(t, domain.ToHeatPoints(reports), domain.HeatPoint{Lat: 23.8, Lng: 90.4, Intensity: 0.2})
	assert.Contains(t, domain.DistinctSectors(reports), "Police")
}

func TestEndToEnd_BackendDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(stubapi.NewHandler(nil, logger))
	url := srv.URL
	srv.Close()

	metrics := observability.NewMetricsForTesting()
	p := portal.New(api.NewClient(url, time.Second, metrics, logger),
		portal.MapSettings{Zoom: 10}, metrics, logger)

	page := p.Load(context.Background(), domain.SectorAll)

	assert.Equal(t, portal.FailureBackend, page.Failure)
	assert.Equal(t, portal.BannerFetchFailed, page.Banner)

	page = p.SubmitAndReload(context.Background(), domain.SectorAll, p.NewDraft().SetField(draft.FieldDescription, "kept"))
	assert.Equal(t, portal.BannerSubmitFailed, page.Banner)
	assert.Equal(t, "kept", page.Draft.Description)
}
