// Package portal drives the heatmap page. It loads reports and stats from
// the backend, submits drafts, and assembles the map and dashboard views
// from the aggregation functions in the domain package.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/draft"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Banners shown above the form.
const (
	BannerFetchFailed   = "Could not fetch data from backend. Check API URL."
	BannerSubmitFailed  = "Submit failed. Check backend API."
	BannerInvalidAmount = "Amount must be a non-negative number."
)

// Gateway is the remote reports backend.
type Gateway interface {
	Health(ctx context.Context) error
	GetReports(ctx context.Context) ([]domain.Report, error)
	GetStats(ctx context.Context) (domain.Stats, error)
	SubmitReport(ctx context.Context, s domain.Submission) error
}

// MapSettings is the initial map view. Center is also where new drafts start.
type MapSettings struct {
	Center domain.Location
	Zoom   int
}

// Portal is safe for concurrent use; every call works on its own data.
type Portal struct {
	gateway   Gateway
	geocoder  domain.Geocoder
	publisher domain.SubmissionPublisher
	settings  MapSettings
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Portal)

// WithGeocoder enables city lookups for drafts.
func WithGeocoder(g domain.Geocoder) Option {
	return func(p *Portal) { p.geocoder = g }
}

// WithPublisher announces accepted submissions.
func WithPublisher(pub domain.SubmissionPublisher) Option {
	return func(p *Portal) { p.publisher = pub }
}

// New creates a portal over gateway.
func New(gateway Gateway, settings MapSettings, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Portal {
	p := &Portal{
		gateway:  gateway,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDraft returns an empty draft at the configured map center.
func (p *Portal) NewDraft() draft.Draft {
	return draft.New(p.settings.Center)
}

// Settings returns the configured map view.
func (p *Portal) Settings() MapSettings {
	return p.settings
}

// Snapshot is one consistent fetch of backend data.
type Snapshot struct {
	Reports []domain.Report
	Stats   domain.Stats
}

// Fetch checks backend health, then fetches reports and stats concurrently.
func (p *Portal) Fetch(ctx context.Context) (Snapshot, error) {
	if err := p.gateway.Health(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("backend health: %w", err)
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reports, err := p.gateway.GetReports(gctx)
		if err != nil {
			return fmt.Errorf("fetch reports: %w", err)
		}
		snap.Reports = reports
		return nil
	})
	g.Go(func() error {
		stats, err := p.gateway.GetStats(gctx)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}
		snap.Stats = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Load builds the page for sector. A backend failure still yields a page,
// empty and carrying BannerFetchFailed.
func (p *Portal) Load(ctx context.Context, sector string) Page {
	if sector == "" {
		sector = domain.SectorAll
	}

	snap, err := p.Fetch(ctx)
	if err != nil {
		p.logger.Warn("backend fetch failed", "error", err)
		page := p.buildPage(sector, nil, nil)
		page.Banner = BannerFetchFailed
		page.Failure = FailureBackend
		return page
	}

	page := p.buildPage(sector, snap.Reports, &snap.Stats)
	p.metrics.HeatPointsRendered.Observe(float64(len(page.Map.Heat)))
	return page
}

// Submit posts the draft. On success it returns the cleared draft; on
// failure the draft is returned unchanged with the error.
func (p *Portal) Submit(ctx context.Context, d draft.Draft) (draft.Draft, error) {
	payload, err := d.Payload()
	if err != nil {
		p.metrics.Submissions.WithLabelValues("invalid").Inc()
		return d, err
	}

	if err := p.gateway.SubmitReport(ctx, payload); err != nil {
		p.metrics.Submissions.WithLabelValues("failed").Inc()
		return d, fmt.Errorf("submit report: %w", err)
	}
	p.metrics.Submissions.WithLabelValues("accepted").Inc()
	p.logger.Info("report submitted", "sector", payload.Sector, "has_amount", payload.Amount.Valid)

	p.publish(ctx, payload)
	return d.Cleared(), nil
}

// SubmitAndReload submits the draft and rebuilds the page from a fresh fetch.
func (p *Portal) SubmitAndReload(ctx context.Context, sector string, d draft.Draft) Page {
	next, err := p.Submit(ctx, d)
	if err != nil {
		p.logger.Warn("submission failed", "error", err)
		page := p.Load(ctx, sector)
		page.Draft = d
		if errors.Is(err, draft.ErrInvalidAmount) {
			page.Banner = BannerInvalidAmount
			page.Failure = FailureInvalidDraft
		} else {
			page.Banner = BannerSubmitFailed
			page.Failure = FailureBackend
		}
		return page
	}

	page := p.Load(ctx, sector)
	page.Draft = next
	return page
}

// UseMapCenter places the draft at center. With a geocoder configured and no
// city entered, the city is filled from the place at center.
func (p *Portal) UseMapCenter(ctx context.Context, d draft.Draft, center domain.Location) draft.Draft {
	d = d.WithLocation(center)
	if d.City != "" {
		return d
	}
	if city, ok := domain.CityAt(ctx, center, p.geocoder, p.logger); ok {
		d = d.SetField(draft.FieldCity, city)
	}
	return d
}

// LocateCity moves the draft to its city's coordinates when they can be
// resolved; otherwise the draft is returned as is.
func (p *Portal) LocateCity(ctx context.Context, d draft.Draft) draft.Draft {
	if loc, ok := domain.LocateCity(ctx, d.City, p.geocoder, p.logger); ok {
		return d.WithLocation(loc)
	}
	return d
}

// GeocodingEnabled reports whether city lookups are available.
func (p *Portal) GeocodingEnabled() bool {
	return p.geocoder != nil
}

func (p *Portal) publish(ctx context.Context, s domain.Submission) {
	if p.publisher == nil {
		return
	}
	event := domain.NewSubmissionEvent(s, domain.Now())
	if err := p.publisher.PublishSubmission(ctx, event); err != nil {
		p.logger.Warn("submission event not published", "error", err)
	}
}
