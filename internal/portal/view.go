package portal

import (
	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/draft"
)

// Failure classifies what went wrong while producing a page.
type Failure int

const (
	FailureNone Failure = iota
	FailureBackend
	FailureInvalidDraft
)

// HeatOptions are the heat layer rendering options.
type HeatOptions struct {
	Radius int     `json:"radius"`
	Blur   int     `json:"blur"`
	Max    float64 `json:"max"`
}

// DefaultHeatOptions matches the layer the map has always drawn.
var DefaultHeatOptions = HeatOptions{Radius: 25, Blur: 20, Max: domain.MaxIntensity}

// MapView is everything the map needs to draw.
type MapView struct {
	Center  domain.Location    `json:"center"`
	Zoom    int                `json:"zoom"`
	Heat    []domain.HeatPoint `json:"heat"`
	Markers []domain.Marker    `json:"markers"`
	Options HeatOptions        `json:"options"`
}

// StatsBadges are the two summary figures shown under the filter.
type StatsBadges struct {
	TotalReports int    `json:"total_reports"`
	AvgBribe     string `json:"avg_bribe"`
}

// DashboardView holds the chart data.
type DashboardView struct {
	Pie   []domain.SectorShare `json:"pie"`
	Bar   domain.DayHistogram  `json:"bar"`
	Stats *StatsBadges         `json:"stats"`
}

// Page is the full state rendered for one request.
type Page struct {
	Filter           string
	Sectors          []string
	SuggestedSectors []string
	Stats            *StatsBadges
	Map              MapView
	Dashboard        DashboardView
	Draft            draft.Draft
	Banner           string
	Failure          Failure
	GeocodingEnabled bool
}

// buildPage derives every view from one report list. Only the heat layer
// follows the sector filter. stats is nil when the backend could not be
// reached.
func (p *Portal) buildPage(sector string, reports []domain.Report, stats *domain.Stats) Page {
	filtered := domain.FilterBySector(reports, sector)

	page := Page{
		Filter:           sector,
		Sectors:          domain.DistinctSectors(reports),
		SuggestedSectors: domain.SuggestedSectors,
		Map: MapView{
			Center:  p.settings.Center,
			Zoom:    p.settings.Zoom,
			Heat:    domain.ToHeatPoints(filtered),
			Markers: domain.Markers(reports),
			Options: DefaultHeatOptions,
		},
		Dashboard: DashboardView{
			Pie: []domain.SectorShare{},
			Bar: domain.BucketByDay(reports),
		},
		Draft:            p.NewDraft(),
		GeocodingEnabled: p.GeocodingEnabled(),
	}

	if stats != nil {
		badges := badgesFor(*stats)
		page.Stats = &badges
		page.Dashboard.Stats = &badges
		page.Dashboard.Pie = domain.SectorShares(*stats)
	}
	return page
}

func badgesFor(stats domain.Stats) StatsBadges {
	avg := "n/a"
	if stats.AvgAmount.Valid {
		avg = stats.AvgAmount.Value.Round(2).String()
	}
	return StatsBadges{TotalReports: stats.TotalReports, AvgBribe: avg}
}
