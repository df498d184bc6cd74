package domain

import "sort"

// sectorPalette is cycled through for pie slices.
var sectorPalette = []string{"#ef4444", "#facc15", "#3b82f6", "#10b981", "#8b5cf6", "#f97316"}

// SectorShare is one slice of the sector pie chart.
type SectorShare struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
	Color  string `json:"color"`
}

// SectorShares shapes the backend's sector counts into pie slices, largest
// first and ties broken by name.
func SectorShares(stats Stats) []SectorShare {
	shares := make([]SectorShare, 0, len(stats.SectorCounts))
	for sector, count := range stats.SectorCounts {
		shares = append(shares, SectorShare{Sector: sector, Count: count})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Sector < shares[j].Sector
	})
	for i := range shares {
		shares[i].Color = sectorPalette[i%len(sectorPalette)]
	}
	return shares
}

// Marker is a clickable circle on the map with its popup contents.
type Marker struct {
	ID          ReportID `json:"id"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Sector      string   `json:"sector"`
	City        string   `json:"city,omitempty"`
	Amount      string   `json:"amount,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Markers builds one marker per located report. Reports without a valid
// location are skipped, as in ToHeatPoints.
func Markers(reports []Report) []Marker {
	markers := make([]Marker, 0, len(reports))
	for _, r := range reports {
		if r.Location == nil || !r.Location.Valid() {
			continue
		}
		m := Marker{
			ID:          r.ID,
			Lat:         r.Location.Lat,
			Lng:         r.Location.Lng,
			Sector:      r.Sector,
			City:        r.City,
			Description: r.Description,
		}
		// A zero amount is not shown, matching how the form treats it.
		if r.Amount.Valid && !r.Amount.Value.IsZero() {
			m.Amount = r.Amount.String()
		}
		markers = append(markers, m)
	}
	return markers
}
