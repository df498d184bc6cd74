package domain

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MinIntensity keeps every located report visible on the heat layer.
	MinIntensity = 0.2
	// MaxIntensity caps the heat weight so outliers don't rescale the layer.
	MaxIntensity = 1.0
)

var (
	intensityScale  = decimal.NewFromInt(1000)
	defaultHeatBase = decimal.NewFromInt(1)
)

// HeatPoint is a weighted location on the heat layer.
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
}

// FilterBySector returns the reports whose sector equals sector, preserving
// order. SectorAll returns the input unchanged.
func FilterBySector(reports []Report, sector string) []Report {
	if sector == SectorAll {
		return reports
	}
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if r.Sector == sector {
			out = append(out, r)
		}
	}
	return out
}

// Intensity maps an amount to a heat weight: amount/1000 clamped to
// [MinIntensity, MaxIntensity]. Absent and zero amounts count as 1.
func Intensity(a Amount) float64 {
	base := defaultHeatBase
	if a.Valid && !a.Value.IsZero() {
		base = a.Value
	}
	v := base.Div(intensityScale).InexactFloat64()
	return math.Min(MaxIntensity, math.Max(MinIntensity, v))
}

// ToHeatPoints converts reports into heat points. Reports without a valid
// location are skipped.
func ToHeatPoints(reports []Report) []HeatPoint {
	points := make([]HeatPoint, 0, len(reports))
	for _, r := range reports {
		if r.Location == nil || !r.Location.Valid() {
			continue
		}
		points = append(points, HeatPoint{
			Lat:       r.Location.Lat,
			Lng:       r.Location.Lng,
			Intensity: Intensity(r.Amount),
		})
	}
	return points
}

// DistinctSectors lists the sectors present in reports, led by SectorAll and
// otherwise in encounter order. Empty sectors are ignored.
func DistinctSectors(reports []Report) []string {
	seen := map[string]struct{}{SectorAll: {}}
	sectors := []string{SectorAll}
	for _, r := range reports {
		if r.Sector == "" {
			continue
		}
		if _, ok := seen[r.Sector]; ok {
			continue
		}
		seen[r.Sector] = struct{}{}
		sectors = append(sectors, r.Sector)
	}
	return sectors
}

// DayCount is one bar of the reports-per-day chart.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// DayHistogram is a sparse, insertion-ordered mapping from day to count.
type DayHistogram struct {
	buckets []DayCount
	index   map[string]int
}

func (h *DayHistogram) add(day string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	if i, ok := h.index[day]; ok {
		h.buckets[i].Count++
		return
	}
	h.index[day] = len(h.buckets)
	h.buckets = append(h.buckets, DayCount{Day: day, Count: 1})
}

// Count returns the number of reports on day, 0 when unseen.
func (h DayHistogram) Count(day string) int {
	if i, ok := h.index[day]; ok {
		return h.buckets[i].Count
	}
	return 0
}

// Len returns the number of distinct days.
func (h DayHistogram) Len() int { return len(h.buckets) }

// Days returns the chart labels in first-seen order.
func (h DayHistogram) Days() []string {
	days := make([]string, len(h.buckets))
	for i, b := range h.buckets {
		days[i] = b.Day
	}
	return days
}

// Counts returns the chart values aligned with Days.
func (h DayHistogram) Counts() []int {
	counts := make([]int, len(h.buckets))
	for i, b := range h.buckets {
		counts[i] = b.Count
	}
	return counts
}

// Buckets returns a copy of the ordered day counts.
func (h DayHistogram) Buckets() []DayCount {
	out := make([]DayCount, len(h.buckets))
	copy(out, h.buckets)
	return out
}

func (h DayHistogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Buckets())
}

// BucketByDay counts reports per YYYY-MM-DD day taken from the first ten
// characters of the timestamp. Reports without a timestamp count toward
// DayUnknown.
func BucketByDay(reports []Report) DayHistogram {
	var h DayHistogram
	for _, r := range reports {
		h.add(dayOf(r.Timestamp))
	}
	return h
}

func dayOf(timestamp string) string {
	if timestamp == "" {
		return DayUnknown
	}
	if len(timestamp) < 10 {
		return timestamp
	}
	return timestamp[:10]
}
