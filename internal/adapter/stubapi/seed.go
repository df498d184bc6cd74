package stubapi

import (
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
)

type seedReport struct {
	sector  string
	amount  float64 // 0 means absent
	city    string
	lat     float64
	lng     float64
	daysAgo int
}

var sampleReports = []seedReport{
	{"Police", 500, "Dhaka", 23.8103, 90.4125, 0},
	{"Police", 1200, "Dhaka", 23.7465, 90.3760, 0},
	{"Land Office", 5000, "Gazipur", 23.9999, 90.4203, 1},
	{"Health", 0, "Narayanganj", 23.6238, 90.5000, 1},
	{"Education", 300, "Rajshahi", 24.3745, 88.6042, 2},
	{"Customs", 15000, "Chattogram", 22.3569, 91.7832, 2},
	{"Police", 200, "Sylhet", 24.8949, 91.8687, 3},
	{"Other", 0, "Khulna", 22.8456, 89.5403, 4},
}

// Seed fills the backend with a fixed set of sample reports spread over the
// last few days.
func (h *Handler) Seed() {
	now := h.clock.Now()
	for _, s := range sampleReports {
		sub := domain.Submission{
			Sector:   s.sector,
			City:     s.city,
			Location: domain.Location{Lat: s.lat, Lng: s.lng},
		}
		if s.amount > 0 {
			sub.Amount = domain.AmountFromFloat(s.amount)
		}
		h.addAt(sub, now.Add(-time.Duration(s.daysAgo)*24*time.Hour))
	}
}
