package draft

import (
	"net/url"
	"strconv"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
)

// FromValues rebuilds a draft from submitted form values. A missing or
// unusable lat/lng pair falls back to fallback.
func FromValues(v url.Values, fallback domain.Location) Draft {
	d := New(fallback)
	for _, name := range []string{FieldSector, FieldAmount, FieldDescription, FieldCity} {
		d = d.SetField(name, v.Get(name))
	}
	if loc, ok := ParseLocation(v.Get(FieldLat), v.Get(FieldLng)); ok {
		d = d.WithLocation(loc)
	}
	return d
}

// ParseLocation parses a coordinate pair and reports whether it is valid.
func ParseLocation(lat, lng string) (domain.Location, bool) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return domain.Location{}, false
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return domain.Location{}, false
	}
	loc := domain.Location{Lat: la, Lng: ln}
	if !loc.Valid() {
		return domain.Location{}, false
	}
	return loc, true
}
