package domain

import (
	"context"
	"log/slog"
)

// CityAt looks up the place name at loc. It returns false when geocoder is
// nil, the lookup fails or nothing is found (graceful degradation).
func CityAt(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) (string, bool) {
	if geocoder == nil || !loc.Valid() {
		return "", false
	}

	result, err := geocoder.ReverseGeocode(ctx, loc.Lat, loc.Lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", loc.Lat,
			"lng", loc.Lng,
			"error", err,
		)
		return "", false
	}
	if result.PlaceName == "" {
		return "", false
	}
	return result.PlaceName, true
}

// LocateCity resolves a city name to coordinates. It returns false when
// geocoder is nil, the city is empty, the lookup fails or the result is not
// a usable location.
func LocateCity(ctx context.Context, city string, geocoder Geocoder, logger *slog.Logger) (Location, bool) {
	if geocoder == nil || city == "" {
		return Location{}, false
	}

	result, err := geocoder.ForwardGeocode(ctx, city)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"city", city,
			"error", err,
		)
		return Location{}, false
	}
	loc := Location{Lat: result.Lat, Lng: result.Lng}
	if !result.Found() || (loc.Lat == 0 && loc.Lng == 0) || !loc.Valid() {
		return Location{}, false
	}
	return loc, true
}
