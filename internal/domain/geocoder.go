package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned a match.
func (r GeocodingResult) Found() bool {
	return r.FormattedAddress != "" || r.PlaceName != ""
}

// Geocoder resolves between city names and coordinates for the draft form.
type Geocoder interface {
	// ForwardGeocode converts a city name to coordinates.
	ForwardGeocode(ctx context.Context, city string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lng float64) (GeocodingResult, error)
}

// SubmissionPublisher announces accepted submissions downstream.
type SubmissionPublisher interface {
	PublishSubmission(ctx context.Context, event SubmissionEvent) error
	Close() error
}
