// Package domain models anonymous corruption reports and turns them into
// visualization-ready structures for the heatmap and dashboard.
//
// # Data Source
//
// Reports are owned by a remote backend reached through four HTTP endpoints
// (health, submit, list, stats). This package never performs I/O; it only
// describes the records exchanged with the backend and the pure transforms
// applied to them before rendering.
//
// # Report Conventions
//
// Sector:
//
//	Free-form category label. The form suggests Police, Health, Land Office,
//	Education, Customs and Other, but the backend may accept anything.
//	"Unknown" is sent when the submitter leaves the sector empty.
//	"All" is reserved as the filter sentinel meaning "no filtering".
//
// Amount:
//
//	Optional bribe amount in currency units. The backend may encode it as a
//	JSON number, a numeric string, an empty string or null; empty and null
//	both mean "not reported". See [Amount].
//
// Location:
//
//	WGS-84 pair {lat, lng}. A report without a valid location is kept in the
//	list but never contributes a heat point or a marker.
//
// Timestamp:
//
//	ISO-8601 date-time assigned by the backend, e.g. "2024-01-01T10:00:00Z".
//	Only the first 10 characters (the YYYY-MM-DD day) are used, for the
//	reports-per-day histogram. Missing timestamps fall into the "unknown" day.
//
// # Heat Intensity
//
// Each located report becomes a heat point whose weight is
//
//	clamp(amount / 1000, 0.2, 1.0)
//
// with an absent (or zero) amount treated as 1. Every point therefore stays
// visible at 0.2 and outliers saturate at 1.0, which keeps the heat layer's
// color scale stable. See [Intensity].
//
// # Day Histogram
//
// [BucketByDay] is sparse: only observed days appear, in first-seen order.
// Gaps in the calendar are not filled with zero counts.
package domain
