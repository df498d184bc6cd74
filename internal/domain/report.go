package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// SectorAll is the filter sentinel meaning "no filtering applied".
	SectorAll = "All"
	// SectorUnknown is submitted when the draft has no sector.
	SectorUnknown = "Unknown"
	// DayUnknown is the histogram key for reports without a timestamp.
	DayUnknown = "unknown"
)

// SuggestedSectors is the fixed list offered by the submission form.
var SuggestedSectors = []string{"Police", "Health", "Land Office", "Education", "Customs", "Other"}

// ReportID is the opaque identifier assigned by the backend. The backend may
// encode it as a JSON string or number; both decode to the same text form.
type ReportID string

func (id *ReportID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode report id: %w", err)
		}
		*id = ReportID(s)
		return nil
	}
	*id = ReportID(data)
	return nil
}

// MaxAmount is the largest magnitude ParseAmount accepts.
var MaxAmount = decimal.New(1, 15)

// ErrAmountOutOfRange is returned for amounts beyond MaxAmount, with more
// than 18 decimal places, or written with too many characters.
var ErrAmountOutOfRange = errors.New("amount out of range")

const (
	maxAmountText     = 64
	minAmountExponent = -18
	maxAmountExponent = 15
)

// ParseAmount parses decimal text. The exponent is checked before any
// arithmetic so inputs like "1e9999999" are rejected without expanding them.
func ParseAmount(s string) (decimal.Decimal, error) {
	if len(s) > maxAmountText {
		return decimal.Zero, fmt.Errorf("%w: %d characters", ErrAmountOutOfRange, len(s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if exp := d.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return decimal.Zero, fmt.Errorf("%w: exponent %d", ErrAmountOutOfRange, exp)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, ErrAmountOutOfRange
	}
	return d, nil
}

// Amount is an optional sum of money in currency units.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount returns a present amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Valid: true}
}

// AmountFromFloat is a convenience for tests and the stub backend.
func AmountFromFloat(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

// String returns the decimal text, or "" when the amount is absent.
func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	return a.Value.String()
}

// Float64 returns the amount as a float and whether it is present.
func (a Amount) Float64() (float64, bool) {
	if !a.Valid {
		return 0, false
	}
	return a.Value.InexactFloat64(), true
}

// MarshalJSON writes a bare JSON number, or null when absent.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null. Values
// outside ParseAmount's range are rejected.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	var text string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		text = n.String()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		*a = Amount{}
		return nil
	}
	d, err := ParseAmount(text)
	if err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	*a = NewAmount(d)
	return nil
}

// Location is a WGS-84 latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite and within range.
func (l Location) Valid() bool {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) || math.IsInf(l.Lat, 0) || math.IsInf(l.Lng, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Report is a single anonymous corruption report as returned by the backend.
type Report struct {
	ID          ReportID  `json:"id"`
	Sector      string    `json:"sector"`
	Amount      Amount    `json:"amount"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city,omitempty"`
	Location    *Location `json:"location"`
	Timestamp   string    `json:"timestamp,omitempty"`
}

// Stats is the backend-computed summary snapshot.
type Stats struct {
	TotalReports int            `json:"total_reports"`
	AvgAmount    Amount         `json:"avg_amount"`
	SectorCounts map[string]int `json:"sector_counts"`
}

// Submission is the payload posted for a new report. The backend assigns
// the id and timestamp.
type Submission struct {
	Sector      string   `json:"sector"`
	Amount      Amount   `json:"amount"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	Location    Location `json:"location"`
}

// SubmissionEvent announces an accepted submission to downstream consumers.
// It deliberately carries no free text.
type SubmissionEvent struct {
	Sector      string    `json:"sector"`
	Amount      Amount    `json:"amount"`
	City        string    `json:"city,omitempty"`
	Location    Location  `json:"location"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewSubmissionEvent derives the event for an accepted submission.
func NewSubmissionEvent(s Submission, at time.Time) SubmissionEvent {
	return SubmissionEvent{
		Sector:      s.Sector,
		Amount:      s.Amount,
		City:        s.City,
		Location:    s.Location,
		SubmittedAt: at.UTC(),
	}
}
