// Package draft holds the in-progress report form and the pure commands that
// transform it. Every command takes a Draft by value and returns a new one.
package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
)

// Form field names, shared with the HTML form.
const (
	FieldSector      = "sector"
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldCity        = "city"
	FieldLat         = "lat"
	FieldLng         = "lng"
)

// ErrInvalidAmount is returned when the amount text is not a non-negative number.
var ErrInvalidAmount = errors.New("invalid amount")

// Draft is the report being composed. Amount is kept as the user typed it
// and only parsed when the payload is built.
type Draft struct {
	Sector      string
	Amount      string
	Description string
	City        string
	Location    domain.Location
}

// New returns an empty draft located at center.
func New(center domain.Location) Draft {
	return Draft{Location: center}
}

// SetField replaces one text field. Unknown names leave the draft unchanged.
func (d Draft) SetField(name, value string) Draft {
	switch name {
	case FieldSector:
		d.Sector = value
	case FieldAmount:
		d.Amount = value
	case FieldDescription:
		d.Description = value
	case FieldCity:
		d.City = value
	}
	return d
}

// WithLocation moves the draft to loc, typically the current map center.
func (d Draft) WithLocation(loc domain.Location) Draft {
	d.Location = loc
	return d
}

// Payload builds the submission. An empty sector becomes SectorUnknown and
// an empty amount is sent as null. The draft itself is never modified.
func (d Draft) Payload() (domain.Submission, error) {
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return domain.Submission{}, err
	}

	sector := strings.TrimSpace(d.Sector)
	if sector == "" {
		sector = domain.SectorUnknown
	}

	return domain.Submission{
		Sector:      sector,
		Amount:      amount,
		Description: d.Description,
		City:        strings.TrimSpace(d.City),
		Location:    d.Location,
	}, nil
}

// Cleared is the draft after a successful submission: description and
// amount are emptied while sector, city and location carry over.
func (d Draft) Cleared() Draft {
	d.Description = ""
	d.Amount = ""
	return d
}

// parseAmount accepts "1500", "1500.50" and "1500,50". Group separators are
// not supported.
func parseAmount(text string) (domain.Amount, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return domain.Amount{}, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := domain.ParseAmount(s)
	if errors.Is(err, domain.ErrAmountOutOfRange) {
		return domain.Amount{}, fmt.Errorf("%w: amount is too large or too precise", ErrInvalidAmount)
	}
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
	}
	if d.IsNegative() {
		return domain.Amount{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, text)
	}
	return domain.NewAmount(d), nil
}
