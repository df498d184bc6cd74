package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportID_Decode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ReportID
	}{
		{"string", `{"id":"r-1"}`, "r-1"},
		{"number", `{"id":42}`, "42"},
		{"null", `{"id":null}`, ""},
		{"missing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Report
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.expected, r.ID)
		})
	}
}

func TestAmount_Decode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   bool
		text    string
		wantErr bool
	}{
		{"number", `1500`, true, "1500", false},
		{"fractional number", `12.5`, true, "12.5", false},
		{"numeric string", `"250.75"`, true, "250.75", false},
		{"empty string", `""`, false, "", false},
		{"null", `null`, false, "", false},
		{"garbage", `"lots"`, false, "", true},
		{"quoted whitespace", `" 42 "`, true, "42", false},
		{"huge exponent", `1e9999999`, false, "", true},
		{"huge exponent string", `"1e9999999"`, false, "", true},
		{"tiny exponent", `1e-9999999`, false, "", true},
		{"over maximum", `2000000000000000`, false, "", true},
		{"boolean", `true`, false, "", true},
		{"stray quotes", `"\"7\""`, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, a.Valid)
			assert.Equal(t, tt.text, a.String())
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"0", "0", nil},
		{"0e9999999", "0", nil},
		{"1000000000000000", "1000000000000000", nil},
		{"-1000000000000000", "-1000000000000000", nil},
		{"1e15", "1000000000000000", nil},
		{"0.000000000000000001", "0.000000000000000001", nil},
		{"1e16", "", ErrAmountOutOfRange},
		{"1000000000000000.5", "", ErrAmountOutOfRange},
		{"1e9999999", "", ErrAmountOutOfRange},
		{"1e-19", "", ErrAmountOutOfRange},
		{strings.Repeat("1", 65), "", ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.input[:min(len(tt.input), 20)], func(t *testing.T) {
			d, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestAmount_Encode(t *testing.T) {
	data, err := json.Marshal(Submission{Sector: "Police", Amount: AmountFromFloat(1500)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":1500`)

	data, err = json.Marshal(Submission{Sector: "Police"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":null`)
}

func TestAmount_Float64(t *testing.T) {
	f, ok := AmountFromFloat(99.5).Float64()
	assert.True(t, ok)
	assert.Equal(t, 99.5, f)

	_, ok = Amount{}.Float64()
	assert.False(t, ok)
}

func TestReport_DecodeBackendShape(t *testing.T) {
	body := `{
		"id": 7,
		"sector": "Land Office",
		"amount": 2000,
		"description": "bribe for deed",
		"city": "Dhaka",
		"location": {"lat": 23.81, "lng": 90.41},
		"timestamp": "2024-03-05T09:30:00Z"
	}`

	var r Report
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	assert.Equal(t, ReportID("7"), r.ID)
	assert.Equal(t, "Land Office", r.Sector)
	assert.Equal(t, "2000", r.Amount.String())
	require.NotNil(t, r.Location)
	assert.Equal(t, Location{Lat: 23.81, Lng: 90.41}, *r.Location)
	assert.Equal(t, "2024-03-05T09:30:00Z", r.Timestamp)
}

func TestLocation_Valid(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want bool
	}{
		{"origin", Location{}, true},
		{"dhaka", Location{Lat: 23.8103, Lng: 90.4125}, true},
		{"bounds", Location{Lat: -90, Lng: 180}, true},
		{"lat out of range", Location{Lat: 90.01, Lng: 0}, false},
		{"lng out of range", Location{Lat: 0, Lng: -180.5}, false},
		{"nan", Location{Lat: math.NaN(), Lng: 0}, false},
		{"inf", Location{Lat: 0, Lng: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.Valid())
		})
	}
}

func TestNewSubmissionEvent(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	s := Submission{
		Sector:      "Customs",
		Amount:      AmountFromFloat(300),
		Description: "free text stays out of events",
		City:        "Chattogram",
		Location:    Location{Lat: 22.35, Lng: 91.78},
	}

	event := NewSubmissionEvent(s, Now())

	assert.Equal(t, "Customs", event.Sector)
	assert.Equal(t, "300", event.Amount.String())
	assert.Equal(t, "Chattogram", event.City)
	assert.Equal(t, s.Location, event.Location)
	assert.Equal(t, fixed, event.SubmittedAt)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "free text")
}
