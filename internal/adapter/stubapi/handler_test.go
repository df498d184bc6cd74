package stubapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func newTestHandler() *Handler {
	return NewHandler(clockwork.NewFakeClockAt(fixedNow), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitThenList(t *testing.T) {
	h := newTestHandler()

	rec := serve(h, http.MethodPost, "/api/submit",
		`{"sector":"Police","amount":"150","description":"","city":"Dhaka","location":{"lat":23.8,"lng":90.4}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(h, http.MethodGet, "/api/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []domain.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)

	r := body.Data[0]
	assert.Equal(t, domain.ReportID("r-1"), r.ID)
	assert.Equal(t, "Police", r.Sector)
	assert.Equal(t, "150", r.Amount.String())
	assert.Equal(t, "Dhaka", r.City)
	require.NotNil(t, r.Location)
	assert.Equal(t, domain.Location{Lat: 23.8, Lng: 90.4}, *r.Location)
	assert.Equal(t, "2024-01-02T09:30:00Z", r.Timestamp)
}

func TestSubmit_AssignsSequentialIDs(t *testing.T) {
	h := newTestHandler()
	for range 3 {
		serve(h, http.MethodPost, "/api/submit", `{"sector":"Health","amount":null,"location":{"lat":1,"lng":1}}`)
	}

	reports := h.Reports()
	require.Len(t, reports, 3)
	assert.Equal(t, domain.ReportID("r-3"), reports[2].ID)
}

func TestSubmit_DefaultsEmptySector(t *testing.T) {
	h := newTestHandler()

	rec := serve(h, http.MethodPost, "/api/submit", `{"sector":"","location":{"lat":1,"lng":1}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.SectorUnknown, h.Reports()[0].Sector)
}

func TestSubmit_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"sector":`},
		{"bad amount", `{"sector":"Police","amount":"lots","location":{"lat":1,"lng":1}}`},
		{"bad location", `{"sector":"Police","location":{"lat":100,"lng":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			rec := serve(h, http.MethodPost, "/api/submit", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, h.Reports())
		})
	}
}

func TestStats(t *testing.T) {
	h := newTestHandler()
	h.Add(domain.Submission{Sector: "Police", Amount: domain.AmountFromFloat(100)})
	h.Add(domain.Submission{Sector: "Police", Amount: domain.AmountFromFloat(200)})
	h.Add(domain.Submission{Sector: "Health"})

	rec := serve(h, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data domain.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.TotalReports)
	assert.Equal(t, "150", body.Data.AvgAmount.String())
	assert.Equal(t, map[string]int{"Police": 2, "Health": 1}, body.Data.SectorCounts)
}

func TestComputeStats_NoAmounts(t *testing.T) {
	stats := ComputeStats([]domain.Report{{Sector: "Other"}})

	assert.Equal(t, 1, stats.TotalReports)
	assert.False(t, stats.AvgAmount.Valid)
}

func TestSeed(t *testing.T) {
	h := newTestHandler()
	h.Seed()

	reports := h.Reports()
	require.Len(t, reports, len(sampleReports))
	assert.Equal(t, "2024-01-02T09:30:00Z", reports[0].Timestamp)
	assert.Equal(t, "2023-12-29T09:30:00Z", reports[len(reports)-1].Timestamp)

	days := domain.BucketByDay(reports)
	assert.Equal(t, 5, days.Len())
	assert.False(t, reports[3].Amount.Valid)
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
