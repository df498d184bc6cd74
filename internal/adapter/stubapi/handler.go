// Package stubapi is an in-memory stand-in for the reports backend. It serves
// the same four endpoints the gateway calls and is meant for local
// development and end-to-end tests only.
package stubapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// Handler serves /api/health, /api/reports, /api/stats and /api/submit.
type Handler struct {
	router chi.Router
	clock  clockwork.Clock
	logger *slog.Logger

	mu      sync.RWMutex
	reports []domain.Report
	nextID  int
}

// NewHandler creates an empty backend. A nil clock uses real time.
func NewHandler(clock clockwork.Clock, logger *slog.Logger) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	h := &Handler{clock: clock, logger: logger, nextID: 1}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/health", h.handleHealth)
	r.Get("/api/reports", h.handleReports)
	r.Get("/api/stats", h.handleStats)
	r.Post("/api/submit", h.handleSubmit)
	h.router = r

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Add stores a submission as a new report stamped with the current time.
func (h *Handler) Add(s domain.Submission) domain.Report {
	return h.addAt(s, h.clock.Now())
}

func (h *Handler) addAt(s domain.Submission, at time.Time) domain.Report {
	h.mu.Lock()
	defer h.mu.Unlock()

	loc := s.Location
	r := domain.Report{
		ID:          domain.ReportID(fmt.Sprintf("r-%d", h.nextID)),
		Sector:      s.Sector,
		Amount:      s.Amount,
		Description: s.Description,
		City:        s.City,
		Location:    &loc,
		Timestamp:   at.UTC().Format(time.RFC3339),
	}
	h.nextID++
	h.reports = append(h.reports, r)
	return r
}

// Reports returns a copy of the stored reports in insertion order.
func (h *Handler) Reports() []domain.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Report, len(h.reports))
	copy(out, h.reports)
	return out
}

// Stats computes the summary over the stored reports.
func (h *Handler) Stats() domain.Stats {
	return ComputeStats(h.Reports())
}

// ComputeStats counts reports per sector and averages the amounts that are
// present.
func ComputeStats(reports []domain.Report) domain.Stats {
	stats := domain.Stats{
		TotalReports: len(reports),
		SectorCounts: make(map[string]int),
	}
	sum := decimal.Zero
	n := 0
	for _, r := range reports {
		stats.SectorCounts[r.Sector]++
		if r.Amount.Valid {
			sum = sum.Add(r.Amount.Value)
			n++
		}
	}
	if n > 0 {
		stats.AvgAmount = domain.NewAmount(sum.DivRound(decimal.NewFromInt(int64(n)), 2))
	}
	return stats
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReports(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, envelope{Data: h.Reports()})
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, envelope{Data: h.Stats()})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var s domain.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&s); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload: " + err.Error()})
		return
	}
	if !s.Location.Valid() {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location"})
		return
	}
	if s.Sector == "" {
		s.Sector = domain.SectorUnknown
	}

	report := h.Add(s)
	h.logger.Info("report stored", "id", report.ID, "sector", report.Sector)
	sharedobs.WriteJSON(w, http.StatusCreated, envelope{Data: report})
}

type envelope struct {
	Data any `json:"data"`
}
