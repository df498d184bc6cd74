package http

import (
	"bytes"
	"net/http"

	"github.com/couchcryptid/corruption-heatmap/internal/draft"
	"github.com/couchcryptid/corruption-heatmap/internal/portal"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Form and query parameter names.
const (
	paramSector    = "sector"
	paramFilter    = "filter"
	paramCenterLat = "center_lat"
	paramCenterLng = "center_lng"
)

const (
	bannerInvalidCenter = "Map center is not a valid location."
	bannerCityNotFound  = "Could not find that city on the map."
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.portal.Load(r.Context(), r.URL.Query().Get(paramSector)))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	d := draft.FromValues(r.PostForm, s.portal.Settings().Center)
	s.render(w, s.portal.SubmitAndReload(r.Context(), r.PostForm.Get(paramFilter), d))
}

func (s *Server) handleUseCenter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	d := draft.FromValues(r.PostForm, s.portal.Settings().Center)

	center, ok := draft.ParseLocation(r.PostForm.Get(paramCenterLat), r.PostForm.Get(paramCenterLng))
	if ok {
		d = s.portal.UseMapCenter(r.Context(), d, center)
	}

	page := s.pageWithDraft(r, d)
	if !ok && page.Failure == portal.FailureNone {
		page.Banner = bannerInvalidCenter
		page.Failure = portal.FailureInvalidDraft
	}
	s.render(w, page)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	d := draft.FromValues(r.PostForm, s.portal.Settings().Center)
	located := s.portal.LocateCity(r.Context(), d)

	page := s.pageWithDraft(r, located)
	if located.Location == d.Location && d.City != "" && page.Banner == "" {
		page.Banner = bannerCityNotFound
	}
	s.render(w, page)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	page := s.portal.Load(r.Context(), r.URL.Query().Get(paramSector))
	if page.Failure != portal.FailureNone {
		sharedobs.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": page.Banner})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, page.Map)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page := s.portal.Load(r.Context(), "")
	if page.Failure != portal.FailureNone {
		sharedobs.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": page.Banner})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, page.Dashboard)
}

// pageWithDraft reloads the page for the posted filter, keeping d.
func (s *Server) pageWithDraft(r *http.Request, d draft.Draft) portal.Page {
	page := s.portal.Load(r.Context(), r.PostForm.Get(paramFilter))
	page.Draft = d
	return page
}

func (s *Server) render(w http.ResponseWriter, page portal.Page) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(page.Failure))
	_, _ = buf.WriteTo(w)
}

func statusFor(f portal.Failure) int {
	switch f {
	case portal.FailureBackend:
		return http.StatusBadGateway
	case portal.FailureInvalidDraft:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}
