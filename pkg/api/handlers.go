package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rubiojr/cmdk/pkg/search"
	"github.com/rubiojr/cmdk/pkg/storage"
	"github.com/rubiojr/cmdk/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.ParseSearchParams(r.URL.Query())

	// API requires a query parameter
	if params.Query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	for _, name := range params.SourceFilters {
		if _, err := s.cfg.Registry.GetSource(name); err != nil {
			s.writeError(w, http.StatusNotFound, "Source not found", err.Error())
			return
		}
	}

	sc := s.contextFrom(r.URL.Query())
	report := s.cfg.Search.Search(r.Context(), params.Query, sc, params.SourceFilters...)
	page := search.Paginate(report, params.Page, params.Limit)

	response := SearchResponse{
		Query:         params.Query,
		Loading:       page.Loading,
		HasAnyResults: report.HasAnyResults,
		Results:       toResultResponses(page.Results),
		TotalCount:    page.TotalCount,
		Page:          page.Page,
		Limit:         page.Limit,
		TotalPages:    page.TotalPages,
		HasMore:       page.HasMore,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleListSources(w http.ResponseWriter, r *http.Request) {
	names := s.cfg.Registry.ListSources()
	s.writeJSON(w, http.StatusOK, ListSourcesResponse{Sources: names, Count: len(names)})
}

// HandleListActions lists the commands visible to the caller; superuser-only
// commands need superuser=true.
func (s *Server) HandleListActions(w http.ResponseWriter, r *http.Request) {
	resp := ListActionsResponse{Actions: []ActionResponse{}}
	if s.cfg.Actions != nil {
		sc := s.contextFrom(r.URL.Query())
		for _, item := range s.cfg.Actions.Items() {
			if item.RequiresSuperuser && !sc.Superuser {
				continue
			}
			resp.Actions = append(resp.Actions, ActionResponse{
				Title:             item.Title,
				Description:       item.Description,
				RequiresSuperuser: item.RequiresSuperuser,
			})
		}
	}
	resp.Count = len(resp.Actions)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandleListReports(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Reports == nil {
		s.writeJSON(w, http.StatusOK, ListReportsResponse{Reports: []storage.ErrorReport{}})
		return
	}

	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	reports, err := s.cfg.Reports.RecentReports(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list reports", err.Error())
		return
	}
	if reports == nil {
		reports = []storage.ErrorReport{}
	}
	s.writeJSON(w, http.StatusOK, ListReportsResponse{Reports: reports, Count: len(reports)})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
