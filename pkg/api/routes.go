package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/sources", s.HandleListSources)
	mux.HandleFunc("GET /api/actions", s.HandleListActions)
	mux.HandleFunc("GET /api/reports", s.HandleListReports)
	mux.HandleFunc("GET /api/palette/ws", s.HandlePaletteWS)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
