package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/klauspost/compress/gzhttp"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/palette"
	"github.com/rubiojr/cmdk/pkg/realtime"
	"github.com/rubiojr/cmdk/pkg/search"
	"github.com/rubiojr/cmdk/pkg/storage"
)

// ReportLister lists persisted error reports. *storage.DB satisfies it.
type ReportLister interface {
	RecentReports(limit int) ([]storage.ErrorReport, error)
}

// ActionLister lists the palette commands. *actions.Source satisfies it.
type ActionLister interface {
	Items() []core.Item
}

// Config wires the server. Actions, Reports and Hub are optional.
type Config struct {
	Registry *core.Registry
	Search   *search.Service
	Actions  ActionLister
	Reports  ReportLister
	Hub      *realtime.Hub
	Palette  palette.Options
	// Context is the default caller context; query parameters override it.
	Context core.Context
}

type Server struct {
	cfg    Config
	logger *log.Logger
}

func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg, logger: log.ForService("api")}
}

// Handler returns the API routes wrapped with compression and CORS. The
// websocket endpoint is served uncompressed since it hijacks the connection.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	root := http.NewServeMux()
	root.HandleFunc("GET /api/palette/ws", s.HandlePaletteWS)
	root.Handle("/", gzhttp.GzipHandler(mux))
	return CorsMiddleware(root)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

// contextFrom overlays the org, project and superuser query parameters on
// the default caller context.
//
//	/api/search?q=members&org=acme&project=web&superuser=true
func (s *Server) contextFrom(q url.Values) core.Context {
	sc := s.cfg.Context
	params := make(map[string]string, len(sc.Params)+2)
	for k, v := range sc.Params {
		params[k] = v
	}

	if org := q.Get("org"); org != "" && org != sc.OrgSlug() {
		sc.Organization = &core.Organization{Slug: org}
	}
	if project := q.Get("project"); project != "" && project != sc.ProjectSlug() {
		sc.Project = &core.Project{Slug: project}
	}
	if slug := sc.OrgSlug(); slug != "" {
		params["orgId"] = slug
	}
	if slug := sc.ProjectSlug(); slug != "" {
		params["projectId"] = slug
	}
	if su, err := strconv.ParseBool(q.Get("superuser")); err == nil {
		sc.Superuser = su
	}
	sc.Params = params
	return sc
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
