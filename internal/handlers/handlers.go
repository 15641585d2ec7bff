package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"yatube/internal/cache"
	"yatube/internal/middleware"
	"yatube/internal/render"
	"yatube/internal/service"
	"yatube/internal/utils"

	"github.com/google/uuid"
)

// Server holds all handler dependencies
type Server struct {
	Service  *service.Service
	Renderer *render.Renderer
	Sessions *middleware.Sessions
	Cache    *cache.PageCache
	Metrics  *utils.MetricsCollector
	Logger   *slog.Logger

	// Media serves locally stored uploads under MediaPrefix. Nil when
	// uploads live elsewhere.
	Media       http.Handler
	MediaPrefix string

	PageCacheTTL   time.Duration
	MetricsEnabled bool
	RequestTimeout time.Duration
}

// NewServer creates a new Server with default timeouts
func NewServer(
	svc *service.Service,
	renderer *render.Renderer,
	sessions *middleware.Sessions,
	pageCache *cache.PageCache,
	metrics *utils.MetricsCollector,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Service:        svc,
		Renderer:       renderer,
		Sessions:       sessions,
		Cache:          pageCache,
		Metrics:        metrics,
		Logger:         logger,
		PageCacheTTL:   15 * time.Second,
		MetricsEnabled: metrics != nil,
		RequestTimeout: 5 * time.Second,
	}
}

func viewer(r *http.Request) *middleware.Viewer {
	v, _ := middleware.GetViewerFromContext(r.Context())
	return v
}

// viewerID is uuid.Nil for anonymous requests.
func viewerID(r *http.Request) uuid.UUID {
	if v := viewer(r); v != nil {
		return v.ID
	}
	return uuid.Nil
}

func base(r *http.Request, title string) render.Base {
	return render.Base{Title: title, Viewer: viewer(r)}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	if err := s.Renderer.HTML(w, status, name, data); err != nil {
		s.Logger.Error("failed to render page", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pageParam(r *http.Request) string {
	return r.URL.Query().Get("page")
}
