// Package api serves the reference data as a read-only JSON API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/nigerian-states/internal/choices"
	"github.com/sells-group/nigerian-states/internal/geo"
)

// Config tunes the HTTP surface.
type Config struct {
	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// Server holds the handler dependencies.
type Server struct {
	dir      *geo.Directory
	source   choices.Source
	settings choices.Settings
	cache    Cache
	cfg      Config
}

// Option customizes a Server.
type Option func(*Server)

// WithChoicesSource serves /choices from src instead of the directory,
// typically a store.Store.
func WithChoicesSource(src choices.Source) Option {
	return func(s *Server) { s.source = src }
}

// WithCache enables response caching for GET requests.
func WithCache(c Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithSettings sets the default zones applied to /choices.
func WithSettings(settings choices.Settings) Option {
	return func(s *Server) { s.settings = settings }
}

// NewServer builds a Server over dir.
func NewServer(dir *geo.Directory, cfg Config, opts ...Option) *Server {
	s := &Server{dir: dir, source: dir, cache: NopCache{}, cfg: cfg}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(instrument)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", MetricsHandler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimitRPS > 0 {
			burst := s.cfg.RateLimitBurst
			if burst <= 0 {
				burst = int(s.cfg.RateLimitRPS)
			}
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), max(burst, 1))))
		}
		r.Use(cacheResponses(s.cache))

		r.Route("/zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)
			r.Get("/{zone}", s.handleZoneInfo)
			r.Get("/{zone}/states", s.handleZoneStates)
			r.Get("/{zone}/lgas", s.handleZoneLGAs)
		})
		r.Route("/states", func(r chi.Router) {
			r.Get("/", s.handleListStates)
			r.Get("/{state}", s.handleGetState)
			r.Get("/{state}/lgas", s.handleStateLGAs)
		})
		r.Get("/lgas", s.handleListLGAs)
		r.Get("/membership/state-in-zone", s.handleStateInZone)
		r.Get("/membership/lga-in-state", s.handleLGAInState)
		r.Get("/choices/{kind}", s.handleChoices)
		r.Get("/resolve/state", s.handleResolveState)
	})
	return r
}

// HTTPServer wraps Handler in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

func (s *Server) corsOrigins() []string {
	if len(s.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSOrigins
}
