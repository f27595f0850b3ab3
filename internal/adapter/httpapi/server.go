// Package httpapi exposes the measurement ingestion and query endpoints,
// plus health, readiness, and metrics routes.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
)

// Ingestor runs one upload through the normalize-enrich-store path.
type Ingestor interface {
	Ingest(ctx context.Context, body []byte) (int, error)
	CheckReadiness(ctx context.Context) error
}

// Store is the read side of the storage gateway.
type Store interface {
	ListAll(ctx context.Context) ([]domain.Measurement, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Measurement, error)
	GetByID(ctx context.Context, id string) (domain.Measurement, error)
	Count(ctx context.Context) (int64, error)
}

// Options tune the presentation endpoints.
type Options struct {
	// DashboardLimit caps the rows shown on the HTML dashboard.
	DashboardLimit int
	// CORSOrigins is passed through to the CORS middleware on /api routes.
	CORSOrigins []string
}

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
	ingestor   Ingestor
	store      Store
	opts       Options
	logger     *slog.Logger
}

// NewServer wires all routes onto a chi router.
func NewServer(addr string, ingestor Ingestor, store Store, opts Options, logger *slog.Logger) *Server {
	if opts.DashboardLimit <= 0 {
		opts.DashboardLimit = 100
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		ingestor: ingestor,
		store:    store,
		opts:     opts,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/", s.handleDashboardPage)
	r.Get("/detail/{id}", s.handleDetailPage)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Post("/measurements", s.handleIngest)
		r.Post("/data", s.handleIngest) // legacy mobile app route
		r.Get("/measurements", s.handleList)
		r.Get("/measurements/{id}", s.handleGet)
		r.Get("/dashboard", s.handleDashboard)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ingestor.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
