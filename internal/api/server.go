package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/filingdigest/internal/config"
	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/summarize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatsSource reports summarization latency for the stats endpoint.
type StatsSource interface {
	Model() string
	Snapshot() summarize.StatsSnapshot
}

// Server is the HTTP API server for filingdigest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          StatsSource
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. llm may be nil.
func NewServer(orch *pipeline.Orchestrator, llm StatsSource, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llm,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/filings", s.handleSubmit)
		r.Get("/api/filings/{jobID}/status", s.handleStatus)
		r.Get("/api/filings/{jobID}/result", s.handleResult)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
