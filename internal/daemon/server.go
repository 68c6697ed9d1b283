package daemon

import (
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"framegen/internal/config"
	"framegen/internal/extract"
	"framegen/internal/media"
	"framegen/internal/publish"
)

// Server stores all in-memory job state and exposes HTTP handlers.
type Server struct {
	mu           sync.RWMutex
	defaults     config.Config
	jobs         map[string]*Job
	jobCancel    map[string]func()
	decoder      media.Decoder
	orchestrator *extract.Orchestrator
	publisher    *publish.Counting
	framesRoot   string
	origins      []string
	logger       *zap.Logger
	stateless    bool
	running      sync.WaitGroup
	cleanupOnce  sync.Once
}

// NewServer wires a server. pub may be nil to disable publishing.
func NewServer(cfg config.ServerConfig, defaults config.Config, decoder media.Decoder, pub publish.Publisher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	framesRoot := cfg.FramesRoot
	if cfg.Stateless {
		if tmp, err := os.MkdirTemp("", "framegen-frames-"); err == nil {
			framesRoot = tmp
		} else {
			logger.Warn("stateless frames root unavailable", zap.Error(err))
		}
	}
	if framesRoot == "" {
		framesRoot = "frames"
	}

	var counting *publish.Counting
	if pub != nil {
		counting = publish.NewCounting(pub)
	}

	return &Server{
		defaults:     defaults,
		jobs:         make(map[string]*Job),
		jobCancel:    make(map[string]func()),
		decoder:      decoder,
		orchestrator: extract.New(decoder, logger.Named("extract")),
		publisher:    counting,
		framesRoot:   framesRoot,
		origins:      cfg.AllowedOrigins,
		logger:       logger,
		stateless:    cfg.Stateless,
	}
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logRequestMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger docs
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.MethodFunc(http.MethodGet, "/config", s.handleConfig)
	r.MethodFunc(http.MethodPut, "/config", s.handleConfig)

	r.Post("/probe", s.handleProbe)
	r.Post("/folders", s.handleFolders)

	r.Get("/jobs", s.handleJobs)
	r.Post("/jobs", s.handleCreateJob)
	r.Route("/jobs/{jobID}", func(r chi.Router) {
		r.Get("/", s.handleGetJob)
		r.Get("/frames", s.handleFrames)
		r.Get("/frames/{index}", s.handleFrameFile)
		r.Post("/cancel", s.handleCancel)
	})

	r.Get("/publish/status", s.handlePublishStatus)

	return r
}

// Wait blocks until every started job has finished.
func (s *Server) Wait() {
	s.running.Wait()
}

// Shutdown cancels running jobs, waits for them and removes temporary data
// in stateless mode.
func (s *Server) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.jobCancel {
		cancel()
	}
	s.mu.Unlock()
	s.Wait()

	if !s.stateless {
		return
	}
	s.cleanupOnce.Do(func() {
		_ = os.RemoveAll(s.framesRoot)
	})
}
