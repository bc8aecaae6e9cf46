// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"folioplan/internal/database"
	"folioplan/internal/modules/history"
	"folioplan/internal/modules/planning"
	"folioplan/internal/modules/portfolio"
	"folioplan/internal/modules/sentiment"
	"folioplan/internal/modules/strategy"
)

// Config holds server configuration
type Config struct {
	Log     zerolog.Logger
	Port    int
	DevMode bool

	PortfolioDB *database.DB
	CacheDB     *database.DB

	PortfolioHandler *portfolio.Handler
	StrategyHandler  *strategy.Handler
	PlanningHandler  *planning.Handler
	HistoryHandler   *history.Handler
	SentimentHandler *sentiment.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg,
		systemHandlers: NewSystemHandlers(cfg.Log, []*database.DB{cfg.PortfolioDB, cfg.CacheDB}),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/portfolios", func(r chi.Router) {
			r.Get("/", s.cfg.PortfolioHandler.HandleList)
			r.Post("/", s.cfg.PortfolioHandler.HandleCreate)

			r.Route("/{portfolioID}", func(r chi.Router) {
				r.Get("/", s.cfg.PortfolioHandler.HandleGet)
				r.Put("/", s.cfg.PortfolioHandler.HandleRename)
				r.Delete("/", s.cfg.PortfolioHandler.HandleDelete)

				r.Post("/stocks", s.cfg.PortfolioHandler.HandleAddStock)
				r.Delete("/stocks/{stockID}", s.cfg.PortfolioHandler.HandleDeleteStock)

				r.Get("/strategy", s.cfg.StrategyHandler.HandleGet)
				r.Post("/strategy", s.cfg.StrategyHandler.HandleReplace)

				r.Post("/recommendations", s.cfg.PlanningHandler.HandleRecommendations)

				r.Get("/history", s.cfg.HistoryHandler.HandleHistory)
				r.Post("/snapshot", s.cfg.HistoryHandler.HandleSnapshot)
				r.Get("/performance", s.cfg.HistoryHandler.HandlePerformance)

				r.Get("/news-sentiment", s.cfg.SentimentHandler.HandlePortfolioSentiment)
			})
		})

		r.Route("/stocks/{ticker}", func(r chi.Router) {
			r.Get("/price", s.cfg.PortfolioHandler.HandleGetPrice)
			r.Get("/news-sentiment", s.cfg.SentimentHandler.HandleTickerSentiment)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
