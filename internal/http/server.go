package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alexchristophe/hotel-ratings-backend/internal/config"
	"github.com/alexchristophe/hotel-ratings-backend/internal/locator"
	"github.com/alexchristophe/hotel-ratings-backend/internal/ratelimit"
	"github.com/alexchristophe/hotel-ratings-backend/internal/repository"
	"github.com/alexchristophe/hotel-ratings-backend/internal/store"
	"github.com/alexchristophe/hotel-ratings-backend/internal/submission"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	submit   *submission.Service
	resolver locator.Client
	logger   *log.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes. resolver
// may be nil, in which case summaries carry no place metadata.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, resolver locator.Client, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(newThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst).middleware)

	if logger == nil {
		logger = log.Default()
	}

	limiter := ratelimit.New(repo.RateLimits, 0)

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		submit:   submission.New(repo.Ratings, limiter, nil),
		resolver: resolver,
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/locations/{key}", func(r chi.Router) {
		r.Post("/ratings", s.handleSubmitRating)
		r.Get("/ratings", s.handleListRatings)
		r.Get("/summary", s.handleGetSummary)
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
