// Package api serves the assessment service over HTTP under /api/v1.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/config"
	"github.com/wahaj323/quizengine/internal/metrics"
)

// Option configures a Server.
type Option func(*Server)

// WithDrafter enables POST /quizzes/draft.
func WithDrafter(d *builder.Drafter) Option {
	return func(s *Server) { s.drafter = d }
}

// WithMetrics records request metrics and serves GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithHealthCheck sets the probe behind GET /healthz.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

type Server struct {
	svc      *assessment.Service
	auth     *Auth
	cfg      config.ServerConfig
	drafter  *builder.Drafter
	metrics  *metrics.Metrics
	log      *zap.Logger
	health   func(context.Context) error
	submits  *userLimiter
	validate *validator.Validate
}

func New(svc *assessment.Service, auth *Auth, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		auth:     auth,
		cfg:      cfg,
		log:      zap.NewNop(),
		health:   func(context.Context) error { return nil },
		submits:  newUserLimiter(cfg.SubmitRate, cfg.SubmitBurst),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.instrument, middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/quizzes", s.listQuizzes)
		r.Get("/quizzes/{quizID}", s.getQuiz)
		r.With(s.limitSubmits).Post("/quizzes/{quizID}/attempts", s.submitAttempt)
		r.Get("/quizzes/{quizID}/attempts", s.quizAttempts)
		r.Get("/quizzes/{quizID}/summary", s.summary)
		r.Get("/attempts/{attemptID}", s.getAttempt)
		r.Get("/attempts/{attemptID}/review", s.review)
		r.Get("/me/history", s.history)
		r.Get("/me/summary", s.summary)

		r.Group(func(r chi.Router) {
			r.Use(s.requireTeacher)

			r.Get("/authoring/quizzes", s.authorQuizzes)
			r.Get("/authoring/quizzes/{quizID}", s.authorQuiz)
			r.Post("/quizzes", s.createQuiz)
			r.Post("/quizzes/draft", s.draftQuiz)
			r.Put("/quizzes/{quizID}", s.updateQuiz)
			r.Delete("/quizzes/{quizID}", s.deleteQuiz)
			r.Post("/quizzes/{quizID}/publish", s.setPublished(true))
			r.Post("/quizzes/{quizID}/unpublish", s.setPublished(false))
			r.Post("/attempts/{attemptID}/feedback", s.addFeedback)
			r.Get("/users/{userID}/unlocks", s.listUnlocks)
			r.Put("/users/{userID}/unlocks/{quizID}", s.unlock)
			r.Delete("/users/{userID}/unlocks/{quizID}", s.lock)
			r.Get("/users/{userID}/history", s.userHistory)
		})
	})
	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("api listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
