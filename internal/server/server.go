package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/config"
	"nailsxlauren/internal/metrics"
	"nailsxlauren/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	goahttp "goa.design/goa/v3/http"
	"goa.design/goa/v3/http/middleware"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
	maxBodyBytes = 1 << 20
)

// Deps are the services the HTTP layer dispatches to
type Deps struct {
	Bookings *services.BookingService
	Admin    *services.BookingAdminService
	Auth     *services.AuthService
	Health   *services.HealthService
	Catalog  *catalog.Catalog
}

// Server exposes the booking API, the admin API and the admin page
type Server struct {
	cfg     *config.Config
	deps    Deps
	limiter *rateLimiter
	log     zerolog.Logger
	routes  []string
	handler http.Handler
	server  *http.Server
}

// New builds the router and middleware chain
func New(cfg *config.Config, deps Deps, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		deps:    deps,
		limiter: newRateLimiter(cfg.RateLimit),
		log:     log,
	}

	mux := goahttp.NewMuxer()
	s.mount(mux)

	gate := services.NewSessionGate(deps.Auth, deps.Auth.CookieName(), log.With().Str("component", "gate").Logger())

	// /metrics goes to Prometheus, everything else to the goa mux
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			promhttp.Handler().ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	var h http.Handler = gate.Middleware(root)
	h = metrics.PrometheusMiddleware(h, s.routes...)
	h = requestLogging(h, log)
	h = middleware.PopulateRequestContext()(h)
	h = middleware.RequestID()(h)
	h = setupCORS(h, cfg)
	h = setupSecurityHeaders(h, cfg)
	s.handler = h

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port),
		Handler:      h,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

func (s *Server) mount(mux goahttp.Muxer) {
	s.handle(mux, http.MethodGet, "/", s.handleRoot)
	s.handle(mux, http.MethodGet, "/health", s.handleHealth)
	s.handle(mux, http.MethodGet, "/api/services", s.handleServices)
	s.handle(mux, http.MethodPost, "/api/book", s.rateLimited(s.handleSubmit))

	s.handle(mux, http.MethodPost, services.LoginPath, s.handleLogin)
	s.handle(mux, http.MethodPost, services.LogoutPath, s.handleLogout)
	s.handle(mux, http.MethodGet, "/api/admin/bookings", s.handleList)
	s.handle(mux, http.MethodDelete, "/api/admin/bookings", s.handleDelete)
	s.handle(mux, http.MethodPut, "/api/admin/bookings", s.handleReschedule)
	s.handle(mux, http.MethodGet, "/api/admin/bookings/export", s.handleExport)

	s.handle(mux, http.MethodGet, services.AdminPagePrefix, s.handleAdminPage)
	s.handle(mux, http.MethodGet, services.AdminPagePrefix+"/{*path}", s.handleAdminPage)
}

// handle mounts h and remembers the pattern for metric labels
func (s *Server) handle(mux goahttp.Muxer, method, pattern string, h http.HandlerFunc) {
	mux.Handle(method, pattern, h)
	for _, r := range s.routes {
		if r == pattern {
			return
		}
	}
	s.routes = append(s.routes, pattern)
}

// Handler returns the full middleware chain, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains connections, forcing a close when ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		if err == context.DeadlineExceeded {
			s.log.Warn().Msg("shutdown timeout exceeded, forcing close")
			_ = s.server.Close()
		}
		return err
	}
	return nil
}
