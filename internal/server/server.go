// Package server is the composition root: it wires the database,
// services, handlers, and middleware together and owns the HTTP
// listener's lifecycle. main.go stays minimal — load config, build a
// Server, Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/time-tracker/internal/auth"
	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/handler"
	"github.com/sakif/time-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/time-tracker/internal/repository/sqlite"
	"github.com/sakif/time-tracker/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port          int
	DBPath        string
	SessionSecret string
	SessionTTL    time.Duration
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file
// lock released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency chain:
//
//	sqlite.DB → services (with clock + auth primitives) → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, routes get handlers.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the three route groups:
// public auth, session-protected browser API (with an admin subgroup),
// and the bearer-key /api/v1 API.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.SessionSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	clk := clock.New()

	// Services. The sqlite *DB implements all three repository
	// interfaces, so it is passed wherever one is needed.
	userService := service.NewUserService(s.db, passwords, s.logger)
	authService := service.NewAuthService(s.db, userService, tokens, passwords, s.logger)
	activityService := service.NewActivityService(s.db, clk, s.logger)
	statsService := service.NewStatsService(s.db, clk, s.logger)
	keyService := service.NewAPIKeyService(s.db, s.db, clk, s.logger)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService, tokens, s.logger)
	activityHandler := handler.NewActivityHandler(activityService, s.logger)
	statsHandler := handler.NewStatsHandler(statsService, s.logger)
	keyHandler := handler.NewAPIKeyHandler(keyService, s.logger)
	adminHandler := handler.NewAdminHandler(userService, keyService, s.logger)
	apiV1Handler := handler.NewAPIV1Handler(userService, statsService, s.logger)

	// Public: registration (first user only) and login.
	s.router.Post("/auth/register", authHandler.HandleRegister)
	s.router.Post("/auth/login", authHandler.HandleLogin)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		// Browser API: session cookie required.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Get("/activities", activityHandler.HandleList)
			r.Post("/activities", activityHandler.HandleCreate)
			r.Get("/activities/{id}", activityHandler.HandleGet)
			r.Put("/activities/{id}", activityHandler.HandleUpdate)
			r.Delete("/activities/{id}", activityHandler.HandleDelete)

			r.Get("/stats", statsHandler.HandleStats)
			r.Get("/leaderboard", statsHandler.HandleLeaderboard)

			r.Get("/keys", keyHandler.HandleList)
			r.Post("/keys", keyHandler.HandleCreate)
			r.Delete("/keys/{id}", keyHandler.HandleDelete)

			// Admin subgroup: the admin flag is re-checked on every request.
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin(s.db))

				r.Get("/users", adminHandler.HandleListUsers)
				r.Post("/users", adminHandler.HandleCreateUser)
				r.Delete("/users/{id}", adminHandler.HandleDeleteUser)
				r.Put("/users/{id}/password", adminHandler.HandleResetPassword)

				r.Get("/keys", adminHandler.HandleListKeys)
				r.Delete("/keys/{id}", adminHandler.HandleDeleteKey)
			})
		})

		// External API: bearer key required, no cookie session.
		r.Route("/v1", func(r chi.Router) {
			r.Use(auth.RequireAPIKey(keyService))

			r.Get("/user/{id}", apiV1Handler.HandleUser)
			r.Get("/leaderboard", apiV1Handler.HandleLeaderboard)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests
// (30s), close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
