// Package server wires the application together and runs the HTTP server.
//
// This is the composition root: New builds every dependency in one place
//
//	config → sqlite.DB → repositories → services → handlers → routes
//
// and each layer only receives what it needs. Services get repository
// interfaces, handlers get services, nothing but this package knows the
// concrete types.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/config"
	"github.com/sakif/recipe-api/internal/handler"
	"github.com/sakif/recipe-api/internal/middleware"
	sqliteRepo "github.com/sakif/recipe-api/internal/repository/sqlite"
	"github.com/sakif/recipe-api/internal/service"
	"github.com/sakif/recipe-api/internal/storage"
	"github.com/sakif/recipe-api/internal/upload"
)

// Server owns the router and the database connection. The connection is
// closed when Start returns or Close is called.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	disk    storage.Disk
	metrics *middleware.Metrics
}

// New opens the database and storage described by cfg and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	disk, err := storage.New(ctx, cfg.StorageOptions())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		disk:    disk,
		metrics: middleware.NewMetrics(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the database connection.
func (s *Server) Close() error { return s.db.Close() }

// setupRoutes configures middleware and routes.
//
//	POST   /user/create                       → register
//	POST   /user/token                        → email/password → token
//	GET    /user/me, PUT, PATCH               → own profile              [auth]
//	GET    /auth/github/login, /callback      → GitHub sign-in (when configured)
//	POST   /auth/logout                       → clear token cookie
//	/recipe/tags, /recipe/ingredients         → list/create, {id} update/delete [auth]
//	/recipe/recipes                           → recipe CRUD              [auth]
//	POST   /recipe/recipes/{id}/upload-image  → image upload             [auth]
//	GET    /media/*                           → uploaded files (local storage only)
//	GET    /healthz, /metrics
//
// StripSlashes makes "/recipe/tags/" and "/recipe/tags" the same route.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(s.metrics.Middleware)
	s.router.Use(chimiddleware.StripSlashes)

	passwords := auth.NewPasswordService()
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	userService := service.NewUserService(s.db.Users(), tokens, passwords, s.logger)
	tagService := service.NewTagService(s.db.Tags(), s.logger)
	ingredientService := service.NewIngredientService(s.db.Ingredients(), s.logger)
	recipeService := service.NewRecipeService(s.db.Recipes(), s.disk, upload.NewPathGenerator(), s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)
	ingredientHandler := handler.NewIngredientHandler(ingredientService, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, s.config.MaxUploadBytes, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db.Users())

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	mediaURL := strings.TrimRight(s.config.MediaURL, "/")
	if local, ok := s.disk.(*storage.LocalDisk); ok && strings.HasPrefix(mediaURL, "/") {
		fileServer := http.FileServer(mediaFS{http.Dir(local.Root())})
		s.router.Handle(mediaURL+"/*", http.StripPrefix(mediaURL, fileServer))
	}

	if s.config.GitHubEnabled() {
		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		authHandler := handler.NewAuthHandler(github, userService, tokens.TTL(), s.logger)

		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		s.router.Post("/auth/logout", authHandler.HandleLogout)
	} else {
		s.logger.Info("GitHub sign-in disabled: GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET not set")
	}

	s.router.Route("/user", func(r chi.Router) {
		r.Post("/create", userHandler.HandleCreate)
		r.Post("/token", userHandler.HandleToken)

		r.With(requireAuth).Get("/me", userHandler.HandleMe)
		r.With(requireAuth).Put("/me", userHandler.HandleUpdateMe)
		r.With(requireAuth).Patch("/me", userHandler.HandleUpdateMe)
	})

	s.router.Route("/recipe", func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tagHandler.HandleList)
			r.Post("/", tagHandler.HandleCreate)
			r.Put("/{id}", tagHandler.HandleUpdate)
			r.Patch("/{id}", tagHandler.HandleUpdate)
			r.Delete("/{id}", tagHandler.HandleDelete)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", ingredientHandler.HandleList)
			r.Post("/", ingredientHandler.HandleCreate)
			r.Put("/{id}", ingredientHandler.HandleUpdate)
			r.Patch("/{id}", ingredientHandler.HandleUpdate)
			r.Delete("/{id}", ingredientHandler.HandleDelete)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.HandleList)
			r.Post("/", recipeHandler.HandleCreate)
			r.Get("/{id}", recipeHandler.HandleGet)
			r.Put("/{id}", recipeHandler.HandleUpdate)
			r.Patch("/{id}", recipeHandler.HandleUpdate)
			r.Delete("/{id}", recipeHandler.HandleDelete)
			r.Post("/{id}/upload-image", recipeHandler.HandleUploadImage)
		})
	})

	return nil
}

// mediaFS serves files only. Directories are reported missing, so uploads
// cannot be enumerated.
type mediaFS struct {
	http.FileSystem
}

func (m mediaFS) Open(name string) (http.File, error) {
	f, err := m.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully: stop
// accepting connections, give in-flight requests 30 seconds, close the
// database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
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
			slog.String("storage", s.config.StorageDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
