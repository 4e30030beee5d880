package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allmight/taskapp/internal/config"
	"github.com/allmight/taskapp/internal/database"
	"github.com/allmight/taskapp/internal/handler"
	"github.com/allmight/taskapp/internal/middleware"
	"github.com/allmight/taskapp/internal/repository"
	"github.com/allmight/taskapp/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("namespace", cfg.Database.Namespace),
		slog.String("database", cfg.Database.Database),
	)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		slog.Error("failed to define indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize email delivery
	var mailer service.Mailer
	if cfg.Email.Enabled {
		sesMailer, err := service.NewSESMailer(ctx, service.SESMailerConfig{
			Region:      cfg.Email.Region,
			From:        cfg.Email.FromAddress,
			IdentityARN: cfg.Email.IdentityARN,
			AccessKey:   cfg.Email.AccessKey,
			SecretKey:   cfg.Email.SecretKey,
		}, logger)
		if err != nil {
			slog.Error("failed to initialize SES mailer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		mailer = sesMailer
	} else {
		mailer = service.NewNoopMailer(logger)
	}

	// Initialize services
	tokenService := service.NewTokenService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, tokenService, mailer, logger)
	userService := service.NewUserService(userRepo, taskRepo, mailer, logger)
	avatarService := service.NewAvatarService(userRepo)
	taskService := service.NewTaskService(taskRepo, repository.SortColumn)

	// Initialize handlers
	userHandler := handler.NewUserHandler(authService, userService, avatarService)
	taskHandler := handler.NewTaskHandler(taskService)
	healthHandler := handler.NewHealthHandler(db)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Health)

	// User endpoints (public)
	mux.HandleFunc("POST /users", userHandler.Register)
	mux.HandleFunc("POST /users/login", userHandler.Login)
	mux.HandleFunc("GET /users/{id}/avatar", userHandler.GetAvatar)

	// User endpoints (protected)
	authMiddleware := middleware.Auth(tokenService)
	mux.Handle("POST /users/logout", authMiddleware(http.HandlerFunc(userHandler.Logout)))
	mux.Handle("POST /users/logoutAll", authMiddleware(http.HandlerFunc(userHandler.LogoutAll)))
	mux.Handle("GET /users/me", authMiddleware(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PATCH /users/me", authMiddleware(http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("DELETE /users/me", authMiddleware(http.HandlerFunc(userHandler.DeleteMe)))
	mux.Handle("POST /users/me/avatar", authMiddleware(http.HandlerFunc(userHandler.UploadAvatar)))
	mux.Handle("DELETE /users/me/avatar", authMiddleware(http.HandlerFunc(userHandler.DeleteAvatar)))

	// Task endpoints (all protected)
	mux.Handle("POST /tasks", authMiddleware(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("GET /tasks", authMiddleware(http.HandlerFunc(taskHandler.List)))
	mux.Handle("GET /task/{id}", authMiddleware(http.HandlerFunc(taskHandler.Get)))
	mux.Handle("PATCH /task/{id}", authMiddleware(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("DELETE /task/{id}", authMiddleware(http.HandlerFunc(taskHandler.Delete)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
