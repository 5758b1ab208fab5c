package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/bookkeeping_app/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_app/internal/core/services"
	"github.com/SscSPs/bookkeeping_app/internal/handlers"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/SscSPs/bookkeeping_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/bookkeeping_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var repos portsrepo.RepositoryProvider
		if !cfg.InMemory() {
			if cfg.EnableDBCheck {
				if err := runMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath, "up", 0); err != nil {
					return err
				}
			}
			dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{ConnectTimeout: 5 * time.Second})
			if err != nil {
				return fmt.Errorf("failed to initialize database pool: %w", err)
			}
			defer database.ClosePgxPool(dbPool)
			repos = pgsql.NewRepositoryProvider(dbPool)
		} else {
			logger.Warn("Running in memory; nothing is persisted")
		}

		container, err := services.NewServiceContainer(ctx, cfg, repos)
		if err != nil {
			return err
		}

		if cfg.IsProduction {
			gin.SetMode(gin.ReleaseMode)
		}
		r := gin.New()
		r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-Match", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
		if err := r.SetTrustedProxies(nil); err != nil {
			return fmt.Errorf("failed to set trusted proxies: %w", err)
		}
		if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("Server starting", slog.String("port", cfg.Port), slog.Bool("in_memory", cfg.InMemory()))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("server failed to run: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
