package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	"github.com/Vroy4298/land-tax-system/internal/auth"
	"github.com/Vroy4298/land-tax-system/internal/config"
	"github.com/Vroy4298/land-tax-system/internal/database"
	"github.com/Vroy4298/land-tax-system/internal/handlers"
	"github.com/Vroy4298/land-tax-system/internal/logger"
	"github.com/Vroy4298/land-tax-system/internal/metrics"
	"github.com/Vroy4298/land-tax-system/internal/payment"
	"github.com/Vroy4298/land-tax-system/internal/repository"
	"github.com/Vroy4298/land-tax-system/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 30 * time.Second
	schemaTimeout   = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting land tax API", map[string]interface{}{
		"version":         handlers.APIVersion,
		"formula_version": assessment.FormulaVersion,
		"environment":     cfg.Server.Env,
		"port":            cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	schemaCtx, cancelSchema := context.WithTimeout(ctx, schemaTimeout)
	err = db.EnsureSchema(schemaCtx)
	cancelSchema()
	if err != nil {
		log.Fatal("Failed to prepare schema", err, nil)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	propertyService := services.NewPropertyService(
		repository.NewPropertyRepository(db),
		assessment.NewCalculator(nil),
		payment.NewMachine(),
		m,
		log,
	)
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		Log:         log,
		Metrics:     m,
		Tokens:      tokens,
		DB:          db,
		Properties:  propertyService,
		Accounts:    authService,
		CORSOrigins: cfg.CORS.Origins,
		Env:         cfg.Server.Env,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
