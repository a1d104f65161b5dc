package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"skybook/internal/auth"
	"skybook/internal/cache"
	"skybook/internal/config"
	"skybook/internal/database"
	"skybook/internal/external"
	"skybook/internal/handlers"
	"skybook/internal/messaging"
	"skybook/internal/metrics"
	"skybook/internal/middleware"
	"skybook/internal/repository"
	"skybook/internal/search"
	"skybook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.FlightIndex
	redis    *redis.Client
	services *service.Services
	http     *http.Server
}

// NewServer подключается к инфраструктуре и собирает сервер.
// PostgreSQL обязателен, остальные зависимости при недоступности отключаются.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Server{config: cfg, db: db}

	if s.nats, err = messaging.NewNATSClient(cfg.NATS); err != nil {
		slog.Warn("NATS unavailable, events disabled", "error", err)
		s.nats = nil
	}

	if s.valkey, err = cache.NewValkeyClient(cfg.Valkey); err != nil {
		slog.Warn("Valkey unavailable, user cache and idempotency disabled", "error", err)
		s.valkey = nil
	}

	if cfg.Elasticsearch.Enabled {
		if s.search, err = search.NewFlightIndex(cfg.Elasticsearch); err != nil {
			slog.Warn("Elasticsearch unavailable, search falls back to PostgreSQL", "error", err)
			s.search = nil
		}
	}

	if cfg.RateLimit.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := s.redis.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis unavailable, rate limiting disabled", "error", err)
			s.redis.Close()
			s.redis = nil
		}
		cancel()
	}

	s.services = service.NewServices(service.Dependencies{
		Repos:          repository.NewRepositories(db),
		NATS:           s.nats,
		Cache:          s.valkey,
		Search:         s.search,
		Payments:       external.NewPaymentSimulator(cfg.Payment),
		Tokens:         auth.NewTokenManager(cfg.Auth),
		BcryptCost:     cfg.Auth.BcryptCost,
		IdempotencyTTL: cfg.Booking.IdempotencyTTL,
	})

	s.router = gin.New()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout,
	}

	return s, nil
}

// setupRoutes настраивает middleware и все API роуты
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Metrics())
	s.router.Use(middleware.CORS(s.config.CORSOrigins))

	var limiter redis.Scripter
	if s.redis != nil {
		limiter = s.redis
	}
	s.router.Use(middleware.RateLimit(s.config.RateLimit, limiter))

	h := handlers.NewHandlers(s.services)
	h.Routes(s.router, middleware.BearerAuth(s.services.Auth), middleware.RequireAdmin())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealth := s.db.HealthCheck(ctx)
	s.db.LogPoolPressure()

	deps := gin.H{
		"nats":          s.nats != nil,
		"valkey":        s.valkey != nil,
		"elasticsearch": s.search != nil,
		"rate_limiter":  s.redis != nil,
	}
	if s.search != nil {
		if err := s.search.HealthCheck(ctx); err != nil {
			deps["elasticsearch"] = false
		}
	}

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":       dbHealth.Status,
		"service":      "skybook-api",
		"version":      "1.0.0",
		"database":     dbHealth,
		"dependencies": deps,
	})
}

// Run запускает HTTP сервер и останавливает его по отмене ctx
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Close освобождает соединения с инфраструктурой
func (s *Server) Close() {
	if s.nats != nil {
		s.nats.Close()
	}
	if s.valkey != nil {
		s.valkey.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
	s.db.Close()
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
