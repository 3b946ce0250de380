package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"electro-shop/internal/config"
	"electro-shop/internal/database"
	"electro-shop/internal/events"
	custommiddleware "electro-shop/internal/middleware"
	"electro-shop/internal/repository"
	"electro-shop/internal/service"
	"electro-shop/internal/transport"
	"electro-shop/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        database.Service
	redis     *redis.Client
	publisher events.Publisher
}

// NewRedisClient builds the client used by the rate limiters.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, publisher events.Publisher) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		publisher: publisher,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	cfg, logger := s.config, s.logger
	debug := !cfg.Server.IsProduction()

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.Server.IsProduction()))
	router.NotFound(custommiddleware.NotFoundHandler)

	router.Get("/health", s.health)
	router.Get("/api/health", s.health)

	// Uploaded images are public.
	router.Handle(upload.PublicPrefix+"/*", http.StripPrefix(upload.PublicPrefix,
		http.FileServer(filesOnly{http.Dir(cfg.Upload.Dir)})))

	db := s.db.DB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	imageRepo := repository.NewImageRepository(db)
	descriptionRepo := repository.NewDescriptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT)
	categoryService := service.NewCategoryService(categoryRepo,
		upload.NewStore(cfg.Upload.Dir, transport.CategoryImageMaxBytes))
	productService := service.NewProductService(productRepo, imageRepo, descriptionRepo,
		upload.NewStore(cfg.Upload.Dir, transport.ProductImageMaxBytes))
	imageService := service.NewImageService(imageRepo)
	descriptionService := service.NewDescriptionService(descriptionRepo)
	orderService := service.NewOrderService(orderRepo, s.publisher, logger)
	paymentService := service.NewPaymentService(paymentRepo)

	// Login and password recovery share the budget but not the counter.
	limit := func(prefix string) transport.Guard {
		return custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         prefix,
		}, logger)
	}

	userGuards := transport.UserGuards{
		Auth:          custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger),
		Admin:         custommiddleware.RequireAdmin(logger),
		SelfOrAdmin:   custommiddleware.RequireSelfOrAdmin("id", logger),
		LoginLimit:    limit("ratelimit:login"),
		RecoveryLimit: limit("ratelimit:forgot-password"),
	}

	// Register routes
	transport.NewUserHandler(userService, userGuards, logger, debug).RegisterRoutes(router)
	transport.NewCategoryHandler(categoryService, logger, debug).RegisterRoutes(router)
	transport.NewProductHandler(productService, logger, debug).RegisterRoutes(router)
	transport.NewImageHandler(imageService, logger, debug).RegisterRoutes(router)
	transport.NewDescriptionHandler(descriptionService, logger, debug).RegisterRoutes(router)
	transport.NewOrderHandler(orderService, logger, debug).RegisterRoutes(router)
	transport.NewPaymentHandler(paymentService, logger, debug).RegisterRoutes(router)

	return router
}

// filesOnly hides directories so upload folders cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health(r.Context())

	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
		"status":   stats["status"],
		"database": stats,
	})
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("Failed to close event publisher", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}

// PingRedis reports whether the rate limiter backend is reachable. The
// limiters fail open, so an unreachable Redis only disables limiting.
func (s *Server) PingRedis(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
