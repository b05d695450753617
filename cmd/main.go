package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"album-service/internal/api/handlers"
	"album-service/internal/config"
	"album-service/internal/database/minio"
	"album-service/internal/database/mongo"
	"album-service/internal/database/redis"
	"album-service/internal/database/s3"
	"album-service/internal/events"
	applog "album-service/internal/logger"
	"album-service/internal/middleware"
	"album-service/internal/repository"
	"album-service/internal/service"
	"album-service/internal/storage"
	"album-service/pkg/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ServiceContainer holds all service dependencies
type ServiceContainer struct {
	AuthService      *service.AuthService
	UserService      *service.UserService
	AlbumService     *service.AlbumService
	ImageService     *service.ImageService
	EventPublisher   events.Publisher
	EventConsumer    events.Consumer
	ServiceDiscovery *discovery.ServiceRegistry
}

func newMediaStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.MediaStore, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendS3:
		client, err := s3.NewClient(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		log.Info("Using S3 media backend", zap.String("bucket", cfg.S3.BucketName))
		return s3.NewMediaStore(client, &cfg.S3), nil
	default:
		client, err := minio.InitMinioClient(ctx, &cfg.MinIO, log)
		if err != nil {
			return nil, err
		}
		return minio.NewMediaStore(client, &cfg.MinIO), nil
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logger.Sync()

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize MongoDB
	if err := mongo.InitMongoDB(initCtx, &cfg.MongoDB, logger); err != nil {
		logger.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}
	defer mongo.CloseDB(context.Background(), logger)

	mediaStore, err := newMediaStore(initCtx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize media store", zap.Error(err))
	}

	// Initialize repositories
	userRepository := repository.NewUserRepository(mongo.Database)
	albumRepository := repository.NewAlbumRepository(mongo.Database)
	imageRepository := repository.NewImageRepository(mongo.Database)

	for name, indexer := range map[string]interface {
		CreateIndexes(ctx context.Context) error
	}{
		"users":  userRepository,
		"albums": albumRepository,
		"images": imageRepository,
	} {
		if err := indexer.CreateIndexes(initCtx); err != nil {
			logger.Warn("Failed to create database indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	var stateStore service.StateStore
	redisClient, err := redis.InitRedis(initCtx, &cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to initialize Redis, OAuth state checking is disabled", zap.Error(err))
	} else if redisClient != nil {
		stateStore = repository.NewStateRepository(redisClient)
		defer redisClient.Close()
	}

	// Initialize event publisher
	var eventPublisher events.Publisher
	publisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		logger.Warn("Failed to initialize event publisher", zap.Error(err))
		publisher, _ = events.NewEventPublisher("", cfg.RabbitMQ.Exchange, logger)
	}
	eventPublisher = publisher
	defer eventPublisher.Close()

	jwtService := service.NewJWTService(&cfg.Auth)
	imageService := service.NewImageService(albumRepository, imageRepository, mediaStore, eventPublisher, &cfg.Media, logger)

	container := &ServiceContainer{
		AuthService: service.NewAuthService(&cfg.Auth, jwtService, service.NewGoogleOAuthService(&cfg.Google),
			stateStore, userRepository, logger),
		UserService:    service.NewUserService(userRepository, &cfg.Auth),
		AlbumService:   service.NewAlbumService(albumRepository, userRepository, imageService, eventPublisher, cfg.Media.CascadeAlbumDelete, logger),
		ImageService:   imageService,
		EventPublisher: eventPublisher,
	}

	// Initialize event consumer
	eventConsumer, err := events.NewEventConsumer(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, imageService, logger)
	if err != nil {
		logger.Warn("Failed to initialize event consumer", zap.Error(err))
	} else {
		if err := eventConsumer.Start(); err != nil {
			logger.Warn("Failed to start event consumer", zap.Error(err))
			eventConsumer.Close()
		} else {
			container.EventConsumer = eventConsumer
			defer eventConsumer.Close()
		}
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	sweeper := service.NewPendingDeleteSweeper(imageService, cfg.Media.SweepInterval, cfg.Media.SweepGrace, logger)
	go sweeper.Run(sweepCtx)

	// Initialize service discovery
	if cfg.Consul.Address != "" {
		serviceRegistry, err := discovery.NewServiceRegistry(
			cfg.Consul.Address,
			cfg.Server.ServiceName,
			cfg.Server.ServiceID(),
			cfg.Server.Port,
			logger,
		)
		if err != nil {
			logger.Warn("Failed to initialize service discovery", zap.Error(err))
		} else if err := serviceRegistry.Register(); err != nil {
			logger.Warn("Failed to register with Consul", zap.Error(err))
		} else {
			container.ServiceDiscovery = serviceRegistry
			defer serviceRegistry.Deregister()
		}
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	app.Use(recoverer.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.Server.FrontendURL},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))
	app.Use(middleware.RequestLogger(logger))

	handlers.RegisterRoutes(app, &handlers.Handlers{
		Auth:  handlers.NewAuthHandler(container.AuthService, cfg.Server.FrontendURL, logger),
		User:  handlers.NewUserHandler(container.UserService, logger),
		Album: handlers.NewAlbumHandler(container.AlbumService, logger),
		Image: handlers.NewImageHandler(container.ImageService, logger),
	}, middleware.Auth(container.AuthService))

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Starting server", zap.String("address", address))
		if err := app.Listen(address); err != nil {
			logger.Fatal("Error starting server", zap.Error(err))
		}
		doneChan <- true
	}()

	<-shutdownChan
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Error shutting down HTTP server", zap.Error(err))
	}

	<-doneChan
	logger.Info("Server exited, goodbye!")
}
