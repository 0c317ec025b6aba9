package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-stock-service/config"
	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/pkg/broker"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-stock-service/pkg/i18n"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/search"
	"github.com/fekuna/omnipos-stock-service/pkg/tracing"

	alertH "github.com/fekuna/omnipos-stock-service/internal/alert/handler"
	alertRepoPkg "github.com/fekuna/omnipos-stock-service/internal/alert/repository"
	alertUCPkg "github.com/fekuna/omnipos-stock-service/internal/alert/usecase"

	invH "github.com/fekuna/omnipos-stock-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-stock-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-stock-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-stock-service/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-stock-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-stock-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-stock-service/internal/product/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/juju/clock"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceVersion = "1.0.0"

func main() {
	// 1. Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	i18n.Init()
	for _, f := range cfg.Locale.Files {
		if err := i18n.Load(f); err != nil {
			log.Printf("failed to load locale file %s: %v", f, err)
		}
	}

	// 2. Logger
	logConfig := &logger.ZapLoggerConfig{
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		FilePath:          cfg.Logger.FilePath,
		MaxSizeMB:         cfg.Logger.MaxSizeMB,
		MaxBackups:        cfg.Logger.MaxBackups,
		MaxAgeDays:        cfg.Logger.MaxAgeDays,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Setup(ctx, &tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     serviceVersion,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		appLogger.Fatal("Could not initialize tracing", zap.Error(err))
	}

	// 4. Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	alertRepo := alertRepoPkg.NewPGRepository(db)

	// 5. Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	locker := cache.NewLocker(redisClient, cache.LockerConfig{
		TTL:      cfg.Redis.LockTTL,
		Attempts: cfg.Redis.LockAttempts,
		Delay:    cfg.Redis.LockDelay,
		Clock:    clock.WallClock,
		Logger:   appLogger,
	})

	// 6. Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	alertProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.AlertsTopic,
	})
	defer alertProducer.Close()
	appLogger.Info("Configured Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("orders_topic", cfg.Kafka.OrdersTopic),
		zap.String("alerts_topic", cfg.Kafka.AlertsTopic),
	)

	// 7. Elasticsearch. Search falls back to the database without it.
	var searchIndex prodUCPkg.SearchIndex
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, searching the database instead", zap.Error(err))
	} else if err := prodUCPkg.EnsureSearchIndex(ctx, esClient); err != nil {
		appLogger.Warn("Could not prepare search index, searching the database instead", zap.Error(err))
	} else {
		searchIndex = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 8. UseCases
	alertUC := alertUCPkg.NewAlertUseCase(alertRepo, redisClient, alertProducer, clock.WallClock, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, alertUC, locker, clock.WallClock, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, invUC, alertUC, locker, redisClient, searchIndex, clock.WallClock, appLogger)

	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, clock.WallClock, appLogger)
	go invListener.Start(ctx)

	// 9. HTTP
	if !logConfig.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(cfg.Tracing.ServiceName))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1", auth.Middleware(cfg.JWT.SecretKey))
	prodH.NewProductHandler(prodUC, appLogger).Register(api)
	invH.NewInventoryHandler(invUC, appLogger).Register(api)
	alertH.NewAlertHandler(alertUC, appLogger).Register(api)

	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 10. gRPC health and reflection for orchestrators
	lis, err := net.Listen("tcp", normalizePort(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("tracing shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
