package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/wekeepgrowing/registripe/internal/config"
	"github.com/wekeepgrowing/registripe/internal/infrastructure/database"
	grpcServer "github.com/wekeepgrowing/registripe/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/registripe/internal/infrastructure/http"
	stripeprovider "github.com/wekeepgrowing/registripe/internal/infrastructure/provider/stripe"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	"github.com/wekeepgrowing/registripe/pkg/logger"
	"github.com/wekeepgrowing/registripe/pkg/messaging"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.StringP("config", "c", "", "path to the YAML config file")
	flag.Parse()

	// A .env file is optional; REGISTRIPE_* variables override the YAML.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)
	m := metrics.New()

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.Addr != "" {
		redisClient, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		publisher = redisClient
		zapLogger.Info("Publishing payment events to Redis",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("channel_prefix", cfg.Redis.ChannelPrefix))
	}

	gateway := stripeprovider.NewStripeProvider(
		cfg.Service.StripeSecretKey,
		cfg.Service.StripeWebhookSecret,
		zapLogger,
		stripeprovider.WithMetrics(m),
	)
	webhooks := usecase.NewWebhookService(repos, gateway, m, cfg.Service.WebhookRetryBatch, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize servers
	httpSrv, err := httpServer.NewServer(cfg, zapLogger, httpServer.Dependencies{
		Store:     repos,
		Gateway:   gateway,
		Publisher: publisher,
		Metrics:   m,
		Webhooks:  webhooks,
	})
	if err != nil {
		zapLogger.Fatal("Failed to build HTTP server", zap.Error(err))
	}

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Port != 0 {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Error("gRPC server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		usecase.NewRetryWorker(webhooks, cfg.Service.WebhookRetryInterval, zapLogger).Run(ctx)
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	<-workerDone
	zapLogger.Info("Servers shut down successfully")
}
