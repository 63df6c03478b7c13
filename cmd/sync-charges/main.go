// Command sync-charges reconciles the local Stripe mirror without running
// the server: it reprocesses webhook events that are due and refreshes the
// charges named on the command line.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/wekeepgrowing/registripe/internal/config"
	"github.com/wekeepgrowing/registripe/internal/infrastructure/database"
	stripeprovider "github.com/wekeepgrowing/registripe/internal/infrastructure/provider/stripe"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	"github.com/wekeepgrowing/registripe/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to the YAML config file")
	pending := flag.Bool("pending", true, "reprocess pending and failed webhook events")
	flag.Usage = func() {
		log.Printf("usage: %s [flags] [charge-id...]\n%s", os.Args[0], flag.CommandLine.FlagUsages())
	}
	flag.Parse()

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

	// Run migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)
	gateway := stripeprovider.NewStripeProvider(cfg.Service.StripeSecretKey, cfg.Service.StripeWebhookSecret, zapLogger)
	webhooks := usecase.NewWebhookService(repos, gateway, nil, cfg.Service.WebhookRetryBatch, zapLogger)

	ctx := context.Background()

	if *pending {
		processed, err := webhooks.ProcessPending(ctx)
		if err != nil {
			zapLogger.Fatal("Failed to reprocess webhook events", zap.Error(err))
		}
		zapLogger.Info("Webhook events reprocessed", zap.Int("count", processed))
	}

	failed := 0
	for _, chargeID := range flag.Args() {
		if err := webhooks.RefreshCharge(ctx, chargeID); err != nil {
			failed++
			zapLogger.Error("Failed to refresh charge",
				zap.String("charge_id", chargeID),
				zap.Error(err))
			continue
		}
		zapLogger.Info("Charge refreshed", zap.String("charge_id", chargeID))
	}

	zapLogger.Info("Sync completed",
		zap.Int("charges_requested", flag.NArg()),
		zap.Int("charges_failed", failed))

	if failed > 0 {
		zapLogger.Sync()
		os.Exit(1)
	}
}
