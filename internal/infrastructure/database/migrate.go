package database

import (
	"fmt"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("GORM auto-migrations completed successfully")

	if db.Dialector.Name() != "postgres" {
		logger.Info("Skipping PostgreSQL-specific migrations",
			zap.String("dialect", db.Dialector.Name()))
		return nil
	}

	logger.Info("Creating custom indexes...")
	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Creating immutability triggers...")
	if err := createImmutabilityTriggers(db, logger); err != nil {
		logger.Error("Failed to create immutability triggers", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes and constraints GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_due ON stripe_webhook_events (created_at) WHERE status IN ('pending', 'failed', 'processing')`,
		`CREATE INDEX IF NOT EXISTS idx_stripe_charges_refundable ON stripe_charges (customer_id) WHERE refunded = false`,
		`CREATE UNIQUE INDEX IF NOT EXISTS unique_refund_per_credit_note ON credit_note_refunds (parent_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS unique_application_per_credit_note ON credit_note_applications (parent_id)`,
		`DO $$ BEGIN
			ALTER TABLE invoices ADD CONSTRAINT chk_invoices_status CHECK (status IN ('unpaid', 'paid', 'refunded', 'void'));
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// createImmutabilityTriggers stops Stripe payment and refund records from
// being edited once written. Deletes still cascade from their parents.
func createImmutabilityTriggers(db *gorm.DB, logger *zap.Logger) error {
	functionSQL := `
CREATE OR REPLACE FUNCTION reject_stripe_record_update() RETURNS TRIGGER AS $$
BEGIN
    RAISE EXCEPTION '% rows are immutable', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql;`

	if err := db.Exec(functionSQL).Error; err != nil {
		return err
	}

	tables := []string{"stripe_payments", "stripe_credit_note_refunds"}
	for _, table := range tables {
		dropSQL := fmt.Sprintf(`DROP TRIGGER IF EXISTS immutable_%s ON %s;`, table, table)
		if err := db.Exec(dropSQL).Error; err != nil {
			logger.Warn("Failed to drop existing trigger", zap.String("table", table), zap.Error(err))
		}

		triggerSQL := fmt.Sprintf(`
CREATE TRIGGER immutable_%s
    BEFORE UPDATE ON %s
    FOR EACH ROW EXECUTE FUNCTION reject_stripe_record_update();`, table, table)
		if err := db.Exec(triggerSQL).Error; err != nil {
			logger.Error("Failed to create immutability trigger", zap.String("table", table), zap.Error(err))
			return err
		}
		logger.Info("Created immutability trigger", zap.String("table", table))
	}

	return nil
}
