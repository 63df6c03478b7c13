package database

import (
	"context"

	"github.com/wekeepgrowing/registripe/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances bound to one *gorm.DB, which
// is either the pool or an open transaction.
type Repositories struct {
	db     *gorm.DB
	logger *zap.Logger

	Invoice         domainRepo.InvoiceRepository
	Attendee        domainRepo.AttendeeRepository
	Payment         domainRepo.PaymentRepository
	CreditNote      domainRepo.CreditNoteRepository
	Charge          domainRepo.ChargeRepository
	CustomerMapping domainRepo.CustomerMappingRepository
	Webhook         domainRepo.WebhookRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		db:              db,
		logger:          logger,
		Invoice:         repository.NewInvoiceRepository(db, logger),
		Attendee:        repository.NewAttendeeRepository(db),
		Payment:         repository.NewPaymentRepository(db, logger),
		CreditNote:      repository.NewCreditNoteRepository(db),
		Charge:          repository.NewChargeRepository(db, logger),
		CustomerMapping: repository.NewCustomerMappingRepository(db),
		Webhook:         repository.NewWebhookRepository(db, logger),
	}
}

func (r *Repositories) Invoices() domainRepo.InvoiceRepository          { return r.Invoice }
func (r *Repositories) Attendees() domainRepo.AttendeeRepository        { return r.Attendee }
func (r *Repositories) Payments() domainRepo.PaymentRepository          { return r.Payment }
func (r *Repositories) CreditNotes() domainRepo.CreditNoteRepository    { return r.CreditNote }
func (r *Repositories) Charges() domainRepo.ChargeRepository            { return r.Charge }
func (r *Repositories) Customers() domainRepo.CustomerMappingRepository { return r.CustomerMapping }
func (r *Repositories) Webhooks() domainRepo.WebhookRepository          { return r.Webhook }

// Transaction implements domainRepo.Store
func (r *Repositories) Transaction(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx, r.logger))
	})
}
