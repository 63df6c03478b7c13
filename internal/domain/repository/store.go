package repository

import "context"

// Store groups the repositories that must share a database transaction.
type Store interface {
	Invoices() InvoiceRepository
	Attendees() AttendeeRepository
	Payments() PaymentRepository
	CreditNotes() CreditNoteRepository
	Charges() ChargeRepository
	Customers() CustomerMappingRepository
	Webhooks() WebhookRepository

	// Transaction runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
