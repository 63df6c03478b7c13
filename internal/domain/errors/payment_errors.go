package errors

import (
	"errors"

	pkgerrors "github.com/wekeepgrowing/registripe/pkg/errors"
)

var (
	// ErrInvoiceNotFound indicates that no invoice has the requested ID
	ErrInvoiceNotFound = pkgerrors.NewAppError(pkgerrors.ErrNotFound, "invoice not found", nil)

	// ErrCreditNoteNotFound indicates that no credit note has the requested ID
	ErrCreditNoteNotFound = pkgerrors.NewAppError(pkgerrors.ErrNotFound, "credit note not found", nil)

	// ErrPaymentNotFound indicates that the selected Stripe payment does not exist
	ErrPaymentNotFound = pkgerrors.NewAppError(pkgerrors.ErrNotFound, "stripe payment not found", nil)

	// ErrCreditNoteClaimed indicates that the credit note was already applied or refunded
	ErrCreditNoteClaimed = pkgerrors.NewAppError(pkgerrors.ErrConflict, "credit note already claimed", nil)
)

// ValidationError is a business rule failure that should be shown to the
// user next to the form rather than treated as a server error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Code lets the HTTP layer treat an unhandled ValidationError as a bad
// request.
func (e *ValidationError) Code() string {
	return pkgerrors.ErrInvalidArgument
}

// NewValidationError creates a non-field ValidationError
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// AsValidationError unwraps err into a ValidationError if it holds one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
