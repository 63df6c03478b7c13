package usecase

import (
	"context"

	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
)

type CreditNoteController struct {
	store domainRepo.Store
}

func NewCreditNoteController(store domainRepo.Store) *CreditNoteController {
	return &CreditNoteController{store: store}
}

// ForID loads a credit note with its claims, or returns ErrCreditNoteNotFound.
func (c *CreditNoteController) ForID(ctx context.Context, id int64) (*model.CreditNote, error) {
	creditNote, err := c.store.CreditNotes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if creditNote == nil {
		return nil, domainErrors.ErrCreditNoteNotFound
	}
	return creditNote, nil
}

func (c *CreditNoteController) IsUnclaimed(creditNote *model.CreditNote) bool {
	return creditNote.IsUnclaimed()
}
