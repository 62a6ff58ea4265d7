package bookinstances

import (
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
)

type BookInstancePayload struct {
	Book    string `form:"book" json:"book" mod:"trim,sanitize" validate:"required"`
	Imprint string `form:"imprint" json:"imprint" mod:"trim,sanitize" validate:"required"`
	Status  string `form:"status" json:"status" mod:"trim" default:"Maintenance" validate:"oneof=Available Maintenance Loaned Reserved"`
	DueBack string `form:"due_back" json:"due_back" mod:"trim" validate:"date"`
}

func payloadFromBookInstance(bi *models.BookInstance) *BookInstancePayload {
	return &BookInstancePayload{
		Book:    bi.BookID,
		Imprint: bi.Imprint,
		Status:  bi.Status,
		DueBack: models.ISODate(bi.DueBack),
	}
}

func (p *BookInstancePayload) toBookInstance() (*models.BookInstance, error) {
	dueBack, err := models.ParseISODate(p.DueBack)
	if err != nil {
		return nil, errcodes.NewValidationErrors([]errcodes.FieldError{{
			Field:   "due_back",
			Message: `"due_back" is not a valid date`,
		}})
	}

	return &models.BookInstance{
		BookID:  p.Book,
		Imprint: p.Imprint,
		Status:  p.Status,
		DueBack: dueBack,
	}, nil
}
