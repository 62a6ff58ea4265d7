package authors

import (
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
)

type AuthorPayload struct {
	FirstName   string `form:"first_name" json:"first_name" mod:"trim,sanitize" validate:"required,max=100,alphanum"`
	FamilyName  string `form:"family_name" json:"family_name" mod:"trim,sanitize" validate:"required,max=100,alphanum"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth" mod:"trim" validate:"date"`
	DateOfDeath string `form:"date_of_death" json:"date_of_death" mod:"trim" validate:"date"`
}

func payloadFromAuthor(a *models.Author) *AuthorPayload {
	return &AuthorPayload{
		FirstName:   a.FirstName,
		FamilyName:  a.FamilyName,
		DateOfBirth: models.ISODate(a.DateOfBirth),
		DateOfDeath: models.ISODate(a.DateOfDeath),
	}
}

// toAuthor builds the record the payload describes. Dates that pass the format
// check can still be impossible (e.g. 2023-02-30), so they're reported here.
func (p *AuthorPayload) toAuthor() (*models.Author, error) {
	var fieldErrs []errcodes.FieldError

	dob, err := models.ParseISODate(p.DateOfBirth)
	if err != nil {
		fieldErrs = append(fieldErrs, errcodes.FieldError{Field: "date_of_birth", Message: `"date_of_birth" is not a valid date`})
	}
	dod, err := models.ParseISODate(p.DateOfDeath)
	if err != nil {
		fieldErrs = append(fieldErrs, errcodes.FieldError{Field: "date_of_death", Message: `"date_of_death" is not a valid date`})
	}
	if err := errcodes.NewValidationErrors(fieldErrs); err != nil {
		return nil, err
	}

	return &models.Author{
		FirstName:   p.FirstName,
		FamilyName:  p.FamilyName,
		DateOfBirth: dob,
		DateOfDeath: dod,
	}, nil
}
