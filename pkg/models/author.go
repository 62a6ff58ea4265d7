package models

import (
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID          string     `bun:",pk" json:"id"`
	CreatedAt   time.Time  `bun:",nullzero,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:",nullzero,notnull" json:"updated_at"`
	FirstName   string     `bun:",notnull" json:"first_name"`
	FamilyName  string     `bun:",notnull" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death"`
}

// AuthorURL is the detail page path of the author.
func AuthorURL(a *Author) string {
	return catalogURL("author", a.ID)
}

// AuthorFullName is "Family, First" when both names are set, otherwise "".
func AuthorFullName(a *Author) string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// AuthorLifespan is the number of years between the birth and death years, or
// "Unknown" when either date is missing.
func AuthorLifespan(a *Author) string {
	if a.DateOfBirth == nil || a.DateOfDeath == nil {
		return "Unknown"
	}
	return strconv.Itoa(a.DateOfDeath.Year() - a.DateOfBirth.Year())
}
