package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	mediumDateLayout = "Jan 2, 2006"
	isoDateLayout    = "2006-01-02"
)

// NewID generates the identifier assigned to a record at insert.
func NewID() string {
	return uuid.NewString()
}

func catalogURL(collection, id string) string {
	return "/catalog/" + collection + "/" + id
}

// FormatDate renders a date for display, e.g. "Oct 6, 2023". A nil date
// renders as "".
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(mediumDateLayout)
}

// ISODate renders a date as YYYY-MM-DD for form inputs. A nil date renders as
// "".
func ISODate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(isoDateLayout)
}

// ParseISODate parses a YYYY-MM-DD form value. The empty string yields nil.
func ParseISODate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
