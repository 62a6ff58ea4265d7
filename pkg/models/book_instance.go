package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookInstanceStatusAvailable   = "Available"
	BookInstanceStatusMaintenance = "Maintenance"
	BookInstanceStatusLoaned      = "Loaned"
	BookInstanceStatusReserved    = "Reserved"
)

// BookInstanceStatuses is the set of statuses offered by the copy form.
var BookInstanceStatuses = []string{
	BookInstanceStatusMaintenance,
	BookInstanceStatusAvailable,
	BookInstanceStatusLoaned,
	BookInstanceStatusReserved,
}

type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi"`

	ID        string     `bun:",pk" json:"id"`
	CreatedAt time.Time  `bun:",nullzero,notnull" json:"created_at"`
	UpdatedAt time.Time  `bun:",nullzero,notnull" json:"updated_at"`
	BookID    string     `bun:",notnull" json:"book_id"`
	Imprint   string     `bun:",notnull" json:"imprint"`
	Status    string     `bun:",notnull" json:"status"`
	DueBack   *time.Time `json:"due_back"`

	Book *Book `bun:"-" json:"book,omitempty"`
}

func BookInstanceURL(bi *BookInstance) string {
	return catalogURL("bookinstance", bi.ID)
}
