// Package testgen provides an in-memory catalog database and record
// generators with sensible defaults for tests.
package testgen

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/locallibrary/catalog/pkg/migrations"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// AuthorOptions configures the generated author.
type AuthorOptions struct {
	FirstName   string // defaults to "Ursula"
	FamilyName  string // defaults to "Le Guin"
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

// BookOptions configures the generated book.
type BookOptions struct {
	Title    string // defaults to "A Wizard of Earthsea"
	AuthorID string // required
	Summary  string // defaults to "Summary of <Title>"
	ISBN     string // defaults to "9780000000000"
	GenreIDs []string
}

// BookInstanceOptions configures the generated copy.
type BookInstanceOptions struct {
	BookID  string // required
	Imprint string // defaults to "Parnassus Press"
	Status  string // defaults to Available
	DueBack *time.Time
}

// NewDB opens a migrated in-memory database that is closed when the test
// completes.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is its own database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Author inserts an author.
func Author(t *testing.T, db bun.IDB, opts AuthorOptions) *models.Author {
	t.Helper()
	if opts.FirstName == "" {
		opts.FirstName = "Ursula"
	}
	if opts.FamilyName == "" {
		opts.FamilyName = "Le Guin"
	}

	now := time.Now()
	a := &models.Author{
		ID:          models.NewID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		FirstName:   opts.FirstName,
		FamilyName:  opts.FamilyName,
		DateOfBirth: opts.DateOfBirth,
		DateOfDeath: opts.DateOfDeath,
	}
	_, err := db.NewInsert().Model(a).Exec(context.Background())
	require.NoError(t, err)
	return a
}

// Genre inserts a genre with the given name.
func Genre(t *testing.T, db bun.IDB, name string) *models.Genre {
	t.Helper()
	now := time.Now()
	g := &models.Genre{ID: models.NewID(), CreatedAt: now, UpdatedAt: now, Name: name}
	_, err := db.NewInsert().Model(g).Exec(context.Background())
	require.NoError(t, err)
	return g
}

// Book inserts a book and its genre set. GenreIDs are stored as given, so
// callers can seed duplicates or dangling ids on purpose.
func Book(t *testing.T, db bun.IDB, opts BookOptions) *models.Book {
	t.Helper()
	require.NotEmpty(t, opts.AuthorID, "testgen.Book needs an AuthorID")
	if opts.Title == "" {
		opts.Title = "A Wizard of Earthsea"
	}
	if opts.Summary == "" {
		opts.Summary = "Summary of " + opts.Title
	}
	if opts.ISBN == "" {
		opts.ISBN = "9780000000000"
	}

	ctx := context.Background()
	now := time.Now()
	b := &models.Book{
		ID:        models.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     opts.Title,
		AuthorID:  opts.AuthorID,
		Summary:   opts.Summary,
		ISBN:      opts.ISBN,
		GenreIDs:  opts.GenreIDs,
	}
	_, err := db.NewInsert().Model(b).Exec(ctx)
	require.NoError(t, err)

	if len(opts.GenreIDs) > 0 {
		rows := make([]*models.BookGenre, 0, len(opts.GenreIDs))
		for i, id := range opts.GenreIDs {
			rows = append(rows, &models.BookGenre{BookID: b.ID, GenreID: id, SortOrder: i})
		}
		_, err = db.NewInsert().Model(&rows).Exec(ctx)
		require.NoError(t, err)
	}
	return b
}

// BookInstance inserts a copy of a book.
func BookInstance(t *testing.T, db bun.IDB, opts BookInstanceOptions) *models.BookInstance {
	t.Helper()
	require.NotEmpty(t, opts.BookID, "testgen.BookInstance needs a BookID")
	if opts.Imprint == "" {
		opts.Imprint = "Parnassus Press"
	}
	if opts.Status == "" {
		opts.Status = models.BookInstanceStatusAvailable
	}

	now := time.Now()
	bi := &models.BookInstance{
		ID:        models.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		BookID:    opts.BookID,
		Imprint:   opts.Imprint,
		Status:    opts.Status,
		DueBack:   opts.DueBack,
	}
	_, err := db.NewInsert().Model(bi).Exec(context.Background())
	require.NoError(t, err)
	return bi
}
