package relations

import (
	"context"
	"strings"

	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// NormalizeGenreIDs turns the submitted genre values into an ordered set. The
// result is never nil: no values yield an empty slice, and a single value
// yields a one-element slice. Blank values are dropped and repeats keep their
// first position.
func NormalizeGenreIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GenreOption is a genre as offered by the book form.
type GenreOption struct {
	Genre   *models.Genre
	Checked bool
}

// GenreOptions pairs every genre with whether it's in the selected set. The
// genres themselves are left untouched.
func GenreOptions(genres []*models.Genre, selected []string) []GenreOption {
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}

	options := make([]GenreOption, 0, len(genres))
	for _, g := range genres {
		_, checked := set[g.ID]
		options = append(options, GenreOption{Genre: g, Checked: checked})
	}
	return options
}

// SetBookGenres replaces the stored genre set of a book. It's meant to run in
// the same transaction as the book write.
func SetBookGenres(ctx context.Context, db bun.IDB, bookID string, genreIDs []string) error {
	_, err := db.
		NewDelete().
		Model((*models.BookGenre)(nil)).
		Where("bg.book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(genreIDs) == 0 {
		return nil
	}

	rows := make([]*models.BookGenre, 0, len(genreIDs))
	for i, id := range genreIDs {
		rows = append(rows, &models.BookGenre{
			BookID:    bookID,
			GenreID:   id,
			SortOrder: i,
		})
	}
	_, err = db.
		NewInsert().
		Model(&rows).
		Exec(ctx)
	return errors.WithStack(err)
}
