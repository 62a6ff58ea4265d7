package books

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/internal/testgen"
	"github.com/locallibrary/catalog/pkg/authors"
	"github.com/locallibrary/catalog/pkg/binder"
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/genres"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// setupTestServer sets up an Echo server with the book routes registered.
func setupTestServer(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	r, err := views.New()
	require.NoError(t, err)
	e.Renderer = r
	e.HTTPErrorHandler = errcodes.NewHandler(false).Handle

	RegisterRoutes(e.Group("/catalog"), db)

	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func postForm(e *echo.Echo, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

type fixture struct {
	author  *models.Author
	fantasy *models.Genre
	epic    *models.Genre
}

func setupFixture(t *testing.T, db *bun.DB) fixture {
	t.Helper()
	ctx := context.Background()

	author := &models.Author{FirstName: "Patrick", FamilyName: "Rothfuss"}
	require.NoError(t, authors.NewService(db).CreateAuthor(ctx, author))
	fantasy := &models.Genre{Name: "Fantasy"}
	require.NoError(t, genres.NewService(db).CreateGenre(ctx, fantasy))
	epic := &models.Genre{Name: "Epic"}
	require.NoError(t, genres.NewService(db).CreateGenre(ctx, epic))

	return fixture{author, fantasy, epic}
}

func insertBook(t *testing.T, db *bun.DB, title, authorID string, genreIDs ...string) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, AuthorID: authorID, Summary: "Summary of " + title, ISBN: "9780756404741", GenreIDs: genreIDs}
	require.NoError(t, NewService(db).CreateBook(context.Background(), b))
	return b
}

func countBooks(t *testing.T, db *bun.DB) int {
	t.Helper()
	count, err := NewService(db).CountBooks(context.Background())
	require.NoError(t, err)
	return count
}

func bookForm(f fixture, genreIDs ...string) url.Values {
	return url.Values{
		"title":   {"The Name of the Wind"},
		"author":  {f.author.ID},
		"summary": {"A story."},
		"isbn":    {"9780756404741"},
		"genre":   genreIDs,
	}
}

func TestList_PopulatesAuthor(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	insertBook(t, db, "The Wise Man's Fear", f.author.ID)
	insertBook(t, db, "The Name of the Wind", f.author.ID)

	rr := get(e, "/catalog/books")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "(Rothfuss, Patrick)")
	assert.Less(t, strings.Index(body, "The Name of the Wind"), strings.Index(body, "The Wise Man&#39;s Fear"))
}

func TestRetrieve_PopulatesAuthorGenresAndCopies(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	book := insertBook(t, db, "The Name of the Wind", f.author.ID, f.epic.ID, f.fantasy.ID)
	testgen.BookInstance(t, db, testgen.BookInstanceOptions{BookID: book.ID, Imprint: "DAW, 2007", Status: models.BookInstanceStatusLoaned})

	rr := get(e, models.BookURL(book))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Rothfuss, Patrick")
	assert.Less(t, strings.Index(body, ">Epic<"), strings.Index(body, ">Fantasy<"), "genres keep their stored order")
	assert.Contains(t, body, "DAW, 2007")
	assert.Contains(t, body, "text-warning")
}

func TestRetrieve_NotFound(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)

	rr := get(e, "/catalog/book/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = get(e, "/catalog/book/does-not-exist/update")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = get(e, "/catalog/book/does-not-exist/delete")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateForm_ListsAuthorsAndGenres(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	rr := get(e, "/catalog/book/create")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `value="`+f.author.ID+`"`)
	assert.Contains(t, body, `value="`+f.fantasy.ID+`"`)
	assert.NotContains(t, body, " checked")
}

func TestCreate_GenreSets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		genres func(f fixture) []string
		want   func(f fixture) []string
	}{
		{"no genre", func(_ fixture) []string { return nil }, func(_ fixture) []string { return []string{} }},
		{"single genre", func(f fixture) []string { return []string{f.fantasy.ID} }, func(f fixture) []string { return []string{f.fantasy.ID} }},
		{"multiple genres", func(f fixture) []string { return []string{f.epic.ID, f.fantasy.ID} }, func(f fixture) []string { return []string{f.epic.ID, f.fantasy.ID} }},
		{"repeated genre", func(f fixture) []string { return []string{f.fantasy.ID, f.fantasy.ID} }, func(f fixture) []string { return []string{f.fantasy.ID} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := testgen.NewDB(t)
			e := setupTestServer(t, db)
			f := setupFixture(t, db)

			rr := postForm(e, "/catalog/book/create", bookForm(f, tt.genres(f)...))
			require.Equal(t, http.StatusSeeOther, rr.Code)

			books, err := NewService(db).ListBooks(context.Background())
			require.NoError(t, err)
			require.Len(t, books, 1)
			assert.Equal(t, models.BookURL(books[0]), rr.Header().Get(echo.HeaderLocation))

			book, err := NewService(db).RetrieveBook(context.Background(), books[0].ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want(f), book.GenreIDs)
		})
	}
}

func TestCreate_MissingFields(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	values := bookForm(f, f.fantasy.ID)
	values.Set("title", "")
	values.Set("isbn", "  ")

	rr := postForm(e, "/catalog/book/create", values)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "title&#34; is required")
	assert.Contains(t, body, "isbn&#34; is required")
	assert.Contains(t, body, " checked", "the submitted genre stays selected")
	assert.Equal(t, 0, countBooks(t, db))
}

func TestCreate_UnknownReferences(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	values := bookForm(f, "no-such-genre")
	values.Set("author", "no-such-author")

	rr := postForm(e, "/catalog/book/create", values)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Selected author does not exist.")
	assert.Contains(t, rr.Body.String(), "Selected genre does not exist.")
	assert.Equal(t, 0, countBooks(t, db))
}

func TestUpdate_ReplacesGenreSet(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	book := insertBook(t, db, "Draft", f.author.ID, f.fantasy.ID)

	rr := get(e, models.BookURL(book)+"/update")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="`+f.fantasy.ID+`" checked`)

	rr = postForm(e, models.BookURL(book)+"/update", bookForm(f, f.epic.ID))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, models.BookURL(book), rr.Header().Get(echo.HeaderLocation))

	updated, err := NewService(db).RetrieveBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Name of the Wind", updated.Title)
	assert.Equal(t, []string{f.epic.ID}, updated.GenreIDs)
	assert.Equal(t, 1, countBooks(t, db))
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	rr := postForm(e, "/catalog/book/does-not-exist/update", bookForm(f))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, 0, countBooks(t, db))
}

func TestDelete_BlockedByCopies(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	book := insertBook(t, db, "The Name of the Wind", f.author.ID)
	testgen.BookInstance(t, db, testgen.BookInstanceOptions{BookID: book.ID, Imprint: "DAW, 2007", Status: models.BookInstanceStatusAvailable})

	rr := get(e, models.BookURL(book)+"/delete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Delete the following copies")

	rr = postForm(e, models.BookURL(book)+"/delete", nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "DAW, 2007")
	assert.Equal(t, 1, countBooks(t, db))
}

func TestDelete_Success(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	e := setupTestServer(t, db)
	f := setupFixture(t, db)

	book := insertBook(t, db, "The Name of the Wind", f.author.ID, f.fantasy.ID)

	rr := postForm(e, models.BookURL(book)+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/catalog/books", rr.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 0, countBooks(t, db))

	rr = postForm(e, models.BookURL(book)+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code, "deleting again is harmless")
}
