package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// inputs returns the attributes of every <input> named name, in document
// order.
func inputs(t *testing.T, page []byte, name string) []map[string]string {
	t.Helper()

	doc, err := html.Parse(bytes.NewReader(page))
	require.NoError(t, err)

	var found []map[string]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			attrs := map[string]string{}
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			if attrs["name"] == name {
				found = append(found, attrs)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return found
}

func TestNew_ParsesEveryPage(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{
		"error", "index",
		"author_list", "author_detail", "author_form", "author_delete",
		"genre_list", "genre_detail", "genre_form", "genre_delete",
		"book_list", "book_detail", "book_form", "book_delete",
		"bookinstance_list", "bookinstance_detail", "bookinstance_form", "bookinstance_delete",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("layout"))
}

func TestRender_UnknownView(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	err = r.Render(&bytes.Buffer{}, "nope", nil, nil)
	assert.Error(t, err)
}

func TestRender_AuthorDetail(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	born := time.Date(1920, time.January, 2, 0, 0, 0, 0, time.UTC)
	died := time.Date(1992, time.April, 6, 0, 0, 0, 0, time.UTC)
	author := &models.Author{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: &born, DateOfDeath: &died}

	buf := &bytes.Buffer{}
	err = r.Render(buf, "author_detail", map[string]any{
		"Title":  "Author Detail",
		"Author": author,
		"Books":  []*models.Book{{ID: "b1", Title: "Foundation", Summary: "Psychohistory."}},
	}, nil)
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "<title>Author Detail | Local Library</title>")
	assert.Contains(t, page, "Asimov, Isaac")
	assert.Contains(t, page, "Jan 2, 1920 - Apr 6, 1992")
	assert.Contains(t, page, "lifespan: 72")
	assert.Contains(t, page, `href="/catalog/book/b1"`)
	assert.Contains(t, page, `href="/catalog/author/a1/delete"`)
}

func TestRender_FormErrorsInOrder(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	err = r.Render(buf, "genre_form", map[string]any{
		"Title": "Create Genre",
		"Form":  &struct{ Name string }{Name: "<x>"},
		"Errors": []errcodes.FieldError{
			{Field: "name", Message: "first problem"},
			{Field: "name", Message: "second problem"},
		},
	}, nil)
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, `value="&lt;x&gt;"`, "values are escaped")
	first := bytes.Index(buf.Bytes(), []byte("first problem"))
	second := bytes.Index(buf.Bytes(), []byte("second problem"))
	require.NotEqual(t, -1, first)
	assert.Less(t, first, second)
}

func TestRender_BookFormGenreOptions(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	genres := []*models.Genre{{ID: "g1", Name: "Fantasy"}, {ID: "g2", Name: "Poetry"}}

	buf := &bytes.Buffer{}
	err = r.Render(buf, "book_form", map[string]any{
		"Title":        "Create Book",
		"Form":         &struct{ Title, Author, Summary, ISBN string }{Author: "a1"},
		"Authors":      []*models.Author{{ID: "a1", FirstName: "Isaac", FamilyName: "Asimov"}},
		"GenreOptions": relations.GenreOptions(genres, []string{"g2"}),
	}, nil)
	require.NoError(t, err)

	boxes := inputs(t, buf.Bytes(), "genre")
	require.Len(t, boxes, 2)
	assert.Equal(t, "g1", boxes[0]["value"])
	assert.NotContains(t, boxes[0], "checked")
	assert.Equal(t, "g2", boxes[1]["value"])
	assert.Contains(t, boxes[1], "checked")
	assert.Contains(t, buf.String(), `<option value="a1" selected>Asimov, Isaac</option>`)
}

func TestRender_MissingRelationsDontFail(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	err = r.Render(buf, "bookinstance_list", map[string]any{
		"Title":     "Book Instance List",
		"Instances": []*models.BookInstance{{ID: "i1", Imprint: "Gnome Press", Status: models.BookInstanceStatusReserved}},
	}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text-warning")
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text-success", statusClass(models.BookInstanceStatusAvailable))
	assert.Equal(t, "text-danger", statusClass(models.BookInstanceStatusMaintenance))
	assert.Equal(t, "text-warning", statusClass(models.BookInstanceStatusLoaned))
	assert.Equal(t, "text-warning", statusClass(models.BookInstanceStatusReserved))
}
