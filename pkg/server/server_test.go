package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/config"
	"github.com/locallibrary/catalog/pkg/database"
	"github.com/locallibrary/catalog/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T, cfg *config.Config) *bun.DB {
	t.Helper()

	db, err := database.New(cfg)
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestNew_Addr(t *testing.T) {
	cfg := config.NewForTest()
	cfg.ServerPort = 4321
	db := setupTestDB(t, cfg)

	srv, err := New(cfg, db)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4321", srv.Addr)
}

func TestRootRedirectsToCatalog(t *testing.T) {
	cfg := config.NewForTest()
	e, err := NewEcho(cfg, setupTestDB(t, cfg))
	require.NoError(t, err)

	rr := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog", rr.Header().Get(echo.HeaderLocation))
}

func TestUnknownPageRendersErrorView(t *testing.T) {
	cfg := config.NewForTest()
	e, err := NewEcho(cfg, setupTestDB(t, cfg))
	require.NoError(t, err)

	rr := serve(e, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page not found.")
}

func TestHealthAndMetrics(t *testing.T) {
	cfg := config.NewForTest()
	e, err := NewEcho(cfg, setupTestDB(t, cfg))
	require.NoError(t, err)

	rr := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// Make sure at least one catalog series exists before scraping.
	serve(e, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	rr = serve(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "catalog_http_request_duration_seconds")
}

func TestPanicsAreRecordedAsServerErrors(t *testing.T) {
	cfg := config.NewForTest()
	e, err := NewEcho(cfg, setupTestDB(t, cfg))
	require.NoError(t, err)
	e.GET("/catalog/panicking", func(c echo.Context) error {
		panic("boom")
	})

	rr := serve(e, httptest.NewRequest(http.MethodGet, "/catalog/panicking", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = serve(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(),
		`catalog_http_request_duration_seconds_count{method="GET",route="/catalog/panicking",status="500"} 1`)
}

func TestCatalogFlow(t *testing.T) {
	cfg := config.NewForTest()
	e, err := NewEcho(cfg, setupTestDB(t, cfg))
	require.NoError(t, err)

	post := func(path string, values url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		return serve(e, req)
	}

	rr := post("/catalog/author/create", url.Values{"first_name": {"Isaac"}, "family_name": {"Asimov"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	authorURL := rr.Header().Get(echo.HeaderLocation)
	authorID := strings.TrimPrefix(authorURL, "/catalog/author/")

	rr = post("/catalog/genre/create", url.Values{"name": {"Science Fiction"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	genreID := strings.TrimPrefix(rr.Header().Get(echo.HeaderLocation), "/catalog/genre/")

	rr = post("/catalog/book/create", url.Values{
		"title":   {"Foundation"},
		"author":  {authorID},
		"summary": {"Psychohistory."},
		"isbn":    {"9780553293357"},
		"genre":   {genreID},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	bookURL := rr.Header().Get(echo.HeaderLocation)
	bookID := strings.TrimPrefix(bookURL, "/catalog/book/")

	rr = post("/catalog/bookinstance/create", url.Values{"book": {bookID}, "imprint": {"Gnome Press, 1951"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	instanceURL := rr.Header().Get(echo.HeaderLocation)

	// Each parent is guarded by its children.
	assert.Equal(t, http.StatusConflict, post(authorURL+"/delete", nil).Code)
	assert.Equal(t, http.StatusConflict, post("/catalog/genre/"+genreID+"/delete", nil).Code)
	assert.Equal(t, http.StatusConflict, post(bookURL+"/delete", nil).Code)

	// Unwinding from the leaves frees every parent.
	assert.Equal(t, http.StatusSeeOther, post(instanceURL+"/delete", nil).Code)
	assert.Equal(t, http.StatusSeeOther, post(bookURL+"/delete", nil).Code)
	assert.Equal(t, http.StatusSeeOther, post(authorURL+"/delete", nil).Code)
	assert.Equal(t, http.StatusSeeOther, post("/catalog/genre/"+genreID+"/delete", nil).Code)

	rr = serve(e, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<strong>Books:</strong> 0")
}
