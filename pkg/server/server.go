package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/authors"
	"github.com/locallibrary/catalog/pkg/binder"
	"github.com/locallibrary/catalog/pkg/bookinstances"
	"github.com/locallibrary/catalog/pkg/books"
	"github.com/locallibrary/catalog/pkg/catalog"
	"github.com/locallibrary/catalog/pkg/config"
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/genres"
	"github.com/locallibrary/catalog/pkg/metrics"
	"github.com/locallibrary/catalog/pkg/testutils"
	"github.com/locallibrary/catalog/pkg/views"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := NewEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// NewEcho builds the router with every catalog route registered.
func NewEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	r, err := views.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Renderer = r
	// Rate limiting keys on the client IP, so forwarding headers sent by the
	// client itself must not be trusted.
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())
	e.Use(recovery.Middleware())
	if cfg.WriteRateLimit > 0 {
		e.Use(newWriteLimiter(cfg.WriteRateLimit, cfg.WriteRateBurst).Middleware())
	}

	health.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/catalog")
	})

	g := e.Group("/catalog")
	catalog.RegisterRoutes(g, db)
	authors.RegisterRoutes(g, db)
	genres.RegisterRoutes(g, db)
	books.RegisterRoutes(g, db)
	bookinstances.RegisterRoutes(g, db)

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler(cfg.IsDevelopment()).Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
