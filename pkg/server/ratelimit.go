package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/robinjoseph08/golib/logger"
	"golang.org/x/time/rate"
)

const (
	clientIdleTimeout = 3 * time.Minute
	clientSweepEvery  = time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// writeLimiter throttles form submissions per client IP with a token bucket.
// Reads are never limited.
type writeLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

func newWriteLimiter(perSecond float64, burst int) *writeLimiter {
	if burst < 1 {
		burst = 1
	}
	return &writeLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		clients: map[string]*client{},
		now:     time.Now,
	}
}

func (wl *writeLimiter) allow(ip string) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := wl.now()
	if now.Sub(wl.lastSweep) > clientSweepEvery {
		for k, cl := range wl.clients {
			if now.Sub(cl.lastSeen) > clientIdleTimeout {
				delete(wl.clients, k)
			}
		}
		wl.lastSweep = now
	}

	cl, ok := wl.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(wl.limit, wl.burst)}
		wl.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (wl *writeLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodPost {
				return next(c)
			}
			ip := c.RealIP()
			if !wl.allow(ip) {
				logger.FromContext(c.Request().Context()).Warn("write rate limit exceeded", logger.Data{"ip": ip})
				return errcodes.TooManyRequests()
			}
			return next(c)
		}
	}
}
