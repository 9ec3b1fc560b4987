package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"spacenow/internal/analytics"
	"spacenow/internal/assistant"
	"spacenow/internal/cache"
	"spacenow/internal/feed"
	"spacenow/internal/nasa"
)

// Per-route cache TTLs, tuned against the NASA rate limits: short for
// frequently polled single-category pulls, medium for derived data,
// long for slow-changing lookups.
const (
	ttlShort     = 30 * time.Second
	ttlMedium    = 60 * time.Second
	ttlChart     = 3 * time.Minute
	ttlOverview  = 5 * time.Minute
	ttlNeoLookup = 10 * time.Minute
	ttlAPOD      = 30 * time.Minute
)

// Handler wires the HTTP routes to the gateway and services. One
// cache store instance is injected at construction so tests can reset
// it between runs.
type Handler struct {
	gateway   *nasa.Gateway
	analytics *analytics.Service
	feed      *feed.Service
	assistant *assistant.Service
	store     cache.Store
	flights   *singleflight.Group
	logger    *zap.Logger
	started   time.Time
}

// New creates the handler set. When singleFlight is true, concurrent
// cache misses on the same key share one upstream call; by default
// duplicate concurrent fetches are allowed and the later write wins.
func New(
	gateway *nasa.Gateway,
	analyticsSvc *analytics.Service,
	feedSvc *feed.Service,
	assistantSvc *assistant.Service,
	store cache.Store,
	singleFlight bool,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		gateway:   gateway,
		analytics: analyticsSvc,
		feed:      feedSvc,
		assistant: assistantSvc,
		store:     store,
		logger:    logger,
		started:   time.Now(),
	}
	if singleFlight {
		h.flights = &singleflight.Group{}
	}
	return h
}

// respondCached serves the route from the cache, or runs load, stores
// the marshaled result under key for ttl, and serves it.
func (h *Handler) respondCached(c *gin.Context, key string, ttl time.Duration, load func(ctx context.Context) (any, error)) {
	ctx := c.Request.Context()

	if data, err := h.store.Get(ctx, key); err == nil && data != nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	fetch := func() (any, error) {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		if err := h.store.Set(ctx, key, data, ttl); err != nil {
			h.logger.Warn("failed to cache response", zap.Error(err), zap.String("key", key))
		}
		return data, nil
	}

	var (
		result any
		err    error
	)
	if h.flights != nil {
		result, err, _ = h.flights.Do(key, fetch)
	} else {
		result, err = fetch()
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result.([]byte))
}

// respondError maps an error to the route's JSON failure shape.
// Upstream statuses pass through; everything else is a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, nasa.ErrDatesRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate required"})
		return
	}

	var unknownType *analytics.ErrUnknownEventType
	if errors.As(err, &unknownType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": unknownType.Error()})
		return
	}

	if status := nasa.StatusOf(err); status != 0 {
		h.logger.Warn("upstream request failed",
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.logger.Error("request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// daysQuery parses the named query parameter, falling back when it is
// absent or not a positive integer.
func daysQuery(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// cacheKey is the normalized request path plus query.
func cacheKey(c *gin.Context) string {
	return c.Request.URL.RequestURI()
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Seconds(),
	})
}
